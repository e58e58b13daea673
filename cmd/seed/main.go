// Command seed inserts the default development accounts.
package main

import (
	"context"

	"go.uber.org/zap"

	"userhub/config"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/util"
	"userhub/pkg/db"
	"userhub/pkg/logger"
)

type seedUser struct {
	email     string
	password  string
	firstName string
	lastName  string
}

var seedUsers = []seedUser{
	{email: "admin@example.com", password: "admin123@", firstName: "Admin", lastName: "User"},
	{email: "user@example.com", password: "password123@", firstName: "Demo", lastName: "User"},
}

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	users := repository.NewUserRepository(dbConn)
	ctx := context.Background()

	for _, s := range seedUsers {
		existing, err := users.FindByEmail(ctx, s.email)
		if err != nil {
			log.Fatal("seed lookup failed", zap.String("email", s.email), zap.Error(err))
		}
		if existing != nil {
			log.Info("seed user already exists", zap.String("email", s.email))
			continue
		}

		hash, err := util.HashPassword(s.password)
		if err != nil {
			log.Fatal("failed to hash seed password", zap.Error(err))
		}

		first, last := s.firstName, s.lastName
		u := &model.User{
			Email:        s.email,
			PasswordHash: hash,
			FirstName:    &first,
			LastName:     &last,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatal("failed to create seed user", zap.String("email", s.email), zap.Error(err))
		}
		log.Info("seed user created", zap.String("email", s.email), zap.Int("user_id", u.ID))
	}
}
