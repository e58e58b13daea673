// Command migrate applies the embedded goose migrations.
//
//	migrate [up|down|status]
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"userhub/config"
	"userhub/migrations"
	"userhub/pkg/db"
	"userhub/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	conn, err := sql.Open("pgx", db.DSN(cfg.DB))
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		log.Fatal("failed to set dialect", zap.Error(err))
	}

	switch command {
	case "up":
		err = goose.Up(conn, ".")
	case "down":
		err = goose.Down(conn, ".")
	case "status":
		err = goose.Status(conn, ".")
	default:
		err = fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}

	log.Info("migration complete", zap.String("command", command))
}
