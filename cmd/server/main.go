package main

import (
	"context"

	"go.uber.org/zap"

	"userhub/config"
	"userhub/internal/api"
	"userhub/internal/repository"
	"userhub/internal/service"
	"userhub/internal/usecase"
	"userhub/pkg/db"
	"userhub/pkg/logger"
	"userhub/pkg/mq"
	"userhub/pkg/outbox"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init RabbitMQ publisher (outbox dispatcher drains into it)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// 4. Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	tokenRepo := repository.NewRefreshTokenRepository(dbConn)
	resetRepo := repository.NewPasswordResetRepository(dbConn)
	txRunner := repository.NewTxRunner(dbConn)
	outboxRepo := outbox.NewRepository(dbConn)

	// 5. Init services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	userService := service.NewUserService(userRepo)

	// 6. Init use cases
	authUseCase := usecase.NewAuthUseCase(
		userRepo, tokenRepo, resetRepo, txRunner, outboxRepo,
		authService, userService, log,
	)
	userUseCase := usecase.NewUserUseCase(userRepo, userService, log)

	// 7. Start outbox dispatcher
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(ctx)

	// 8. Init handlers
	authHandler := api.NewAuthHandler(authUseCase, cfg.JWT.AccessExpiresS, log)
	userHandler := api.NewUserHandler(userUseCase, log)

	// 9. Init router
	router := api.NewRouter(
		authHandler, userHandler, authService,
		cfg.App.AllowedOrigins, cfg.App.DefaultLang,
		dbConn, publisher, log,
	)

	// 10. Run server
	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
