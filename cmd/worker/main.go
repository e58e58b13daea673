package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"userhub/config"
	"userhub/internal/mailer"
	"userhub/internal/repository"
	"userhub/internal/task"
	"userhub/internal/worker"
	"userhub/pkg/circuitbreaker"
	"userhub/pkg/db"
	"userhub/pkg/logger"
	"userhub/pkg/mq"
	redisclient "userhub/pkg/redis"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("starting worker")

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init Redis (dedup + retry counting)
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := worker.NewDeduper(rdb, time.Hour, log)
	retries := worker.NewRetryCounter(rdb, time.Hour)

	// 4. Init repositories
	tokenRepo := repository.NewRefreshTokenRepository(dbConn)
	resetRepo := repository.NewPasswordResetRepository(dbConn)

	// 5. Init mailer
	var m mailer.Mailer
	if cfg.SMTP.Host != "" {
		m = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		log.Warn("no SMTP host configured, using noop mailer")
		m = mailer.NewNoopMailer(log)
	}
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())

	// 6. Init publisher (DLQ + cleanup scheduling)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	if err := publisher.SetupDLQ(
		task.RoutingKeySendEmail,
		task.RoutingKeyUserRegistered,
		task.RoutingKeyCleanup,
	); err != nil {
		log.Fatal("failed to set up DLQ", zap.Error(err))
	}

	// 7. Init task handler + consumer for task.* events
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := worker.NewTaskHandler(m, tokenRepo, resetRepo, deduper, retries, publisher, breaker, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, worker.QueueName, "task.*", log)
	if err != nil {
		log.Fatal("failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(handler.Handle)

	go func() {
		if err := consumer.StartConsuming(ctx); err != nil {
			log.Fatal("consumer failed", zap.Error(err))
		}
	}()

	// 8. Start hourly token cleanup
	scheduler := worker.NewCleanupScheduler(publisher, log)
	go scheduler.Start(ctx)

	// 9. Wait for shutdown signal, then stop the consumer and scheduler
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	log.Info("worker shutting down")
}
