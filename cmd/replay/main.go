// Command replay re-publishes outbox events parked as failed.
//
//	replay [limit]
package main

import (
	"context"
	"os"
	"strconv"

	"go.uber.org/zap"

	"userhub/config"
	"userhub/pkg/db"
	"userhub/pkg/logger"
	"userhub/pkg/mq"
	"userhub/pkg/outbox"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	limit := 100
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n < 1 {
			log.Fatal("invalid limit", zap.String("arg", os.Args[1]))
		}
		limit = n
	}

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	svc := outbox.NewReplayService(outbox.NewRepository(dbConn), publisher, log)
	replayed, err := svc.ReplayFailed(context.Background(), limit)
	if err != nil {
		log.Fatal("replay failed", zap.Error(err))
	}

	log.Info("replay complete", zap.Int("replayed", replayed), zap.Int("limit", limit))
}
