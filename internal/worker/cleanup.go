package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"userhub/internal/task"
	"userhub/pkg/mq"
)

// CleanupScheduler periodically publishes the token cleanup task.
type CleanupScheduler struct {
	publisher *mq.Publisher
	interval  time.Duration
	logger    *zap.Logger
}

func NewCleanupScheduler(publisher *mq.Publisher, logger *zap.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		publisher: publisher,
		interval:  time.Hour,
		logger:    logger,
	}
}

func (s *CleanupScheduler) WithInterval(interval time.Duration) *CleanupScheduler {
	s.interval = interval
	return s
}

// Start publishes one cleanup task per interval until ctx is canceled.
func (s *CleanupScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("cleanup scheduler started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.publish()
		}
	}
}

func (s *CleanupScheduler) publish() {
	t, err := task.New(task.TypeCleanupExpiredTokens, struct{}{})
	if err != nil {
		s.logger.Error("failed to build cleanup task", zap.Error(err))
		return
	}

	body, err := t.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal cleanup task", zap.Error(err))
		return
	}

	if err := s.publisher.PublishRaw(task.RoutingKeyCleanup, body); err != nil {
		s.logger.Error("failed to publish cleanup task", zap.Error(err))
		return
	}
	s.logger.Info("cleanup task published", zap.String("task_id", t.ID))
}
