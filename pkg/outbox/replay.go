package outbox

import (
	"context"

	"go.uber.org/zap"
)

type eventStore interface {
	GetFailedEvents(ctx context.Context, limit int) ([]*Event, error)
	MarkAsSent(ctx context.Context, eventID int64) error
}

type rawPublisher interface {
	PublishRaw(routingKey string, body []byte) error
}

// ReplayService re-publishes events the dispatcher parked as failed, giving
// operators a recovery path after broker outages.
type ReplayService struct {
	repo      eventStore
	publisher rawPublisher
	logger    *zap.Logger
}

func NewReplayService(repo eventStore, publisher rawPublisher, logger *zap.Logger) *ReplayService {
	return &ReplayService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ReplayFailed drains up to limit failed events back into the broker.
// Events that still cannot be published stay parked for the next run.
func (s *ReplayService) ReplayFailed(ctx context.Context, limit int) (int, error) {
	events, err := s.repo.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, event := range events {
		if err := s.publisher.PublishRaw(event.RoutingKey, event.Payload); err != nil {
			s.logger.Error("Failed to replay event",
				zap.Int64("event_id", event.ID),
				zap.String("routing_key", event.RoutingKey),
				zap.Error(err),
			)
			continue
		}

		if err := s.repo.MarkAsSent(ctx, event.ID); err != nil {
			s.logger.Error("Failed to mark replayed event as sent",
				zap.Int64("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		replayed++
	}

	return replayed, nil
}
