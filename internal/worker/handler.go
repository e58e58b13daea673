package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"userhub/internal/mailer"
	"userhub/internal/repository"
	"userhub/internal/task"
	"userhub/pkg/circuitbreaker"
	"userhub/pkg/metrics"
)

// QueueName is the worker's durable queue, bound to "task.*".
const QueueName = "userhub.tasks.q"

const maxDeliveries = 5

const dedupScope = "task"

type deduper interface {
	AcquireOnce(ctx context.Context, scope, taskID string) bool
	Release(ctx context.Context, scope, taskID string)
}

type retryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type dlqPublisher interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// TaskHandler dispatches task envelopes to their processors. A returned error
// means "requeue"; poisoned tasks are parked on the DLQ after maxDeliveries.
type TaskHandler struct {
	mailer  mailer.Mailer
	tokens  repository.RefreshTokenStore
	resets  repository.PasswordResetStore
	deduper deduper
	retries retryCounter
	dlq     dlqPublisher
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewTaskHandler(
	m mailer.Mailer,
	tokens repository.RefreshTokenStore,
	resets repository.PasswordResetStore,
	dd deduper,
	rc retryCounter,
	dlq dlqPublisher,
	breaker *circuitbreaker.CircuitBreaker,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		mailer:  m,
		tokens:  tokens,
		resets:  resets,
		deduper: dd,
		retries: rc,
		dlq:     dlq,
		breaker: breaker,
		logger:  logger,
	}
}

// Handle processes one broker message.
func (h *TaskHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	t, err := task.Unmarshal(raw)
	if err != nil {
		// undecodable messages are not retryable
		h.logger.Error("dropping malformed task", zap.Error(err))
		metrics.IncrementTaskProcessed("unknown", "failed")
		return nil
	}

	if !t.CreatedAt.IsZero() {
		metrics.RecordTaskConsumeLatency(task.RoutingKey(t.Type), QueueName, time.Since(t.CreatedAt))
	}

	if !h.deduper.AcquireOnce(ctx, dedupScope, t.ID) {
		metrics.IncrementTaskProcessed(t.Type, "duplicate")
		return nil
	}

	if err := h.process(ctx, t); err != nil {
		return h.handleFailure(ctx, t, raw, err)
	}

	if err := h.retries.Reset(ctx, retryKey(t.ID)); err != nil {
		h.logger.Warn("failed to reset retry counter", zap.String("task_id", t.ID), zap.Error(err))
	}
	metrics.IncrementTaskProcessed(t.Type, "success")
	return nil
}

// handleFailure decides between requeue and DLQ. Every requeue path must
// release the dedup claim first, or the redelivery would be skipped as a
// duplicate and the task lost. A task parked on the DLQ keeps its claim.
func (h *TaskHandler) handleFailure(ctx context.Context, t *task.Task, raw json.RawMessage, cause error) error {
	count, err := h.retries.IncrementAndGet(ctx, retryKey(t.ID))
	if err != nil {
		h.logger.Warn("retry counter unavailable, requeueing",
			zap.String("task_id", t.ID), zap.Error(err))
		h.deduper.Release(ctx, dedupScope, t.ID)
		return cause
	}

	if count >= maxDeliveries {
		h.logger.Error("task exceeded max deliveries, moving to DLQ",
			zap.String("task_id", t.ID),
			zap.String("type", t.Type),
			zap.Int64("deliveries", count),
			zap.Error(cause),
		)
		if err := h.dlq.PublishToDLQ(task.RoutingKey(t.Type), raw, cause.Error()); err != nil {
			h.logger.Error("failed to publish to DLQ", zap.String("task_id", t.ID), zap.Error(err))
			h.deduper.Release(ctx, dedupScope, t.ID)
			return cause // keep requeueing rather than lose the task
		}
		metrics.IncrementTaskProcessed(t.Type, "failed")
		return nil
	}

	h.logger.Warn("task failed, requeueing",
		zap.String("task_id", t.ID),
		zap.String("type", t.Type),
		zap.Int64("attempt", count),
		zap.Error(cause),
	)
	h.deduper.Release(ctx, dedupScope, t.ID)
	return cause
}

func (h *TaskHandler) process(ctx context.Context, t *task.Task) error {
	switch t.Type {
	case task.TypeSendEmail:
		return h.processSendEmail(ctx, t)
	case task.TypeUserRegistered:
		return h.processUserRegistered(ctx, t)
	case task.TypeCleanupExpiredTokens:
		return h.processCleanup(ctx)
	default:
		h.logger.Warn("unknown task type, dropping", zap.String("type", t.Type), zap.String("task_id", t.ID))
		return nil
	}
}

func (h *TaskHandler) processSendEmail(ctx context.Context, t *task.Task) error {
	var p task.EmailPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		h.logger.Error("dropping send_email task with bad payload", zap.String("task_id", t.ID), zap.Error(err))
		return nil
	}

	body, err := mailer.Render(p.Template, p.Variables)
	if err != nil {
		h.logger.Error("dropping send_email task with bad template", zap.String("task_id", t.ID), zap.Error(err))
		return nil
	}

	return h.send(ctx, p.To, p.Subject, body)
}

func (h *TaskHandler) processUserRegistered(ctx context.Context, t *task.Task) error {
	var p task.UserRegisteredPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		h.logger.Error("dropping user_registered task with bad payload", zap.String("task_id", t.ID), zap.Error(err))
		return nil
	}

	body, err := mailer.Render("welcome", map[string]string{"email": p.Email})
	if err != nil {
		return err
	}

	return h.send(ctx, p.Email, "Welcome", body)
}

func (h *TaskHandler) send(ctx context.Context, to, subject, body string) error {
	err := h.breaker.Execute(func() error {
		return h.mailer.Send(ctx, to, subject, body)
	})
	if err != nil {
		metrics.IncrementEmailSent("failed")
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	metrics.IncrementEmailSent("success")
	return nil
}

func (h *TaskHandler) processCleanup(ctx context.Context) error {
	refreshRemoved, err := h.tokens.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup refresh tokens: %w", err)
	}
	resetRemoved, err := h.resets.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup reset tokens: %w", err)
	}

	h.logger.Info("expired tokens cleaned up",
		zap.Int64("refresh_tokens", refreshRemoved),
		zap.Int64("reset_tokens", resetRemoved),
	)
	return nil
}
