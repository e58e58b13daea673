package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"userhub/internal/model"
	"userhub/internal/repository/fakes"
	"userhub/internal/task"
	"userhub/pkg/circuitbreaker"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) AcquireOnce(ctx context.Context, scope, taskID string) bool {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[taskID] {
		return false
	}
	d.seen[taskID] = true
	return true
}

func (d *fakeDeduper) Release(ctx context.Context, scope, taskID string) {
	delete(d.seen, taskID)
}

type fakeRetryCounter struct {
	counts map[string]int64
}

func (r *fakeRetryCounter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	if r.counts == nil {
		r.counts = make(map[string]int64)
	}
	r.counts[key]++
	return r.counts[key], nil
}

func (r *fakeRetryCounter) Reset(ctx context.Context, key string) error {
	delete(r.counts, key)
	return nil
}

type fakeDLQ struct {
	published []string
}

func (d *fakeDLQ) PublishToDLQ(routingKey string, payload []byte, originalError string) error {
	d.published = append(d.published, routingKey)
	return nil
}

type handlerFixture struct {
	mailer  *fakeMailer
	tokens  *fakes.RefreshTokenStore
	resets  *fakes.PasswordResetStore
	deduper *fakeDeduper
	retries *fakeRetryCounter
	dlq     *fakeDLQ
	handler *TaskHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		mailer:  &fakeMailer{},
		tokens:  fakes.NewRefreshTokenStore(),
		resets:  fakes.NewPasswordResetStore(),
		deduper: &fakeDeduper{},
		retries: &fakeRetryCounter{},
		dlq:     &fakeDLQ{},
	}
	// generous thresholds so the breaker stays closed unless a test trips it
	f.handler = NewTaskHandler(
		f.mailer, f.tokens, f.resets,
		f.deduper, f.retries, f.dlq,
		circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
			FailureThreshold:    50,
			SuccessThreshold:    2,
			Timeout:             time.Second,
			HalfOpenMaxRequests: 3,
		}),
		zap.NewNop(),
	)
	return f
}

func marshalTask(t *testing.T, taskType string, payload any) json.RawMessage {
	t.Helper()
	tsk, err := task.New(taskType, payload)
	require.NoError(t, err)
	body, err := tsk.Marshal()
	require.NoError(t, err)
	return body
}

func TestHandleSendEmail(t *testing.T) {
	f := newHandlerFixture(t)

	raw := marshalTask(t, task.TypeSendEmail, task.EmailPayload{
		To:        "alice@example.com",
		Subject:   "Password reset code",
		Template:  "password_reset",
		Variables: map[string]string{"otp": "123456", "minutes": "15"},
	})

	require.NoError(t, f.handler.Handle(context.Background(), raw))
	assert.Equal(t, []string{"alice@example.com"}, f.mailer.sent)
}

func TestHandleUserRegistered(t *testing.T) {
	f := newHandlerFixture(t)

	raw := marshalTask(t, task.TypeUserRegistered, task.UserRegisteredPayload{
		UserID: 1,
		Email:  "alice@example.com",
	})

	require.NoError(t, f.handler.Handle(context.Background(), raw))
	assert.Equal(t, []string{"alice@example.com"}, f.mailer.sent)
}

func TestHandleDuplicateSkipped(t *testing.T) {
	f := newHandlerFixture(t)

	raw := marshalTask(t, task.TypeUserRegistered, task.UserRegisteredPayload{
		UserID: 1,
		Email:  "alice@example.com",
	})

	require.NoError(t, f.handler.Handle(context.Background(), raw))
	require.NoError(t, f.handler.Handle(context.Background(), raw))
	assert.Len(t, f.mailer.sent, 1)
}

func TestHandleMalformedMessageAcked(t *testing.T) {
	f := newHandlerFixture(t)

	assert.NoError(t, f.handler.Handle(context.Background(), json.RawMessage(`{not json`)))
	assert.NoError(t, f.handler.Handle(context.Background(), json.RawMessage(`{"id":"x"}`)))
	assert.Empty(t, f.mailer.sent)
}

func TestHandleUnknownTypeAcked(t *testing.T) {
	f := newHandlerFixture(t)

	raw := marshalTask(t, "mystery", struct{}{})
	assert.NoError(t, f.handler.Handle(context.Background(), raw))
}

func TestHandleRedeliveredFailureRetried(t *testing.T) {
	f := newHandlerFixture(t)
	f.mailer.err = errors.New("smtp down")

	raw := marshalTask(t, task.TypeUserRegistered, task.UserRegisteredPayload{
		UserID: 1,
		Email:  "alice@example.com",
	})
	tsk, err := task.Unmarshal(raw)
	require.NoError(t, err)

	// the failing delivery must free its dedup claim so the broker's
	// redelivery is retried instead of being acked as a duplicate
	require.Error(t, f.handler.Handle(context.Background(), raw))
	assert.False(t, f.deduper.seen[tsk.ID])

	require.Error(t, f.handler.Handle(context.Background(), raw))
	assert.Empty(t, f.dlq.published)
	assert.Empty(t, f.mailer.sent)
}

func TestHandleFailureRequeuesThenDLQ(t *testing.T) {
	f := newHandlerFixture(t)
	f.mailer.err = errors.New("smtp down")

	raw := marshalTask(t, task.TypeUserRegistered, task.UserRegisteredPayload{
		UserID: 1,
		Email:  "alice@example.com",
	})
	tsk, err := task.Unmarshal(raw)
	require.NoError(t, err)

	// failures below the delivery limit propagate so the consumer requeues
	for i := 0; i < maxDeliveries-1; i++ {
		err := f.handler.Handle(context.Background(), raw)
		require.Error(t, err)
	}
	assert.Empty(t, f.dlq.published)

	// the final failure parks the task on the DLQ and acks
	require.NoError(t, f.handler.Handle(context.Background(), raw))
	assert.Equal(t, []string{task.RoutingKeyUserRegistered}, f.dlq.published)

	// the parked task keeps its claim, so a late redelivery is skipped
	assert.True(t, f.deduper.seen[tsk.ID])
	require.NoError(t, f.handler.Handle(context.Background(), raw))
	assert.Equal(t, []string{task.RoutingKeyUserRegistered}, f.dlq.published)
}

func TestHandleCleanup(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tokens.Create(ctx, &model.RefreshToken{
		UserID: 1, Token: "expired", ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, f.tokens.Create(ctx, &model.RefreshToken{
		UserID: 1, Token: "live", ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, f.resets.Create(ctx, &model.PasswordResetToken{
		UserID: 1, Token: "123456", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	raw := marshalTask(t, task.TypeCleanupExpiredTokens, struct{}{})
	require.NoError(t, f.handler.Handle(ctx, raw))

	assert.Len(t, f.tokens.Tokens, 1)
	assert.Equal(t, "live", f.tokens.Tokens[0].Token)
	assert.Empty(t, f.resets.Tokens)
}
