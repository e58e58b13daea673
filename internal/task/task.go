// Package task defines the broker event envelope shared by the producers
// (use cases, cleanup ticker) and the worker consumers.
package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeSendEmail            = "send_email"
	TypeUserRegistered       = "user_registered"
	TypeCleanupExpiredTokens = "cleanup_expired_tokens"
)

// Routing keys on the events exchange. The worker queue binds to "task.*".
const (
	RoutingKeySendEmail      = "task.send_email"
	RoutingKeyUserRegistered = "task.user_registered"
	RoutingKeyCleanup        = "task.cleanup_expired_tokens"
)

// Task is the broker event envelope. ID doubles as the dedup key.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EmailPayload carries a templated email send request.
type EmailPayload struct {
	To        string            `json:"to"`
	Subject   string            `json:"subject"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables,omitempty"`
	Priority  string            `json:"priority,omitempty"`
}

// UserRegisteredPayload announces a new account.
type UserRegisteredPayload struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}

// New wraps a payload into an envelope with a fresh UUID.
func New(taskType string, payload any) (*Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Marshal renders the envelope as the broker wire form.
func (t *Task) Marshal() (json.RawMessage, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal task %s: %w", t.ID, err)
	}
	return body, nil
}

// Unmarshal parses a broker message body into an envelope.
func Unmarshal(body []byte) (*Task, error) {
	var t Task
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}
	if t.Type == "" {
		return nil, fmt.Errorf("task missing type")
	}
	return &t, nil
}

// RoutingKey maps a task type to its routing key.
func RoutingKey(taskType string) string {
	switch taskType {
	case TypeSendEmail:
		return RoutingKeySendEmail
	case TypeUserRegistered:
		return RoutingKeyUserRegistered
	case TypeCleanupExpiredTokens:
		return RoutingKeyCleanup
	default:
		return "task." + taskType
	}
}
