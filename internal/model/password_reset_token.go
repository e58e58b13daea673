package model

import "time"

type PasswordResetToken struct {
	ID         int
	UserID     int
	Token      string
	RetryCount int
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
