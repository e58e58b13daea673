package model

import "time"

type RefreshToken struct {
	ID         int
	UserID     int
	Token      string
	DeviceInfo *string
	IPAddress  *string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
