package model

import "time"

type User struct {
	ID            int
	Email         string
	PasswordHash  string
	FirstName     *string
	LastName      *string
	Phone         *string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	CreatedUserID *int
	UpdatedUserID *int
}
