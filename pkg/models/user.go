package models

import "time"

// User is an account that owns workflows. The password is stored as a bcrypt
// hash and never serialised.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username" validate:"required,min=3"`
	Email          string    `json:"email"    validate:"required,email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
