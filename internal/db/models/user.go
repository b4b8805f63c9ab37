// Package models - user.go defines the User account model and the Session row backing
// the login cookie.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User statuses. Status tracks whether the account currently holds a live session.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a staff or admin account
type User struct {
	ID            int64      `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	Email         string     `json:"email" db:"email"`
	Password      string     `json:"-" db:"password"` // bcrypt hash, never serialized
	CPNumber      *string    `json:"cp_number" db:"cp_number"`
	Role          string     `json:"role" db:"role"`
	Status        string     `json:"status" db:"status"`
	Blocked       bool       `json:"blocked" db:"blocked"`
	LastLogin     *time.Time `json:"last_login" db:"last_login"`
	LastLogout    *time.Time `json:"last_logout" db:"last_logout"`
	ImageURL      *string    `json:"image_url" db:"image_url"`
	ImagePublicID *string    `json:"image_public_id" db:"image_public_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Session represents a revocable login session referenced by the auth cookie
type Session struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Valid reports whether the session can still authenticate requests at t.
func (s *Session) Valid(t time.Time) bool {
	return s.RevokedAt == nil && t.Before(s.ExpiresAt)
}
