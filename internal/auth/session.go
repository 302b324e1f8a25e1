package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned by a SessionStore for unknown or expired ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidCredentials is returned by Login for a bad username or password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned by Register for a taken username
	ErrUserExists = errors.New("username already exists")
)

// Session is the server-side record behind a session cookie
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Identity is the authenticated principal bound to a request or connection
type Identity struct {
	UserID    int64
	Username  string
	SessionID string
}

// SessionStore persists sessions by id
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Name() string
}
