package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by the caller
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated
	ErrConflict = errors.New("already exists")
)

// Store is the persistence boundary for every REST resource
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// Content history
	ListHistory(ctx context.Context, userID int64) ([]HistoryEntry, error)
	CreateHistory(ctx context.Context, e *HistoryEntry) error
	DeleteHistory(ctx context.Context, userID, id int64) error

	// Analyses
	ListAnalyses(ctx context.Context, userID int64) ([]Analysis, error)
	CreateAnalysis(ctx context.Context, a *Analysis) error
	DeleteAnalysis(ctx context.Context, userID, id int64) error

	// Scheduled posts
	ListScheduled(ctx context.Context, userID int64) ([]ScheduledPost, error)
	CreateScheduled(ctx context.Context, p *ScheduledPost) error
	PendingDue(ctx context.Context, now time.Time, limit int) ([]ScheduledPost, error)
	UpdateScheduledStatus(ctx context.Context, id int64, status string) error

	// Settings
	GetSettings(ctx context.Context, userID int64) (*Settings, error)
	UpsertSettings(ctx context.Context, s *Settings) error

	// Social accounts
	ListSocialAccounts(ctx context.Context, userID int64) ([]SocialAccount, error)
	AddSocialAccount(ctx context.Context, a *SocialAccount) error
	RemoveSocialAccount(ctx context.Context, userID, id int64) error

	// Name identifies the backend in health output
	Name() string
	Close() error
}
