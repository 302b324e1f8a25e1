package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

// Store is an in-memory storage.Store
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	now      func() time.Time
	users    map[int64]*storage.User
	history  map[int64]*storage.HistoryEntry
	analyses map[int64]*storage.Analysis
	posts    map[int64]*storage.ScheduledPost
	settings map[int64]*storage.Settings
	accounts map[int64]*storage.SocialAccount
}

// New creates an empty store
func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]*storage.User),
		history:  make(map[int64]*storage.HistoryEntry),
		analyses: make(map[int64]*storage.Analysis),
		posts:    make(map[int64]*storage.ScheduledPost),
		settings: make(map[int64]*storage.Settings),
		accounts: make(map[int64]*storage.SocialAccount),
	}
}

var _ storage.Store = (*Store)(nil)

// Name returns the backend name
func (s *Store) Name() string { return "memory" }

// Close is a no-op
func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateUser inserts a user with default settings; usernames are unique case-insensitively
func (s *Store) CreateUser(_ context.Context, u *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return storage.ErrConflict
		}
	}

	u.ID = s.id()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	cp := *u
	s.users[u.ID] = &cp

	st := storage.DefaultSettings(u.ID)
	st.UpdatedAt = u.CreatedAt
	s.settings[u.ID] = &st
	return nil
}

// GetUser looks a user up by id
func (s *Store) GetUser(_ context.Context, id int64) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByUsername looks a user up by name
func (s *Store) GetUserByUsername(_ context.Context, username string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListHistory returns the user's history, newest first
func (s *Store) ListHistory(_ context.Context, userID int64) ([]storage.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.HistoryEntry, 0)
	for _, e := range s.history {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

// CreateHistory inserts a history entry
func (s *Store) CreateHistory(_ context.Context, e *storage.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.id()
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = s.now()
	}
	cp := *e
	cp.Hashtags = append(storage.StringList(nil), e.Hashtags...)
	s.history[e.ID] = &cp
	return nil
}

// DeleteHistory removes an entry owned by userID
func (s *Store) DeleteHistory(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.history[id]
	if !ok || e.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.history, id)
	return nil
}

// ListAnalyses returns the user's analyses, newest first
func (s *Store) ListAnalyses(_ context.Context, userID int64) ([]storage.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Analysis, 0)
	for _, a := range s.analyses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateAnalysis inserts an analysis
func (s *Store) CreateAnalysis(_ context.Context, a *storage.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	cp := *a
	cp.Hashtags = append(storage.StringList(nil), a.Hashtags...)
	s.analyses[a.ID] = &cp
	return nil
}

// DeleteAnalysis removes an analysis owned by userID
func (s *Store) DeleteAnalysis(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analyses[id]
	if !ok || a.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.analyses, id)
	return nil
}

// ListScheduled returns the user's posts ordered by scheduled time
func (s *Store) ListScheduled(_ context.Context, userID int64) ([]storage.ScheduledPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.ScheduledPost, 0)
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sortByScheduledTime(out)
	return out, nil
}

// CreateScheduled inserts a scheduled post
func (s *Store) CreateScheduled(_ context.Context, p *storage.ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.id()
	if p.Status == "" {
		p.Status = storage.StatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	cp := *p
	cp.Hashtags = append(storage.StringList(nil), p.Hashtags...)
	s.posts[p.ID] = &cp
	return nil
}

// PendingDue returns up to limit pending posts scheduled at or before now
func (s *Store) PendingDue(_ context.Context, now time.Time, limit int) ([]storage.ScheduledPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.ScheduledPost, 0)
	for _, p := range s.posts {
		if p.Status == storage.StatusPending && !p.ScheduledTime.After(now) {
			out = append(out, *p)
		}
	}
	sortByScheduledTime(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateScheduledStatus sets the status of a post
func (s *Store) UpdateScheduledStatus(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Status = status
	return nil
}

// GetSettings returns the user's settings
func (s *Store) GetSettings(_ context.Context, userID int64) (*storage.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.settings[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

// UpsertSettings creates or replaces the user's settings
func (s *Store) UpsertSettings(_ context.Context, st *storage.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.UpdatedAt = s.now()
	cp := *st
	s.settings[st.UserID] = &cp
	return nil
}

// ListSocialAccounts returns the user's linked accounts
func (s *Store) ListSocialAccounts(_ context.Context, userID int64) ([]storage.SocialAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.SocialAccount, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddSocialAccount links an account
func (s *Store) AddSocialAccount(_ context.Context, a *storage.SocialAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

// RemoveSocialAccount unlinks an account owned by userID
func (s *Store) RemoveSocialAccount(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func sortByScheduledTime(posts []storage.ScheduledPost) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].ScheduledTime.Equal(posts[j].ScheduledTime) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].ScheduledTime.Before(posts[j].ScheduledTime)
	})
}
