package memory

import (
	"context"
	"testing"
	"time"

	"github.com/GriffinCanCode/PostPilot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &storage.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	err := s.CreateUser(ctx, &storage.User{Username: "ALICE"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := s.GetUserByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestHistoryOrderingAndOwnership(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := &storage.HistoryEntry{UserID: 1, Content: "old", GeneratedAt: base}
	newer := &storage.HistoryEntry{UserID: 1, Content: "new", GeneratedAt: base.Add(time.Hour)}
	other := &storage.HistoryEntry{UserID: 2, Content: "theirs", GeneratedAt: base}
	for _, e := range []*storage.HistoryEntry{older, newer, other} {
		require.NoError(t, s.CreateHistory(ctx, e))
	}

	list, err := s.ListHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Content)
	assert.Equal(t, "old", list[1].Content)

	assert.ErrorIs(t, s.DeleteHistory(ctx, 1, other.ID), storage.ErrNotFound)
	require.NoError(t, s.DeleteHistory(ctx, 1, older.ID))

	list, err = s.ListHistory(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPendingDue(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	due := &storage.ScheduledPost{UserID: 1, Content: "due", ScheduledTime: now.Add(-time.Minute)}
	exact := &storage.ScheduledPost{UserID: 1, Content: "exact", ScheduledTime: now}
	later := &storage.ScheduledPost{UserID: 1, Content: "later", ScheduledTime: now.Add(time.Hour)}
	for _, p := range []*storage.ScheduledPost{later, exact, due} {
		require.NoError(t, s.CreateScheduled(ctx, p))
		assert.Equal(t, storage.StatusPending, p.Status)
	}

	posts, err := s.PendingDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "due", posts[0].Content)
	assert.Equal(t, "exact", posts[1].Content)

	posts, err = s.PendingDue(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	require.NoError(t, s.UpdateScheduledStatus(ctx, due.ID, storage.StatusPublished))
	posts, err = s.PendingDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "exact", posts[0].Content)

	assert.ErrorIs(t, s.UpdateScheduledStatus(ctx, 999, storage.StatusFailed), storage.ErrNotFound)
}

func TestSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetSettings(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	st := storage.DefaultSettings(1)
	require.NoError(t, s.UpsertSettings(ctx, &st))

	st.Theme = "dark"
	require.NoError(t, s.UpsertSettings(ctx, &st))

	got, err := s.GetSettings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.True(t, got.WeeklyDigest)
}

func TestSocialAccounts(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := &storage.SocialAccount{UserID: 1, Platform: "twitter", AccountID: "42", AccessToken: "secret"}
	require.NoError(t, s.AddSocialAccount(ctx, a))

	list, err := s.ListSocialAccounts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "secret", list[0].AccessToken)

	assert.ErrorIs(t, s.RemoveSocialAccount(ctx, 2, a.ID), storage.ErrNotFound)
	require.NoError(t, s.RemoveSocialAccount(ctx, 1, a.ID))
}
