package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
	"github.com/GriffinCanCode/PostPilot/internal/storage/memory"
)

type publisherFunc func(ctx context.Context, post storage.ScheduledPost) error

func (f publisherFunc) Publish(ctx context.Context, post storage.ScheduledPost) error {
	return f(ctx, post)
}

func seed(t *testing.T, store *memory.Store, posts ...*storage.ScheduledPost) {
	t.Helper()
	for _, p := range posts {
		require.NoError(t, store.CreateScheduled(context.Background(), p))
	}
}

func statusOf(t *testing.T, store *memory.Store, userID, id int64) string {
	t.Helper()
	posts, err := store.ListScheduled(context.Background(), userID)
	require.NoError(t, err)
	for _, p := range posts {
		if p.ID == id {
			return p.Status
		}
	}
	t.Fatalf("post %d not found", id)
	return ""
}

func TestTickPublishesDuePosts(t *testing.T) {
	store := memory.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	due := &storage.ScheduledPost{UserID: 1, Content: "due", Platform: "twitter", ScheduledTime: now.Add(-time.Minute)}
	broken := &storage.ScheduledPost{UserID: 1, Content: "broken", Platform: "facebook", ScheduledTime: now.Add(-time.Second)}
	later := &storage.ScheduledPost{UserID: 1, Content: "later", Platform: "twitter", ScheduledTime: now.Add(time.Hour)}
	seed(t, store, due, broken, later)

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	var published []string
	w := NewWorker(Config{
		Queue: store,
		Publisher: publisherFunc(func(_ context.Context, p storage.ScheduledPost) error {
			if p.Content == "broken" {
				return errors.New("network unavailable")
			}
			published = append(published, p.Content)
			return nil
		}),
		Metrics: metrics,
	})
	w.now = func() time.Time { return now }

	n, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"due"}, published)

	assert.Equal(t, storage.StatusPublished, statusOf(t, store, 1, due.ID))
	assert.Equal(t, storage.StatusFailed, statusOf(t, store, 1, broken.ID))
	assert.Equal(t, storage.StatusPending, statusOf(t, store, 1, later.ID))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScheduledPosts.WithLabelValues(storage.StatusPublished)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScheduledPosts.WithLabelValues(storage.StatusFailed)))

	n, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTickRespectsBatch(t *testing.T) {
	store := memory.New()
	now := time.Now()
	for i := 0; i < 5; i++ {
		seed(t, store, &storage.ScheduledPost{UserID: 1, Content: "p", ScheduledTime: now.Add(-time.Minute)})
	}

	w := NewWorker(Config{Queue: store, Batch: 2})
	n, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := memory.New()
	seed(t, store, &storage.ScheduledPost{UserID: 1, Content: "p", ScheduledTime: time.Now().Add(-time.Minute)})

	w := NewWorker(Config{Queue: store, Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return statusOf(t, store, 1, 1) == storage.StatusPublished
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
