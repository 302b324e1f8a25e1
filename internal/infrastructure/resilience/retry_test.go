package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThrottled = errors.New("throttled")

// recordingSleep captures requested waits without sleeping.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func retryThrottled(sleeper *recordingSleep) RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		ShouldRetry: func(err error) bool { return errors.Is(err, errThrottled) },
		Sleep:       sleeper.sleep,
	}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, Backoff(time.Second, 0))
	assert.Equal(t, 2*time.Second, Backoff(time.Second, 1))
	assert.Equal(t, 4*time.Second, Backoff(time.Second, 2))
}

func TestRetry(t *testing.T) {
	errFatal := errors.New("fatal")

	tests := []struct {
		name       string
		results    []error
		wantErr    error
		wantCalls  int
		wantDelays []time.Duration
	}{
		{
			name:      "first call succeeds",
			results:   []error{nil},
			wantCalls: 1,
		},
		{
			name:       "recovers after throttling",
			results:    []error{errThrottled, nil},
			wantCalls:  2,
			wantDelays: []time.Duration{time.Second},
		},
		{
			name:       "exhausts attempts",
			results:    []error{errThrottled, errThrottled, errThrottled},
			wantErr:    errThrottled,
			wantCalls:  3,
			wantDelays: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:      "non retryable aborts immediately",
			results:   []error{errFatal, nil},
			wantErr:   errFatal,
			wantCalls: 1,
		},
		{
			name:       "non retryable after throttling",
			results:    []error{errThrottled, errFatal},
			wantErr:    errFatal,
			wantCalls:  2,
			wantDelays: []time.Duration{time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &recordingSleep{}
			calls := 0

			err := Retry(context.Background(), retryThrottled(sleeper), func(ctx context.Context) error {
				res := tt.results[calls]
				calls++
				return res
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantDelays, sleeper.delays)
		})
	}
}

func TestRetryOnRetryHook(t *testing.T) {
	sleeper := &recordingSleep{}
	cfg := retryThrottled(sleeper)

	var attempts []int
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		attempts = append(attempts, attempt)
		assert.ErrorIs(t, err, errThrottled)
	}

	_ = Retry(context.Background(), cfg, func(ctx context.Context) error { return errThrottled })
	assert.Equal(t, []int{0, 1}, attempts)
}

func TestRetryContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	cfg := RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Hour,
		ShouldRetry: func(error) bool { return true },
	}

	err := Retry(ctx, cfg, func(ctx context.Context) error {
		calls++
		return errThrottled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.DeadlineExceeded)
}

func TestRetryZeroAttemptsStillCalls(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryConfig{}, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
