package resilience

import (
	"context"
	"time"
)

// RetryConfig controls Retry. Only errors accepted by ShouldRetry are
// retried; anything else is returned from the attempt that produced it.
type RetryConfig struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt. The wait after
	// attempt i (0-indexed) is BaseDelay * 2^i.
	BaseDelay time.Duration
	// ShouldRetry classifies an error as retryable.
	ShouldRetry func(err error) bool
	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
	// Sleep waits for d or until ctx is done. Defaults to SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Backoff returns the wait after attempt (0-indexed).
func Backoff(base time.Duration, attempt int) time.Duration {
	return base << uint(attempt)
}

// Retry calls fn until it succeeds, returns a non-retryable error, or runs
// out of attempts. The last error is returned unwrapped so callers can
// classify it. A cancelled context during backoff returns ctx.Err().
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}
		if cfg.ShouldRetry == nil || !cfg.ShouldRetry(err) {
			return err
		}

		delay := Backoff(cfg.BaseDelay, attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}

	return err
}

// SleepContext waits for d, returning early with ctx.Err() if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
