/*
Package resilience provides a circuit breaker and a classified retry loop for
calls to the generation provider.

# Overview

The breaker stops hammering a provider that keeps failing. Retry repeats a
call with exponential backoff, but only for errors the caller marks as
retryable (rate limits); everything else fails on the first attempt.

# Breaker

The provider breaker trips after five consecutive failures and stays open for
30s. IsSuccessful lets the caller keep its own mistakes (bad key, bad
request, cancelled context) out of the counts, so only provider outages trip
it.

# Usage

	// Create a circuit breaker
	breaker := resilience.New("provider", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	// Execute request through breaker
	reply, err := resilience.Do(breaker, func() (*Reply, error) {
		return client.Call(ctx)
	})

	// Retry rate limited calls: waits 1s, 2s between three attempts
	err = resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		ShouldRetry: isRateLimited,
	}, func(ctx context.Context) error {
		return call(ctx)
	})

# States

Closed passes calls through. Open fails them with ErrCircuitOpen until the
timeout elapses. Half-Open lets MaxRequests probes through; a success closes
the breaker and a failure reopens it.
*/
package resilience
