package http

import (
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handler calls into the store and provider with metrics tracking
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper. A nil collector disables tracking.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackStoreOperation tracks a storage call. Call the returned func with its error.
func (hm *HandlerMetrics) TrackStoreOperation(operation string) func(error) {
	return monitoring.NewTimer(hm.metrics, "store", operation).StopErr
}

// TrackAccountOperation tracks register, login and logout
func (hm *HandlerMetrics) TrackAccountOperation(operation string) func(error) {
	return monitoring.NewTimer(hm.metrics, "accounts", operation).StopErr
}

// TrackGeneration tracks provider calls made on behalf of a REST request
func (hm *HandlerMetrics) TrackGeneration(operation string) func(error) {
	return monitoring.NewTimer(hm.metrics, "generator", operation).StopErr
}
