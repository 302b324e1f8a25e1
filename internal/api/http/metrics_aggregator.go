package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/resilience"
)

// MetricsAggregator turns the in-process counters into a JSON summary
type MetricsAggregator struct {
	metrics  *monitoring.Metrics
	breaker  *resilience.Breaker
	sessions func() int
}

// NewMetricsAggregator creates a metrics aggregator. breaker is the provider
// circuit breaker and sessions reports open sockets; either may be nil.
func NewMetricsAggregator(metrics *monitoring.Metrics, breaker *resilience.Breaker, sessions func() int) *MetricsAggregator {
	return &MetricsAggregator{
		metrics:  metrics,
		breaker:  breaker,
		sessions: sessions,
	}
}

// MetricsSnapshot represents a snapshot of service metrics
type MetricsSnapshot struct {
	Timestamp time.Time              `json:"timestamp"`
	Backend   map[string]interface{} `json:"backend"`
	Provider  map[string]interface{} `json:"provider,omitempty"`
	Summary   MetricsSummary         `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests         int64   `json:"total_requests"`
	AverageLatencyMs      float64 `json:"average_latency_ms"`
	ErrorRate             float64 `json:"error_rate"`
	GenerationFailureRate float64 `json:"generation_failure_rate"`
	ActiveConnections     int     `json:"active_connections"`
	UptimeSeconds         float64 `json:"uptime_seconds"`
}

// GetAggregatedMetrics returns the JSON metrics snapshot
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	snapshot := MetricsSnapshot{
		Timestamp: time.Now().UTC(),
		Backend:   ma.getBackendMetrics(),
		Provider:  ma.getProviderMetrics(),
		Summary:   ma.calculateSummary(),
	}
	c.JSON(http.StatusOK, snapshot)
}

func (ma *MetricsAggregator) getBackendMetrics() map[string]interface{} {
	snapshot := ma.metrics.GetSnapshot()

	backend := map[string]interface{}{
		"status":             "operational",
		"total_requests":     snapshot.TotalRequests,
		"total_errors":       snapshot.TotalErrors,
		"total_generations":  snapshot.TotalGenerations,
		"failed_generations": snapshot.FailedGenerations,
		"active_connections": snapshot.ActiveConnections,
		"uptime_seconds":     ma.metrics.GetUptimeSeconds(),
	}
	if ma.sessions != nil {
		backend["ws_sessions"] = ma.sessions()
	}
	return backend
}

func (ma *MetricsAggregator) getProviderMetrics() map[string]interface{} {
	if ma.breaker == nil {
		return nil
	}
	counts := ma.breaker.Counts()
	return map[string]interface{}{
		"breaker":              ma.breaker.Name(),
		"state":                ma.breaker.State().String(),
		"requests":             counts.Requests,
		"consecutive_failures": counts.ConsecutiveFailures,
	}
}

func (ma *MetricsAggregator) calculateSummary() MetricsSummary {
	snapshot := ma.metrics.GetSnapshot()

	var avgLatency float64
	if snapshot.RequestCount > 0 {
		avgLatency = (snapshot.TotalDuration / float64(snapshot.RequestCount)) * 1000
	}

	var errorRate float64
	if snapshot.TotalRequests > 0 {
		errorRate = float64(snapshot.TotalErrors) / float64(snapshot.TotalRequests)
	}

	var genFailureRate float64
	if snapshot.TotalGenerations > 0 {
		genFailureRate = float64(snapshot.FailedGenerations) / float64(snapshot.TotalGenerations)
	}

	return MetricsSummary{
		TotalRequests:         snapshot.TotalRequests,
		AverageLatencyMs:      avgLatency,
		ErrorRate:             errorRate,
		GenerationFailureRate: genFailureRate,
		ActiveConnections:     int(snapshot.ActiveConnections),
		UptimeSeconds:         ma.metrics.GetUptimeSeconds(),
	}
}
