/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the PostPilot
backend, tracking HTTP requests, content generation, WebSocket traffic,
storage calls and the scheduled post worker.

# Features

- HTTP request metrics (latency, throughput, size)
- Generation metrics (result codes per platform, provider attempts)
- Service call metrics for storage and the session store
- Handshake and API auth rejections by reason
- WebSocket connection and frame metrics
- Uptime

# Usage

	// Create metrics collector on its own registry
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "storage", "create_history")
	// ... perform operation ...
	timer.StopErr(err)

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
