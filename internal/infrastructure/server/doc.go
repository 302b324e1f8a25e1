// Package server assembles PostPilot from its parts.
//
// NewServer picks the stores from config (postgres or memory for data,
// redis or memory for sessions), builds the generation client over the
// OpenAI transport and mounts the REST routes, the /ws socket and the
// metrics endpoints behind recovery, tracing, metrics, CORS and rate
// limiting middleware.
//
// Run serves HTTP and runs the scheduled post worker. Shutdown drains HTTP,
// closes open sockets, stops the worker and releases the stores.
package server
