// Package main is the entry point for the PostPilot backend.
//
// The server provides:
//   - REST API for accounts, content history, analyses, scheduling,
//     settings and linked social accounts
//   - WebSocket generation at /ws, authenticated by the session cookie
//   - Background publishing of scheduled posts
//   - Prometheus metrics at /metrics and a JSON summary at /metrics/json
//
// Configuration comes from environment variables (see internal/infrastructure/config).
// DATABASE_URL selects postgres and REDIS_URL selects redis sessions; both
// fall back to in-memory stores when unset.
//
// Usage:
//
//	OPENAI_API_KEY=sk-... ./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
