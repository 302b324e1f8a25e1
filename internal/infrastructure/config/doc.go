// Package config provides 12-factor configuration management for the PostPilot backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, allowed origins)
//   - Provider: generation provider endpoint, model and retry budget
//   - Session: cookie signing and the session store backend
//   - Database: relational store connection and pool settings
//   - Scheduler: scheduled post worker cadence
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, ALLOWED_ORIGINS
//   - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL, GUIDELINES_FILE
//   - SESSION_SECRET, SESSION_COOKIE_NAME, REDIS_URL
//   - DATABASE_URL, SCHEDULER_INTERVAL
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST
package config
