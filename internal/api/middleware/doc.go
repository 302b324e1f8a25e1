// Package middleware provides the gin middleware stack for the HTTP API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with credentialed requests
//   - RateLimit: Per-IP token bucket rate limiting
//   - RequireSession: Session cookie authentication for /api routes
//
// CORS Configuration:
//   - AllowOrigins: Permitted origin domains ("*" echoes the request origin)
//   - AllowMethods: HTTP methods (GET, POST, PATCH, DELETE)
//   - AllowCredentials: Cookie support, required by the session cookie
//   - MaxAge: Preflight cache duration
//
// Rate Limiting:
//   - Per-IP tracking with idle cleanup
//   - Token bucket algorithm
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	api := router.Group("/api", middleware.RequireSession(authenticator))
package middleware
