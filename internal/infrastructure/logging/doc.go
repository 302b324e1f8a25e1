// Package logging wraps zap for the server, the scheduler and postctl.
//
// FromSettings builds the logger from LOG_LEVEL and LOG_DEV: JSON lines in
// production, colored console output in development. Components take a
// *Logger and derive children with Named and With, so every line from a
// socket carries its conn_id and user_id:
//
//	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	wsLogger := logger.Named("ws").With(zap.String("conn_id", id))
//	wsLogger.Info("WebSocket connected")
//
// NewNop is the default wherever a logger is optional.
package logging
