package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxClientLogBatch caps the entries accepted per request
const maxClientLogBatch = 100

// ClientLogEntry is a log line reported by a browser or CLI client
type ClientLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// ClientLogRequest is a batch of client log entries
type ClientLogRequest struct {
	Source  string           `json:"source"`
	Entries []ClientLogEntry `json:"entries"`
}

// IngestClientLogs writes client side log entries (socket drops, timeouts)
// into the server log tagged with the caller.
func (h *Handlers) IngestClientLogs(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}

	var req ClientLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log request format"})
		return
	}
	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No log entries provided"})
		return
	}
	if len(req.Entries) > maxClientLogBatch {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many log entries"})
		return
	}
	if req.Source == "" {
		req.Source = "client"
	}

	logger := h.logger.Named("client").With(
		zap.String("source", req.Source),
		zap.Int64("user_id", ident.UserID),
	)
	for _, entry := range req.Entries {
		fields := make([]zap.Field, 0, len(entry.Context)+1)
		fields = append(fields, zap.String("client_timestamp", entry.Timestamp))
		for key, value := range entry.Context {
			switch v := value.(type) {
			case string:
				fields = append(fields, zap.String(key, v))
			case float64:
				fields = append(fields, zap.Float64(key, v))
			case bool:
				fields = append(fields, zap.Bool(key, v))
			default:
				fields = append(fields, zap.Any(key, v))
			}
		}

		msg := h.clean(entry.Message)
		switch entry.Level {
		case "error":
			logger.Error(msg, fields...)
		case "warn":
			logger.Warn(msg, fields...)
		case "debug":
			logger.Debug(msg, fields...)
		default:
			logger.Info(msg, fields...)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}
