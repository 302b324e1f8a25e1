package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/auth"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
)

// Options tunes socket keepalive and limits
type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int
	AllowedOrigins []string
}

// DefaultOptions returns production keepalive settings
func DefaultOptions() Options {
	return Options{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 512 * 1024,
		SendBuffer:     16,
		AllowedOrigins: []string{"*"},
	}
}

// Authenticator resolves a handshake request into an identity
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Identity, *auth.Rejection)
}

// Handler manages WebSocket connections
type Handler struct {
	auth      Authenticator
	generator Generator
	opts      Options
	upgrader  websocket.Upgrader
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHandler creates a new WebSocket handler
func NewHandler(authn Authenticator, gen Generator, opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	defaults := DefaultOptions()
	if opts.WriteWait <= 0 {
		opts.WriteWait = defaults.WriteWait
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaults.PongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = opts.PongWait * 9 / 10
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaults.MaxMessageSize
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaults.SendBuffer
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{
		auth:      authn,
		generator: gen,
		opts:      opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		logger:   logger.Named("ws"),
		metrics:  metrics,
		sessions: make(map[string]*Session),
	}
}

// HandleConnection authenticates the handshake, upgrades and serves the socket
func (h *Handler) HandleConnection(c *gin.Context) {
	ident, rej := h.auth.Authenticate(c.Request)
	if rej != nil {
		c.AbortWithStatusJSON(rej.Status, gin.H{"error": rej.Reason})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	logger := h.logger.With(
		zap.String("conn_id", connID),
		zap.Int64("user_id", ident.UserID),
	)
	sess := newSession(connID, *ident, conn, h.generator, h.opts, logger, h.metrics)

	h.track(sess)
	defer h.untrack(sess)

	logger.Info("WebSocket connected")
	sess.run()
	logger.Info("WebSocket disconnected")
}

// ActiveSessions returns the number of open sessions
func (h *Handler) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown closes every open session with a going-away frame
func (h *Handler) Shutdown() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.closeWith(websocket.CloseGoingAway, "server shutting down")
	}
}

func (h *Handler) track(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID()] = s
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

func (h *Handler) untrack(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID())
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
