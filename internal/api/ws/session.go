package ws

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/auth"
	"github.com/GriffinCanCode/PostPilot/internal/generation"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
)

// State is the generation state of a session
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting_generation_result"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Generator produces content for a prompt and platform
type Generator interface {
	Generate(ctx context.Context, prompt, platform string) (*generation.Result, error)
}

// Session is one authenticated socket. It serves at most one generation at a time.
type Session struct {
	id       string
	identity auth.Identity
	conn     *websocket.Conn
	opts     Options

	generator Generator
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	out    chan []byte
	once   sync.Once
	wg     sync.WaitGroup

	mu    sync.Mutex
	state State
}

func newSession(id string, ident auth.Identity, conn *websocket.Conn, gen Generator, opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:        id,
		identity:  ident,
		conn:      conn,
		opts:      opts,
		generator: gen,
		logger:    logger,
		metrics:   metrics,
		ctx:       ctx,
		cancel:    cancel,
		out:       make(chan []byte, opts.SendBuffer),
	}
}

// ID returns the connection id
func (s *Session) ID() string { return s.id }

// Identity returns the identity fixed at handshake
func (s *Session) Identity() auth.Identity { return s.identity }

// State returns the current generation state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the session ends
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// run serves the socket until it closes
func (s *Session) run() {
	go s.writeLoop()

	s.send(TypeConnectionStatus, connectedFrame())
	s.readLoop()

	s.Close()
	s.wg.Wait()
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(s.opts.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("WebSocket closed unexpectedly", zap.Error(err))
			} else {
				s.logger.Debug("WebSocket closed", zap.Error(err))
			}
			return
		}
		s.handle(data)
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case data := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("WebSocket write failed", zap.Error(err))
				s.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(s.opts.WriteWait)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("WebSocket ping failed", zap.Error(err))
				s.Close()
				return
			}
		}
	}
}

func (s *Session) handle(data []byte) {
	req, err := decodeRequest(data)
	if err != nil {
		s.logger.Debug("Discarding malformed frame", zap.Error(err))
		s.record("in", "invalid")
		s.send(TypeError, errorFrame(CodeMessageParseError, msgInvalidFormat))
		return
	}
	label := req.Type
	if label == "" {
		label = "untyped"
	}
	s.record("in", label)

	switch req.Type {
	case TypeGenerateContent:
		s.startGeneration(req)
	default:
		s.logger.Debug("Ignoring unknown frame type", zap.String("type", req.Type))
	}
}

func (s *Session) startGeneration(req *GenerateRequest) {
	s.mu.Lock()
	if s.state == StateAwaiting {
		s.mu.Unlock()
		s.send(TypeError, errorFrame(CodeRequestInProgress, msgRequestInProgress))
		return
	}

	prompt, ok := req.PromptText()
	if !ok || strings.TrimSpace(prompt) == "" {
		s.mu.Unlock()
		s.send(TypeError, errorFrame(generation.CodeValidationError, msgInvalidPrompt))
		return
	}

	s.state = StateAwaiting
	s.wg.Add(1)
	s.mu.Unlock()

	go s.generate(prompt, req.PlatformName())
}

func (s *Session) generate(prompt, platform string) {
	defer s.wg.Done()

	var (
		result *generation.Result
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("generation panicked: %v", r)
			}
		}()
		result, err = s.generator.Generate(s.ctx, prompt, platform)
	}()

	// Idle only once the reply is queued
	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	if s.ctx.Err() != nil {
		s.logger.Debug("Discarding generation for closed session", zap.String("platform", platform))
		return
	}

	if err != nil {
		if gerr, ok := generation.AsError(err); ok {
			s.send(TypeError, errorFrame(gerr.Code, gerr.Message))
			return
		}
		s.logger.Error("Unexpected generation failure", zap.Error(err))
		s.send(TypeError, errorFrame(CodeUnknownError, msgUnexpected))
		return
	}
	if result == nil {
		s.logger.Error("Generator returned no result and no error")
		s.send(TypeError, errorFrame(CodeUnknownError, msgUnexpected))
		return
	}

	s.send(TypeContentGenerated, contentFrame(result, time.Now()))
}

// send queues a frame. Frames for a closed session are dropped.
func (s *Session) send(frameType string, v any) {
	data, err := encodeFrame(v)
	if err != nil {
		s.logger.Error("Failed to encode frame", zap.String("type", frameType), zap.Error(err))
		return
	}

	select {
	case <-s.ctx.Done():
		return
	default:
	}

	select {
	case s.out <- data:
		s.record("out", frameType)
	case <-s.ctx.Done():
	}
}

func (s *Session) record(direction, frameType string) {
	if s.metrics != nil {
		s.metrics.RecordWSMessage(direction, frameType)
	}
}

// Close ends the session and cancels any generation in flight
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		_ = s.conn.Close()
	})
}

// closeWith sends a close frame with code before closing
func (s *Session) closeWith(code int, text string) {
	deadline := time.Now().Add(s.opts.WriteWait)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	s.Close()
}
