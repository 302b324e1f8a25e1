package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Defaults for Config
const (
	DefaultReconnectDelay = 3000 * time.Millisecond
	DefaultRequestTimeout = 30000 * time.Millisecond
	closeWait             = time.Second
)

// Config configures a Broker
type Config struct {
	// URL of the generation socket, e.g. ws://localhost:8000/ws
	URL string
	// Jar supplies the session cookie for the handshake
	Jar http.CookieJar
	// Header is sent with every handshake, e.g. an explicit Cookie
	Header http.Header
	// ReconnectDelay is the wait before redialling after an abnormal close
	ReconnectDelay time.Duration
	// RequestTimeout bounds each GenerateContent call
	RequestTimeout time.Duration
	// HandshakeTimeout bounds each dial
	HandshakeTimeout time.Duration
	Logger           *zap.Logger
}

type outcome struct {
	result *Result
	err    error
}

// pending is the single in-flight slot. It settles exactly once.
type pending struct {
	once  sync.Once
	done  chan outcome
	timer *time.Timer
}

func (p *pending) settle(o outcome) {
	p.once.Do(func() {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.done <- o
	})
}

// Broker owns one generation socket at a time. It reconnects after abnormal
// closes and correlates the single outstanding request with its reply.
type Broker struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	up        chan struct{}
	upOnce    sync.Once
	lastErr   error
	inflight  *pending
	started   bool
	closed    bool
	done      chan struct{}

	writeMu sync.Mutex
}

// NewBroker creates a broker. Nothing is dialled until Connect.
func NewBroker(cfg Config) *Broker {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			Jar:              cfg.Jar,
		},
		logger: cfg.Logger.Named("broker"),
		ctx:    ctx,
		cancel: cancel,
		up:     make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Connect dials the socket and waits for the server's connection_status.
// A refused handshake is returned as *HandshakeError and nothing is retried.
// Once the first socket is up, drops are redialled in the background; a drop
// before connection_status is redialled too and Connect keeps waiting.
func (b *Broker) Connect(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if b.started {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	conn, err := b.dial(ctx)
	if err != nil {
		b.setErr(err)
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	b.started = true
	b.attach(conn)
	b.mu.Unlock()

	go b.run(conn)

	select {
	case <-b.up:
		return nil
	case <-b.done:
		select {
		case <-b.up:
			return nil
		default:
		}
		b.mu.Lock()
		closed, err := b.closed, b.lastErr
		b.mu.Unlock()
		if closed {
			return ErrClosed
		}
		if err != nil {
			return err
		}
		return ErrConnectionLost
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connected reports whether the socket is open and acknowledged
func (b *Broker) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// LastError returns the most recent connection error, cleared on connect
func (b *Broker) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// GenerateContent sends one generation request and waits for its reply, the
// request timeout, or ctx. Only one call may be outstanding.
func (b *Broker) GenerateContent(ctx context.Context, prompt, platform string) (*Result, error) {
	data, err := encodeRequest(prompt, platform)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	b.mu.Lock()
	if b.conn == nil || !b.connected {
		b.mu.Unlock()
		return nil, ErrNotConnected
	}
	if b.inflight != nil {
		b.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	p := &pending{done: make(chan outcome, 1)}
	p.timer = time.AfterFunc(b.cfg.RequestTimeout, func() {
		b.release(p, outcome{err: ErrTimeout})
	})
	b.inflight = p
	conn := b.conn
	b.mu.Unlock()

	if err := b.write(conn, data); err != nil {
		b.release(p, outcome{err: fmt.Errorf("send request: %w", err)})
	}

	select {
	case o := <-p.done:
		return o.result, o.err
	case <-ctx.Done():
		b.release(p, outcome{err: ctx.Err()})
		o := <-p.done
		return o.result, o.err
	}
}

// Close sends a normal closure, stops reconnecting and waits for the read
// loop to exit.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	conn := b.conn
	started := b.started
	b.mu.Unlock()

	b.cancel()
	if !started {
		close(b.done)
		return nil
	}

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closed")
		if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait)); err != nil {
			b.logger.Debug("Close frame not sent", zap.Error(err))
		}
		select {
		case <-b.done:
			return nil
		case <-time.After(closeWait):
			conn.Close()
		}
	}
	<-b.done
	return nil
}

func (b *Broker) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := b.dialer.DialContext(ctx, b.cfg.URL, b.cfg.Header)
	if err != nil {
		if resp != nil {
			return nil, &HandshakeError{Status: resp.StatusCode, Err: err}
		}
		return nil, fmt.Errorf("dial %s: %w", b.cfg.URL, err)
	}
	return conn, nil
}

// attach installs conn as the current socket. Caller holds mu.
func (b *Broker) attach(conn *websocket.Conn) {
	b.conn = conn
	b.connected = false
}

// detach forgets conn and fails the outstanding request
func (b *Broker) detach(conn *websocket.Conn, code int) {
	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
		b.connected = false
		if code != websocket.CloseNormalClosure {
			b.lastErr = fmt.Errorf("connection closed with code %d", code)
		}
	}
	p := b.inflight
	b.inflight = nil
	b.mu.Unlock()

	conn.Close()
	if p != nil {
		p.settle(outcome{err: ErrConnectionLost})
	}
}

// run reads until the socket drops, then redials unless the close was normal
// or the broker was closed.
func (b *Broker) run(conn *websocket.Conn) {
	defer close(b.done)

	for {
		code := b.readLoop(conn)
		b.detach(conn, code)

		if code == websocket.CloseNormalClosure || b.ctx.Err() != nil {
			b.logger.Info("Socket closed", zap.Int("code", code))
			return
		}
		b.logger.Warn("Socket dropped, reconnecting",
			zap.Int("code", code),
			zap.Duration("delay", b.cfg.ReconnectDelay),
		)

		next, ok := b.reconnect()
		if !ok {
			return
		}
		conn = next
	}
}

func (b *Broker) reconnect() (*websocket.Conn, bool) {
	for {
		select {
		case <-b.ctx.Done():
			return nil, false
		case <-time.After(b.cfg.ReconnectDelay):
		}

		conn, err := b.dial(b.ctx)
		if err != nil {
			b.setErr(err)
			b.logger.Warn("Reconnect failed", zap.Error(err))
			continue
		}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			conn.Close()
			return nil, false
		}
		b.attach(conn)
		b.mu.Unlock()
		return conn, true
	}
}

// readLoop dispatches frames and returns the close code
func (b *Broker) readLoop(conn *websocket.Conn) int {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return ce.Code
			}
			return websocket.CloseAbnormalClosure
		}
		b.dispatch(conn, data)
	}
}

func (b *Broker) dispatch(conn *websocket.Conn, data []byte) {
	frame, err := decodeFrame(data)
	if err != nil {
		b.logger.Warn("Dropping malformed frame", zap.Error(err))
		return
	}

	switch frame.Type {
	case TypeConnectionStatus:
		b.mu.Lock()
		if b.conn == conn && !b.connected {
			b.connected = true
			b.lastErr = nil
			b.upOnce.Do(func() { close(b.up) })
		}
		b.mu.Unlock()
		b.logger.Debug("Connected", zap.String("status", frame.Status))

	case TypeContentGenerated:
		if frame.Content == nil {
			b.settleCurrent(outcome{err: &ServerError{Code: "MESSAGE_PARSE_ERROR", Message: "content_generated frame without content"}})
			return
		}
		b.settleCurrent(outcome{result: frame.Content})

	case TypeError:
		b.settleCurrent(outcome{err: &ServerError{Code: frame.Code, Message: frame.Message}})

	default:
		b.logger.Debug("Ignoring frame", zap.String("type", frame.Type))
	}
}

// settleCurrent resolves the in-flight slot. Frames with no slot are late
// replies to a request that already timed out and are dropped.
func (b *Broker) settleCurrent(o outcome) {
	b.mu.Lock()
	p := b.inflight
	b.inflight = nil
	b.mu.Unlock()

	if p == nil {
		b.logger.Debug("Dropping reply with no request in flight")
		return
	}
	p.settle(o)
}

// release settles p if it is still the in-flight slot
func (b *Broker) release(p *pending, o outcome) {
	b.mu.Lock()
	if b.inflight == p {
		b.inflight = nil
	}
	b.mu.Unlock()
	p.settle(o)
}

func (b *Broker) write(conn *websocket.Conn, data []byte) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Broker) setErr(err error) {
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()
}
