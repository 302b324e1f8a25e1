package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PostPilot/internal/auth"
	"github.com/GriffinCanCode/PostPilot/internal/generation"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
)

type stubAuth struct {
	rej *auth.Rejection
}

func (s stubAuth) Authenticate(*http.Request) (*auth.Identity, *auth.Rejection) {
	if s.rej != nil {
		return nil, s.rej
	}
	return &auth.Identity{UserID: 1, Username: "alice", SessionID: "sess"}, nil
}

type generatorFunc func(ctx context.Context, prompt, platform string) (*generation.Result, error)

func (f generatorFunc) Generate(ctx context.Context, prompt, platform string) (*generation.Result, error) {
	return f(ctx, prompt, platform)
}

func sampleResult() *generation.Result {
	return &generation.Result{
		Content:              "Hello world",
		Hashtags:             []string{"#hello", "#world"},
		EngagementPrediction: 80,
		Tone:                 "friendly",
		QualityMetrics: generation.QualityMetrics{
			Clarity: 90, Relevance: 85, Originality: 70, EngagementPotential: 75,
		},
	}
}

type testEnv struct {
	server  *httptest.Server
	handler *Handler
	metrics *monitoring.Metrics
}

func newTestEnv(t *testing.T, authn Authenticator, gen Generator) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	h := NewHandler(authn, gen, DefaultOptions(), logging.NewNop(), metrics)

	r := gin.New()
	r.GET("/ws", h.HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, handler: h, metrics: metrics}
}

func (e *testEnv) url() string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func generateFrame(prompt, platform string) map[string]any {
	return map[string]any{"type": TypeGenerateContent, "prompt": prompt, "platform": platform}
}

func TestRejectedHandshakeGetsNoFrame(t *testing.T) {
	env := newTestEnv(t, stubAuth{rej: &auth.Rejection{Status: http.StatusUnauthorized, Reason: auth.ReasonNoCookie}},
		generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
			t.Fatal("generator must not be called")
			return nil, nil
		}))

	conn, resp, err := websocket.DefaultDialer.Dial(env.url(), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"no cookie"}`, string(body))
}

func TestConnectionStatusOnOpen(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return sampleResult(), nil
	}))
	conn := env.dial(t)

	frame := readFrame(t, conn)
	assert.Equal(t, map[string]any{"type": "connection_status", "status": "connected"}, frame)
}

func TestGenerateContentSuccess(t *testing.T) {
	args := make(chan [2]string, 1)
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(_ context.Context, prompt, platform string) (*generation.Result, error) {
		args <- [2]string{prompt, platform}
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	sendJSON(t, conn, generateFrame("hello", "twitter"))
	frame := readFrame(t, conn)

	assert.Equal(t, TypeContentGenerated, frame["type"])
	content := frame["content"].(map[string]any)
	assert.Equal(t, "Hello world", content["content"])
	for _, tag := range content["hashtags"].([]any) {
		assert.True(t, strings.HasPrefix(tag.(string), "#"))
	}
	assert.Contains(t, content, "quality_metrics")

	ts, err := time.Parse(time.RFC3339Nano, frame["timestamp"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	assert.Equal(t, [2]string{"hello", "twitter"}, <-args)
}

func TestGenerationErrorFrame(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return nil, &generation.Error{Code: generation.CodeRateLimit, Message: "Failed to generate content: 429 Rate limit reached"}
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	sendJSON(t, conn, generateFrame("hello", "instagram"))
	frame := readFrame(t, conn)

	assert.Equal(t, map[string]any{
		"type":    "error",
		"code":    "RATE_LIMIT",
		"message": "Failed to generate content: 429 Rate limit reached",
	}, frame)
}

func TestUnexpectedFailureIsUnknownError(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return nil, errors.New("boom")
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	sendJSON(t, conn, generateFrame("hello", "twitter"))
	frame := readFrame(t, conn)
	assert.Equal(t, CodeUnknownError, frame["code"])
	assert.Equal(t, "An unexpected error occurred", frame["message"])
}

func TestGeneratorPanicIsUnknownError(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		panic("provider exploded")
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	sendJSON(t, conn, generateFrame("hello", "twitter"))
	frame := readFrame(t, conn)
	assert.Equal(t, CodeUnknownError, frame["code"])
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	frame := readFrame(t, conn)
	assert.Equal(t, map[string]any{
		"type":    "error",
		"code":    "MESSAGE_PARSE_ERROR",
		"message": "Invalid message format",
	}, frame)

	sendJSON(t, conn, generateFrame("hello", "twitter"))
	frame = readFrame(t, conn)
	assert.Equal(t, TypeContentGenerated, frame["type"])
}

func TestInvalidPromptSkipsProvider(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		calls.Add(1)
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	for _, prompt := range []any{"", "   ", 42, nil} {
		sendJSON(t, conn, map[string]any{"type": TypeGenerateContent, "prompt": prompt, "platform": "twitter"})
		frame := readFrame(t, conn)
		assert.Equal(t, generation.CodeValidationError, frame["code"])
		assert.Equal(t, "Invalid prompt: must be a non-empty string", frame["message"])
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestUnknownTypeIgnored(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	sendJSON(t, conn, map[string]any{"type": "ping"})
	sendJSON(t, conn, generateFrame("hello", "twitter"))

	frame := readFrame(t, conn)
	assert.Equal(t, TypeContentGenerated, frame["type"])
}

func TestNonObjectFrames(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	// Frames without a string type get no reply
	for _, raw := range []string{`{"type":5}`, `[1,2]`, `"hello"`, `42`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
	}
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`null`)))

	frame := readFrame(t, conn)
	assert.Equal(t, map[string]any{
		"type":    "error",
		"code":    "MESSAGE_PARSE_ERROR",
		"message": "Invalid message format",
	}, frame)

	sendJSON(t, conn, generateFrame("hello", "twitter"))
	frame = readFrame(t, conn)
	assert.Equal(t, TypeContentGenerated, frame["type"])
}

func TestSecondRequestWhileAwaiting(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls atomic.Int32

	env := newTestEnv(t, stubAuth{}, generatorFunc(func(ctx context.Context, _, _ string) (*generation.Result, error) {
		calls.Add(1)
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	sendJSON(t, conn, generateFrame("first", "twitter"))
	<-started

	sendJSON(t, conn, generateFrame("second", "twitter"))
	frame := readFrame(t, conn)
	assert.Equal(t, map[string]any{
		"type":    "error",
		"code":    "REQUEST_IN_PROGRESS",
		"message": "A generation request is already in progress",
	}, frame)

	close(release)
	frame = readFrame(t, conn)
	assert.Equal(t, TypeContentGenerated, frame["type"])
	assert.Equal(t, int32(1), calls.Load())

	sendJSON(t, conn, generateFrame("third", "twitter"))
	<-started
	frame = readFrame(t, conn)
	assert.Equal(t, TypeContentGenerated, frame["type"])
}

func TestReplyQueuedBeforeIdle(t *testing.T) {
	tests := []struct {
		name      string
		gen       generatorFunc
		wantFrame string
	}{
		{
			name: "content",
			gen: func(context.Context, string, string) (*generation.Result, error) {
				return sampleResult(), nil
			},
			wantFrame: TypeContentGenerated,
		},
		{
			name: "error",
			gen: func(context.Context, string, string) (*generation.Result, error) {
				return nil, &generation.Error{Code: generation.CodeAPIError, Message: "boom"}
			},
			wantFrame: TypeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Unbuffered, so the frame is observed while generate is still
			// blocked in send.
			sess := newSession("conn", auth.Identity{UserID: 1}, nil, tt.gen, Options{SendBuffer: 0}, logging.NewNop(), nil)
			defer sess.cancel()
			sess.state = StateAwaiting
			sess.wg.Add(1)

			done := make(chan struct{})
			go func() {
				sess.generate("p", "twitter")
				close(done)
			}()

			select {
			case data := <-sess.out:
				assert.Contains(t, string(data), `"type":"`+tt.wantFrame+`"`)
				assert.Equal(t, StateAwaiting, sess.State())
			case <-time.After(2 * time.Second):
				t.Fatal("no frame queued")
			}

			<-done
			assert.Equal(t, StateIdle, sess.State())
		})
	}
}

func TestCloseCancelsGeneration(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	var once sync.Once

	env := newTestEnv(t, stubAuth{}, generatorFunc(func(ctx context.Context, _, _ string) (*generation.Result, error) {
		close(started)
		<-ctx.Done()
		once.Do(func() { close(cancelled) })
		return nil, ctx.Err()
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	sendJSON(t, conn, generateFrame("hello", "twitter"))
	<-started
	require.NoError(t, conn.Close())

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("generation was not cancelled after close")
	}

	assert.Eventually(t, func() bool { return env.handler.ActiveSessions() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestConnectionMetrics(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.WSConnections))
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(env.metrics.WSMessages.WithLabelValues("out", TypeConnectionStatus)) == 1
	}, 5*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(env.metrics.WSConnections) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestShutdownSendsGoingAway(t *testing.T) {
	env := newTestEnv(t, stubAuth{}, generatorFunc(func(context.Context, string, string) (*generation.Result, error) {
		return sampleResult(), nil
	}))
	conn := env.dial(t)
	readFrame(t, conn)

	require.Eventually(t, func() bool { return env.handler.ActiveSessions() == 1 }, time.Second, 10*time.Millisecond)
	env.handler.Shutdown()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(r))

	assert.True(t, originChecker([]string{"*"})(r))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting_generation_result", StateAwaiting.String())
}
