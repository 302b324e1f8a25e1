package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	tracer := New("postpilot", zap.New(core))
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func TestStartSpanParenting(t *testing.T) {
	tracer, _ := newObservedTracer(t)

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, childCtx := tracer.StartSpan(ctx, "child")

	assert.NotEmpty(t, root.TraceID)
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
	assert.Empty(t, root.ParentID)
}

func TestSubmitLogsSpan(t *testing.T) {
	tracer, logs := newObservedTracer(t)

	span, _ := tracer.StartSpan(context.Background(), "generation.generate")
	span.SetTag("platform", "twitter")
	span.SetError(errors.New("rate limited"))
	span.Finish()
	tracer.Submit(span)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed with error").Len() == 1
	}, time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("span completed with error").All()[0]
	assert.Equal(t, "twitter", entry.ContextMap()["platform"])
	assert.Equal(t, http.StatusInternalServerError, span.StatusCode)
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	assert.NotPanics(t, func() { tracer.Submit(span) })
}

func TestHeaderPropagation(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	_, ctx := tracer.StartSpan(context.Background(), "outbound")

	h := http.Header{}
	InjectHeaders(ctx, h)
	assert.Equal(t, string(GetTraceID(ctx)), h.Get(HeaderTraceID))

	back := ExtractHeaders(context.Background(), h)
	assert.Equal(t, GetTraceID(ctx), GetTraceID(back))
	assert.Len(t, Fields(back), 2)
	assert.Nil(t, Fields(context.Background()))
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer(t)

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/api/settings", func(c *gin.Context) {
		assert.NotEmpty(t, GetTraceID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set(HeaderTraceID, "trc_incoming")
	router.ServeHTTP(w, req)

	assert.Equal(t, "trc_incoming", w.Header().Get(HeaderTraceID))
	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed").Len() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "200", logs.FilterMessage("span completed").All()[0].ContextMap()["http.status"])
}
