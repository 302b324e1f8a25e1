package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
)

// scriptedCompleter replays canned replies and records every request.
type scriptedCompleter struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []ChatRequest
}

type scriptedReply struct {
	text *string
	err  error
}

func reply(text string) scriptedReply { return scriptedReply{text: &text} }
func failure(err error) scriptedReply { return scriptedReply{err: err} }

func (s *scriptedCompleter) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	if next.err != nil {
		return nil, next.err
	}
	resp := &ChatResponse{Choices: []Choice{{}}}
	resp.Choices[0].Message.Content = next.text
	return resp, nil
}

func (s *scriptedCompleter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type sleepLog struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (l *sleepLog) sleep(ctx context.Context, d time.Duration) error {
	l.mu.Lock()
	l.delays = append(l.delays, d)
	l.mu.Unlock()
	return ctx.Err()
}

func newTestClient(completer Completer, sleeps *sleepLog) *Client {
	return NewClient(Config{Completer: completer, Sleep: sleeps.sleep})
}

var rateLimited = &ProviderError{Status: 429, Type: "requests", Message: "Rate limit reached"}

func TestGenerateSuccess(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{reply(validReply)}}
	client := newTestClient(completer, &sleepLog{})

	res, err := client.Generate(context.Background(), "hello", "Twitter")
	require.NoError(t, err)

	for _, tag := range res.Hashtags {
		assert.Equal(t, "#", tag[:1])
	}

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, &ResponseFormat{Type: "json_object"}, req.ResponseFormat)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "expert twitter content strategist")
	assert.Contains(t, req.Messages[1].Content, "Original prompt: hello")
	assert.Contains(t, req.Messages[1].Content, "Use 1-2 relevant hashtags maximum")
}

func TestGenerateUnknownPlatformUsesGenericGuidance(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{reply(validReply)}}
	client := newTestClient(completer, &sleepLog{})

	_, err := client.Generate(context.Background(), "hello", "mastodon")
	require.NoError(t, err)
	assert.Contains(t, completer.requests[0].Messages[1].Content, GenericGuideline)
}

func TestGenerateRetriesOnlyRateLimits(t *testing.T) {
	tests := []struct {
		name       string
		replies    []scriptedReply
		wantCode   string
		wantCalls  int
		wantDelays []time.Duration
	}{
		{
			name:       "rate limited three times",
			replies:    []scriptedReply{failure(rateLimited), failure(rateLimited), failure(rateLimited)},
			wantCode:   CodeRateLimit,
			wantCalls:  3,
			wantDelays: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name: "rate limit signalled by error type",
			replies: []scriptedReply{
				failure(&ProviderError{Status: 400, Type: "rate_limit_exceeded"}),
				reply(validReply),
			},
			wantCalls:  2,
			wantDelays: []time.Duration{time.Second},
		},
		{
			name: "rate limit type without 429 surfaces as api error",
			replies: []scriptedReply{
				failure(&ProviderError{Status: 400, Type: "rate_limit_exceeded"}),
				failure(&ProviderError{Status: 400, Type: "rate_limit_exceeded"}),
				failure(&ProviderError{Status: 400, Type: "rate_limit_exceeded"}),
			},
			wantCode:   CodeAPIError,
			wantCalls:  3,
			wantDelays: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:      "auth error is not retried",
			replies:   []scriptedReply{failure(&ProviderError{Status: 401, Message: "Incorrect API key"}), reply(validReply)},
			wantCode:  CodeAuthError,
			wantCalls: 1,
		},
		{
			name:      "server error is not retried",
			replies:   []scriptedReply{failure(&ProviderError{Status: 500}), reply(validReply)},
			wantCode:  CodeAPIError,
			wantCalls: 1,
		},
		{
			name:      "transport error is not retried",
			replies:   []scriptedReply{failure(errors.New("connection refused")), reply(validReply)},
			wantCode:  CodeAPIError,
			wantCalls: 1,
		},
		{
			name:       "recovers on third attempt",
			replies:    []scriptedReply{failure(rateLimited), failure(rateLimited), reply(validReply)},
			wantCalls:  3,
			wantDelays: []time.Duration{time.Second, 2 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &scriptedCompleter{replies: tt.replies}
			sleeps := &sleepLog{}
			client := newTestClient(completer, sleeps)

			res, err := client.Generate(context.Background(), "p", "instagram")
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.NotNil(t, res)
			} else {
				gerr, ok := AsError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, gerr.Code)
				assert.Contains(t, gerr.Message, "Failed to generate content: ")
			}
			assert.Equal(t, tt.wantCalls, completer.calls())
			assert.Equal(t, tt.wantDelays, sleeps.delays)
		})
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *ChatResponse
	}{
		{"no choices", &ChatResponse{}},
		{"nil content", &ChatResponse{Choices: []Choice{{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(Config{Completer: fixedCompleter{resp: tt.resp}})

			_, err := client.Generate(context.Background(), "p", "linkedin")
			gerr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, CodeEmptyResponse, gerr.Code)
			assert.Equal(t, "No content generated from OpenAI", gerr.Message)
		})
	}
}

func TestGenerateValidationAndParseFailures(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		reply(`{"content":"c","hashtags":["a"],"engagement_prediction":150,"tone":"t"}`),
		reply(`not json`),
	}}
	client := newTestClient(completer, &sleepLog{})

	_, err := client.Generate(context.Background(), "p", "facebook")
	gerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidationError, gerr.Code)

	_, err = client.Generate(context.Background(), "p", "facebook")
	gerr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeAPIError, gerr.Code)
}

func TestGenerateCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	completer := &scriptedCompleter{replies: []scriptedReply{failure(rateLimited), reply(validReply)}}

	client := NewClient(Config{
		Completer: completer,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})

	_, err := client.Generate(ctx, "p", "twitter")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, completer.calls())
}

func TestGenerateRecordsMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	completer := &scriptedCompleter{replies: []scriptedReply{failure(rateLimited), reply(validReply)}}
	sleeps := &sleepLog{}

	client := NewClient(Config{Completer: completer, Metrics: metrics, Sleep: sleeps.sleep})
	_, err := client.Generate(context.Background(), "p", "twitter")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GenerationRequests.WithLabelValues("twitter", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderAttempts.WithLabelValues("rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderAttempts.WithLabelValues("success")))
}

func TestGenerateConcurrentUse(t *testing.T) {
	client := NewClient(Config{Completer: fixedCompleter{text: validReply}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Generate(context.Background(), "p", "twitter")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

// fixedCompleter returns the same reply forever.
type fixedCompleter struct {
	text string
	resp *ChatResponse
}

func (f fixedCompleter) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if f.resp != nil {
		return f.resp, nil
	}
	text := f.text
	resp := &ChatResponse{Choices: []Choice{{}}}
	resp.Choices[0].Message.Content = &text
	return resp, nil
}
