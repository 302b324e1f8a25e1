package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/tracing"
)

// OpenAIConfig configures the chat completions transport.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// OnBreakerChange is notified when the provider breaker changes state.
	OnBreakerChange func(name string, from, to resilience.State)
}

// OpenAI calls an OpenAI compatible chat completions endpoint. It makes
// exactly one HTTP call per Complete; retries belong to Client.
type OpenAI struct {
	resty   *resty.Client
	breaker *resilience.Breaker
}

type openAIErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// NewOpenAI creates a chat completions client.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	// Pooled transport only; the retryable client's own retry loop is off
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "PostPilot/1.0")
	restyClient.SetTransport(retryClient.HTTPClient.Transport)
	restyClient.JSONMarshal = sonic.Marshal
	restyClient.JSONUnmarshal = sonic.Unmarshal
	restyClient.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		tracing.InjectHeaders(r.Context(), r.Header)
		return nil
	})

	breaker := resilience.New("openai", resilience.Settings{
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: cfg.OnBreakerChange,
		IsSuccessful:  countsAsHealthy,
	})

	return &OpenAI{resty: restyClient, breaker: breaker}
}

// countsAsHealthy keeps caller side problems (bad key, quota, bad request)
// and cancellations out of the breaker's failure counts.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Status < http.StatusInternalServerError
	}
	return false
}

// Breaker exposes the provider circuit breaker for health reporting.
func (o *OpenAI) Breaker() *resilience.Breaker {
	return o.breaker
}

// Complete implements Completer.
func (o *OpenAI) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return resilience.Do(o.breaker, func() (*ChatResponse, error) {
		var (
			out     ChatResponse
			failure openAIErrorEnvelope
		)

		resp, err := o.resty.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&out).
			SetError(&failure).
			Post("/chat/completions")
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}

		if resp.IsError() {
			return nil, &ProviderError{
				Status:  resp.StatusCode(),
				Type:    failure.Error.Type,
				Message: failure.Error.Message,
			}
		}
		return &out, nil
	})
}
