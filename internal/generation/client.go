package generation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/tracing"
)

const (
	DefaultModel       = "gpt-4o"
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Config wires a Client. Only Completer is required.
type Config struct {
	Completer   Completer
	Model       string
	MaxAttempts int
	BaseDelay   time.Duration
	Guidelines  Guidelines

	Logger  *logging.Logger
	Metrics *monitoring.Metrics
	Tracer  *tracing.Tracer

	// Sleep overrides the backoff wait, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client produces validated content for a prompt and platform. It keeps no
// per-call state and is safe to share across sessions.
type Client struct {
	completer   Completer
	model       string
	maxAttempts int
	baseDelay   time.Duration
	guidelines  Guidelines
	logger      *logging.Logger
	metrics     *monitoring.Metrics
	tracer      *tracing.Tracer
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a generation client.
func NewClient(cfg Config) *Client {
	c := &Client{
		completer:   cfg.Completer,
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		guidelines:  cfg.Guidelines,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		sleep:       cfg.Sleep,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.guidelines == nil {
		c.guidelines = DefaultGuidelines()
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.sleep == nil {
		c.sleep = resilience.SleepContext
	}
	return c
}

// Generate asks the provider for a post and validates the reply. Every
// failure is returned as *Error.
func (c *Client) Generate(ctx context.Context, prompt, platform string) (result *Result, err error) {
	start := time.Now()
	platform = strings.ToLower(strings.TrimSpace(platform))

	if c.tracer != nil {
		var span *tracing.Span
		span, ctx = c.tracer.StartSpan(ctx, "generation.generate")
		span.SetTag("platform", platform)
		defer func() {
			if err != nil {
				span.SetError(err)
			}
			span.Finish()
			c.tracer.Submit(span)
		}()
	}

	defer func() {
		if c.metrics == nil {
			return
		}
		outcome := "success"
		if gerr, ok := AsError(err); ok {
			outcome = gerr.Code
		}
		c.metrics.RecordGeneration(platform, outcome, time.Since(start))
	}()

	req := BuildRequest(c.model, platform, prompt, c.guidelines)

	var resp *ChatResponse
	retryCfg := resilience.RetryConfig{
		MaxAttempts: c.maxAttempts,
		BaseDelay:   c.baseDelay,
		ShouldRetry: IsRateLimit,
		Sleep:       c.sleep,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			c.logger.Warn("Provider rate limited, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		},
	}
	callErr := resilience.Retry(ctx, retryCfg, func(ctx context.Context) error {
		var cerr error
		resp, cerr = c.completer.Complete(ctx, req)
		c.recordAttempt(cerr)
		return cerr
	})
	if callErr != nil {
		gerr := wrapProviderError(callErr)
		c.logger.Error("Content generation failed",
			append(tracing.Fields(ctx),
				zap.String("platform", platform),
				zap.String("code", gerr.Code),
				zap.Error(callErr),
			)...,
		)
		return nil, gerr
	}

	text := resp.Text()
	if text == "" {
		return nil, &Error{Code: CodeEmptyResponse, Message: "No content generated from OpenAI"}
	}

	result, err = ParseResult(text)
	if err != nil {
		if gerr, ok := AsError(err); ok {
			c.logger.Warn("Provider reply failed validation",
				zap.String("platform", platform),
				zap.String("reason", gerr.Message),
			)
			return nil, gerr
		}
		return nil, wrapProviderError(err)
	}

	c.logger.Debug("Content generated",
		zap.String("platform", platform),
		zap.Int("hashtags", len(result.Hashtags)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (c *Client) recordAttempt(err error) {
	if c.metrics == nil {
		return
	}
	switch {
	case err == nil:
		c.metrics.RecordProviderAttempt("success")
	case IsRateLimit(err):
		c.metrics.RecordProviderAttempt("rate_limited")
	default:
		c.metrics.RecordProviderAttempt("error")
	}
}
