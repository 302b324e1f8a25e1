package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

// Queue is the part of storage.Store the worker needs
type Queue interface {
	PendingDue(ctx context.Context, now time.Time, limit int) ([]storage.ScheduledPost, error)
	UpdateScheduledStatus(ctx context.Context, id int64, status string) error
}

// Publisher delivers a post to its social network
type Publisher interface {
	Publish(ctx context.Context, post storage.ScheduledPost) error
}

// LogPublisher records publication in the log only
type LogPublisher struct {
	Logger *logging.Logger
}

// Publish logs the post
func (p LogPublisher) Publish(_ context.Context, post storage.ScheduledPost) error {
	p.Logger.Info("Publishing scheduled post",
		zap.Int64("post_id", post.ID),
		zap.Int64("user_id", post.UserID),
		zap.String("platform", post.Platform),
		zap.Time("scheduled_time", post.ScheduledTime),
	)
	return nil
}

// Config wires a Worker
type Config struct {
	Queue     Queue
	Publisher Publisher
	Interval  time.Duration
	Batch     int
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
	Tracer    *tracing.Tracer
}

// Worker publishes due posts on a fixed interval
type Worker struct {
	queue     Queue
	publisher Publisher
	interval  time.Duration
	batch     int
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
	now       func() time.Time
}

// NewWorker creates a worker
func NewWorker(cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 50
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = LogPublisher{Logger: cfg.Logger}
	}
	return &Worker{
		queue:     cfg.Queue,
		publisher: cfg.Publisher,
		interval:  cfg.Interval,
		batch:     cfg.Batch,
		logger:    cfg.Logger.Named("scheduler"),
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Scheduler started", zap.Duration("interval", w.interval), zap.Int("batch", w.batch))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("Scheduler tick failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick publishes one batch of due posts and returns how many were processed
func (w *Worker) Tick(ctx context.Context) (int, error) {
	if w.tracer != nil {
		var span *tracing.Span
		span, ctx = w.tracer.StartSpan(ctx, "schedule.tick")
		defer func() {
			span.Finish()
			w.tracer.Submit(span)
		}()
	}

	posts, err := w.queue.PendingDue(ctx, w.now(), w.batch)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, post := range posts {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		status := storage.StatusPublished
		if err := w.publisher.Publish(ctx, post); err != nil {
			status = storage.StatusFailed
			w.logger.Warn("Scheduled post failed to publish",
				zap.Int64("post_id", post.ID),
				zap.String("platform", post.Platform),
				zap.Error(err),
			)
		}

		if err := w.queue.UpdateScheduledStatus(ctx, post.ID, status); err != nil {
			w.logger.Error("Failed to update scheduled post",
				zap.Int64("post_id", post.ID),
				zap.String("status", status),
				zap.Error(err),
			)
			continue
		}
		if w.metrics != nil {
			w.metrics.RecordScheduledPost(status)
		}
		processed++
	}

	if processed > 0 {
		w.logger.Debug("Scheduler tick", zap.Int("processed", processed))
	}
	return processed, nil
}
