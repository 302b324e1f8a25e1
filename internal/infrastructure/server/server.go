package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httpapi "github.com/GriffinCanCode/PostPilot/internal/api/http"
	"github.com/GriffinCanCode/PostPilot/internal/api/middleware"
	"github.com/GriffinCanCode/PostPilot/internal/api/ws"
	"github.com/GriffinCanCode/PostPilot/internal/auth"
	"github.com/GriffinCanCode/PostPilot/internal/generation"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PostPilot/internal/schedule"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
	"github.com/GriffinCanCode/PostPilot/internal/storage/memory"
	"github.com/GriffinCanCode/PostPilot/internal/storage/postgres"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	http      *http.Server
	store     storage.Store
	redis     *redis.Client
	wsHandler *ws.Handler
	scheduler *schedule.Worker
	tracer    *tracing.Tracer
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing PostPilot server",
		zap.String("port", cfg.Server.Port),
		zap.String("model", cfg.Provider.Model),
	)

	// Metrics first, everything below reports into it
	metrics := monitoring.NewMetrics(nil)
	tracer := tracing.New("postpilot", logger.Logger)

	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	sessions, redisClient, err := openSessions(ctx, cfg.Session, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	authn := auth.NewAuthenticator(auth.AuthenticatorConfig{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
		Sessions:   sessions,
		Logger:     logger.Named("auth"),
		Metrics:    metrics,
	})
	accounts := auth.NewService(store, sessions, cfg.Session.TTL, bcrypt.DefaultCost, logger.Named("accounts"))

	generator, openai, err := newGenerator(cfg.Provider, logger, metrics, tracer)
	if err != nil {
		store.Close()
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := httpapi.NewHandlers(httpapi.Deps{
		Store:         store,
		Accounts:      accounts,
		Authenticator: authn,
		Generator:     generator,
		Metrics:       httpapi.NewHandlerMetrics(metrics),
		Logger:        logger,
	})
	httpapi.RegisterRoutes(router, handlers, authn)

	wsOpts := ws.DefaultOptions()
	wsOpts.AllowedOrigins = cfg.Server.AllowedOrigins
	wsHandler := ws.NewHandler(authn, generator, wsOpts, logger.Named("ws"), metrics)
	router.GET("/ws", wsHandler.HandleConnection)

	aggregator := httpapi.NewMetricsAggregator(metrics, openai.Breaker(), wsHandler.ActiveSessions)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", aggregator.GetAggregatedMetrics)

	s := &Server{
		router:    router,
		store:     store,
		redis:     redisClient,
		wsHandler: wsHandler,
		tracer:    tracer,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}

	if cfg.Scheduler.Enabled {
		s.scheduler = schedule.NewWorker(schedule.Config{
			Queue:    store,
			Interval: cfg.Scheduler.Interval,
			Batch:    cfg.Scheduler.Batch,
			Logger:   logger,
			Metrics:  metrics,
			Tracer:   tracer,
		})
	}

	logger.Info("Server initialized successfully",
		zap.String("store", store.Name()),
		zap.String("sessions", sessions.Name()),
		zap.Bool("scheduler", cfg.Scheduler.Enabled),
	)
	return s, nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *logging.Logger) (storage.Store, error) {
	if cfg.URL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		return memory.New(), nil
	}
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Connected to postgres")
	return postgres.New(db), nil
}

func openSessions(ctx context.Context, cfg config.SessionConfig, logger *logging.Logger) (auth.SessionStore, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return auth.NewMemoryStore(), nil, nil
	}
	client, err := auth.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Connected to redis session store")
	return auth.NewRedisStore(client, cfg.TTL), client, nil
}

func newGenerator(cfg config.ProviderConfig, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) (*generation.Client, *generation.OpenAI, error) {
	if cfg.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, generation requests will fail")
	}

	guidelines := generation.DefaultGuidelines()
	if cfg.GuidelinesFile != "" {
		loaded, err := generation.LoadGuidelines(cfg.GuidelinesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load guidelines: %w", err)
		}
		guidelines = loaded
	}

	genLogger := logger.Named("generation")
	openai := generation.NewOpenAI(generation.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		OnBreakerChange: func(name string, from, to resilience.State) {
			genLogger.Warn("Provider breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	client := generation.NewClient(generation.Config{
		Completer:   openai,
		Model:       cfg.Model,
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Guidelines:  guidelines,
		Logger:      genLogger,
		Metrics:     metrics,
		Tracer:      tracer,
	})
	return client, openai, nil
}

// Handler exposes the router, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the scheduler and serves HTTP until Shutdown
func (s *Server) Run() error {
	var runCtx context.Context
	runCtx, s.cancel = context.WithCancel(context.Background())

	if s.scheduler != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.scheduler.Run(runCtx)
		}()
	}

	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP, closes sockets and stops the scheduler
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	// Hijacked sockets are not tracked by http.Server
	s.wsHandler.Shutdown()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	s.tracer.Close()
	s.logger.Sync()

	return errors.Join(errs...)
}
