package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Provider  ProviderConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string   `envconfig:"PORT" default:"8000"`
	Host           string   `envconfig:"HOST" default:"0.0.0.0"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// ProviderConfig holds the generation provider settings.
type ProviderConfig struct {
	APIKey         string        `envconfig:"OPENAI_API_KEY"`
	BaseURL        string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Model          string        `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	Timeout        time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	MaxAttempts    int           `envconfig:"GENERATION_MAX_ATTEMPTS" default:"3"`
	BaseDelay      time.Duration `envconfig:"GENERATION_BASE_DELAY" default:"1s"`
	GuidelinesFile string        `envconfig:"GUIDELINES_FILE"`
}

// SessionConfig holds cookie session settings.
// An empty RedisURL selects the in-memory session store.
type SessionConfig struct {
	Secret     string        `envconfig:"SESSION_SECRET" default:"postpilot-dev-secret"`
	CookieName string        `envconfig:"SESSION_COOKIE_NAME" default:"connect.sid"`
	TTL        time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	Secure     bool          `envconfig:"SESSION_SECURE" default:"false"`
	RedisURL   string        `envconfig:"REDIS_URL"`
}

// DatabaseConfig holds relational store settings.
// An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	PingTimeout     time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
}

// SchedulerConfig holds the scheduled post worker settings.
type SchedulerConfig struct {
	Enabled  bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"30s"`
	Batch    int           `envconfig:"SCHEDULER_BATCH" default:"50"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Provider: ProviderConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			Timeout:     60 * time.Second,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
		Session: SessionConfig{
			Secret:     "postpilot-dev-secret",
			CookieName: "connect.sid",
			TTL:        24 * time.Hour,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Batch:    50,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
