package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Scoring ScoringConfig `yaml:"scoring"`
	Hermes  HermesConfig  `yaml:"hermes"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port            int `yaml:"port"`
	MetricsPort     int `yaml:"metrics_port"`
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
	// TrustProxy takes the client address from X-Real-IP or X-Forwarded-For.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

// StoreConfig selects the feedback ledger. The file driver serializes
// updates with a lock file next to the ledger and suits a single host with
// light traffic; sqlite is the durable local default and postgres or redis
// serve several replicas.
type StoreConfig struct {
	Driver   string        `yaml:"driver"` // memory, file, sqlite, postgres, redis
	Path     string        `yaml:"path"`
	URL      string        `yaml:"url"`
	RedisURL string        `yaml:"redis_url"`
	Breaker  BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failure_threshold"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	IntervalMs       int    `yaml:"interval_ms"`
}

type ScoringConfig struct {
	DefaultStrategy   string                     `yaml:"default_strategy"`
	Warmup            int                        `yaml:"warmup"`
	Nudge             float64                    `yaml:"nudge"`
	UrgencyWindowDays float64                    `yaml:"urgency_window_days"`
	// NoDeadlineUrgency is the urgency of undated tasks. The standard
	// ranking uses 0.1; other values change every undated task's score.
	NoDeadlineUrgency float64                    `yaml:"no_deadline_urgency"`
	HolidayCountry    string                     `yaml:"holiday_country"`
	Timezone          string                     `yaml:"timezone"`
	Strategies        map[string]StrategyWeights `yaml:"strategies"`
}

// StrategyWeights adds or overrides a named preset.
type StrategyWeights struct {
	Urgency    float64 `yaml:"urgency"`
	Importance float64 `yaml:"importance"`
	Effort     float64 `yaml:"effort"`
	Dependency float64 `yaml:"dependency"`
}

func (w StrategyWeights) Sum() float64 {
	return w.Urgency + w.Importance + w.Effort + w.Dependency
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.Store.Breaker.TimeoutMs) * time.Millisecond
}

func (c *Config) BreakerInterval() time.Duration {
	return time.Duration(c.Store.Breaker.IntervalMs) * time.Millisecond
}

// Location resolves the timezone that defines "today".
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Scoring.Timezone)
}

// SlogLevel maps the configured level name, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8600,
			MetricsPort:     8601,
			RateLimitPerMin: 120,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "prioritizer.db",
			Breaker: BreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				TimeoutMs:        30000,
				IntervalMs:       60000,
			},
		},
		Scoring: ScoringConfig{
			DefaultStrategy:   "smart_balance",
			Warmup:            5,
			Nudge:             0.1,
			UrgencyWindowDays: 30,
			NoDeadlineUrgency: 0.1,
			HolidayCountry:    "IN",
			Timezone:          "UTC",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the config from defaults, then the YAML file at path (if any),
// then a .env file in the working directory (if any), then PRIORITIZER_*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PRIORITIZER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("PRIORITIZER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("PRIORITIZER_RATE_LIMIT_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMin = n
		}
	}
	if v := os.Getenv("PRIORITIZER_TRUST_PROXY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.TrustProxy = b
		}
	}
	if v := os.Getenv("PRIORITIZER_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("PRIORITIZER_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("PRIORITIZER_DATABASE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("PRIORITIZER_REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
	}
	if v := os.Getenv("PRIORITIZER_BREAKER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Store.Breaker.Enabled = b
		}
	}
	if v := os.Getenv("PRIORITIZER_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("PRIORITIZER_DEFAULT_STRATEGY"); v != "" {
		cfg.Scoring.DefaultStrategy = v
	}
	if v := os.Getenv("PRIORITIZER_WARMUP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.Warmup = n
		}
	}
	if v := os.Getenv("PRIORITIZER_HOLIDAY_COUNTRY"); v != "" {
		cfg.Scoring.HolidayCountry = v
	}
	if v := os.Getenv("PRIORITIZER_TIMEZONE"); v != "" {
		cfg.Scoring.Timezone = v
	}
	if v := os.Getenv("PRIORITIZER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PRIORITIZER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for %s driver", c.Store.Driver)
		}
	case "postgres":
		if c.Store.URL == "" {
			return fmt.Errorf("store.url required for postgres driver")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url required for redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Scoring.Warmup < 0 {
		return fmt.Errorf("scoring.warmup must be >= 0, got %d", c.Scoring.Warmup)
	}
	if c.Scoring.Nudge < 0 || c.Scoring.Nudge > 1 {
		return fmt.Errorf("scoring.nudge must be in [0,1], got %f", c.Scoring.Nudge)
	}
	if c.Scoring.UrgencyWindowDays <= 0 {
		return fmt.Errorf("scoring.urgency_window_days must be > 0")
	}
	if c.Scoring.NoDeadlineUrgency <= 0 || c.Scoring.NoDeadlineUrgency > 1 {
		return fmt.Errorf("scoring.no_deadline_urgency must be in (0,1]")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("scoring.timezone: %w", err)
	}
	for name, w := range c.Scoring.Strategies {
		if w.Urgency < 0 || w.Importance < 0 || w.Effort < 0 || w.Dependency < 0 {
			return fmt.Errorf("strategy %q: negative weight", name)
		}
		if math.Abs(w.Sum()-1.0) > 0.001 {
			return fmt.Errorf("strategy %q: weights sum to %.4f, must sum to 1.0", name, w.Sum())
		}
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	return nil
}
