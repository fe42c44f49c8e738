package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Addr        string `env:"APP_ADDR" envDefault:":8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	FrontendDir string `env:"FRONTEND_DIR" envDefault:"frontend/dist"`

	DatabaseURL    string `env:"DATABASE_URL"`
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret      string        `env:"JWT_SECRET"`
	SessionTTL     time.Duration `env:"AUTH_SESSION_TTL" envDefault:"8h"`
	AllowOpenLogin bool          `env:"AUTH_ALLOW_OPEN_LOGIN" envDefault:"false"`
	CookieSecure   bool          `env:"AUTH_COOKIE_SECURE" envDefault:"false"`

	RunMigrations    bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	RunSeed          bool   `env:"RUN_SEED" envDefault:"true"`
	SeedDemoPassword string `env:"SEED_DEMO_PASSWORD" envDefault:"demo123"`

	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	MaxBodyBytes         int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute   int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	SessionPurgeSchedule string `env:"SESSION_PURGE_SCHEDULE" envDefault:"@every 1h"`
	LeaveAnnualAllowance int    `env:"LEAVE_ANNUAL_ALLOWANCE" envDefault:"20"`
	MetricsEnabled       bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads a .env file when one exists and then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// NeedsPostgres reports whether any configured backend talks to DATABASE_URL.
func (c Config) NeedsPostgres() bool {
	return c.StorageBackend == BackendPostgres || c.SessionBackend == BackendPostgres
}

func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q", BackendMemory, BackendPostgres)
	}
	switch c.SessionBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q, %q or %q", BackendMemory, BackendPostgres, BackendRedis)
	}
	if c.NeedsPostgres() && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}
	if c.SessionBackend == BackendRedis && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis session backend")
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.AllowOpenLogin {
			return fmt.Errorf("AUTH_ALLOW_OPEN_LOGIN must be disabled in production")
		}
		if c.RunSeed && c.SeedDemoPassword == "demo123" {
			return fmt.Errorf("SEED_DEMO_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.LeaveAnnualAllowance < 0 {
		return fmt.Errorf("LEAVE_ANNUAL_ALLOWANCE must not be negative")
	}
	if _, err := cron.ParseStandard(c.SessionPurgeSchedule); err != nil {
		return fmt.Errorf("SESSION_PURGE_SCHEDULE is not a valid cron spec: %w", err)
	}
	return nil
}
