package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	BaseURL     string `env:"BASE_URL" default:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // cookie lifetime, 7 days
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"30m"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Per-IP request rate limiting at the HTTP edge.
	RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" default:"20"`
	RequestBurst      int     `env:"REQUEST_BURST" default:"40"`

	// Sliding-window limits for abuse-prone actions.
	LoginMaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS" default:"5"`
	LoginWindow        time.Duration `env:"LOGIN_WINDOW" default:"5m"`
	LeadMaxSubmissions int           `env:"LEAD_MAX_SUBMISSIONS" default:"10"`
	LeadWindow         time.Duration `env:"LEAD_WINDOW" default:"1m"`

	// Outgoing mail. When SMTP_ADDR is empty, mail is logged instead of sent.
	SMTPAddr string `env:"SMTP_ADDR"`
	SMTPFrom string `env:"SMTP_FROM" default:"noreply@studynet.example"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"REDIS_URL":      cfg.RedisURL,
		"SESSION_SECRET": cfg.SessionSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(cfg.SessionSecret))
	}

	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive, got %s", cfg.IdleTimeout)
	}

	if cfg.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive, got %d", cfg.LoginMaxAttempts)
	}
	if cfg.LeadMaxSubmissions <= 0 {
		return fmt.Errorf("LEAD_MAX_SUBMISSIONS must be positive, got %d", cfg.LeadMaxSubmissions)
	}

	return nil
}
