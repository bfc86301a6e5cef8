// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	DatabaseURL     string        `env:"DATABASE_URL,required,notEmpty"`

	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	PageSize    int    `env:"PAGE_SIZE" envDefault:"10"`
	MaxPageSize int    `env:"MAX_PAGE_SIZE" envDefault:"100"`
	PolicyMode  string `env:"POLICY_MODE" envDefault:"default"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"300"`
	OTLPEndpoint       string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	SuperuserEmail    string `env:"SUPERUSER_EMAIL"`
	SuperuserUsername string `env:"SUPERUSER_USERNAME" envDefault:"admin"`
	SuperuserPassword string `env:"SUPERUSER_PASSWORD"`
}

// Load applies .env (when present) and parses the environment. Variables
// already set in the environment win over the file.
func Load(path ...string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: load .env: %w", op, err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("%s: JWT_SECRET must be at least 16 characters", op)
	}
	if cfg.PageSize <= 0 || cfg.MaxPageSize < cfg.PageSize {
		return nil, fmt.Errorf("%s: need 0 < PAGE_SIZE <= MAX_PAGE_SIZE", op)
	}
	return &cfg, nil
}
