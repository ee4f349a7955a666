package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs, loaded from environment
// variables. It is constructed once in main and passed down explicitly.
type Config struct {
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":8080"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./tasktracker.db"`

	RedisAddr string `env:"REDIS_CONNSTRING" envDefault:"localhost:6379"`
	OTLPAddr  string `env:"OTLP_ADDR" envDefault:"otel-collector:4317"`

	// TokenTTL is the lifetime of a freshly issued bearer token.
	// TokenRefreshMargin is the window before expiration during which a
	// login rotates the token instead of reusing it.
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	TokenRefreshMargin time.Duration `env:"TOKEN_REFRESH_MARGIN" envDefault:"1m"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TokenRefreshMargin >= cfg.TokenTTL {
		return nil, fmt.Errorf("token refresh margin %s must be shorter than token ttl %s", cfg.TokenRefreshMargin, cfg.TokenTTL)
	}
	return cfg, nil
}
