package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	Session struct {
		Secret       string        `env:"SESSION_SECRET,required,notEmpty"`
		Issuer       string        `env:"SESSION_ISSUER" envDefault:"crypteax-be"`
		TTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
		CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
	}

	Wallet struct {
		ProjectID     string        `env:"WALLET_PROJECT_ID,required,notEmpty"`
		RPCURL        string        `env:"WALLET_RPC_URL"`
		Domain        string        `env:"SIWE_DOMAIN"`
		VerifyTimeout time.Duration `env:"VERIFY_TIMEOUT" envDefault:"10s"`
	}

	Redis struct {
		Addr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string        `env:"REDIS_PASSWORD"`
		DB       int           `env:"REDIS_DB" envDefault:"0"`
		NonceTTL time.Duration `env:"NONCE_TTL" envDefault:"10m"`
	}

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
		Burst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
	}
}

// Load reads configuration from the environment, after merging a .env file
// when one is present. Missing secrets fail here rather than at first use.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	if cfg.Redis.NonceTTL <= 0 {
		return Config{}, errors.New("NONCE_TTL must be positive")
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// LoadDatabaseURL reads only DATABASE_URL, for commands that never serve traffic.
func LoadDatabaseURL() (string, error) {
	_ = godotenv.Load()

	var cfg struct {
		DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	}
	if err := env.Parse(&cfg); err != nil {
		return "", fmt.Errorf("parse env: %w", err)
	}
	return cfg.DatabaseURL, nil
}
