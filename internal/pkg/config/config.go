package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all service configuration.
type Config struct {
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr        string        `env:"SERVER_ADDR" envDefault:":8080"`
	PostgresURL       string        `env:"POSTGRES_URL,required"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	SyncPerPage       int           `env:"SYNC_PER_PAGE" envDefault:"50"`
	SyncMaxPages      int           `env:"SYNC_MAX_PAGES" envDefault:"100"`
	SyncPageDelay     time.Duration `env:"SYNC_PAGE_DELAY" envDefault:"750ms"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	UpstreamRPS       float64       `env:"UPSTREAM_RPS" envDefault:"4"`
	ReportCacheTTL    time.Duration `env:"REPORT_CACHE_TTL" envDefault:"24h"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
