// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration for the DashComm API.
type Config struct {
	Addr             string        `envconfig:"DASHCOMM_ADDR" default:":8080"`
	DatabaseDSN      string        `envconfig:"DASHCOMM_PG_DSN"`
	AuthSecret       string        `envconfig:"DASHCOMM_AUTH_SECRET"`
	TokenTTL         time.Duration `envconfig:"DASHCOMM_TOKEN_TTL" default:"15m"`
	BootstrapTimeout time.Duration `envconfig:"DASHCOMM_BOOTSTRAP_TIMEOUT" default:"5s"`
	RateBurst        int           `envconfig:"DASHCOMM_RATE_BURST" default:"20"`
	RatePerSecond    int           `envconfig:"DASHCOMM_RATE_PER_SECOND" default:"10"`
	MaxBodyBytes     int64         `envconfig:"DASHCOMM_MAX_BODY_BYTES" default:"1048576"`
	LogLevel         string        `envconfig:"DASHCOMM_LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment. A .env file is honored
// when present, mainly for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
