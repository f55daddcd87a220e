// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the factionsim binary accepts.
type Config struct {
	DBPath       string        `env:"STARFALL_DB" envDefault:"data/starfall.db"`
	APIPort      int           `env:"STARFALL_API_PORT" envDefault:"8080"`
	TickInterval time.Duration `env:"STARFALL_TICK_INTERVAL" envDefault:"5s"`
	Seed         int64         `env:"STARFALL_SEED" envDefault:"0"` // 0 = random
	Speed        float64       `env:"STARFALL_SPEED" envDefault:"1.0"`
	LogLevel     string        `env:"STARFALL_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
