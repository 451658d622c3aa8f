package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// Config is the relay process configuration
type Config struct {
	Addr          string        `env:"SUS_ADDR" envDefault:":8080"`
	LobbyTTL      time.Duration `env:"SUS_LOBBY_TTL" envDefault:"10s"`
	SweepInterval time.Duration `env:"SUS_SWEEP_INTERVAL" envDefault:"5s"`
	// RelayRate is the sustained directory messages per second per connection
	RelayRate  float64 `env:"SUS_RELAY_RATE" envDefault:"20"`
	RelayBurst int     `env:"SUS_RELAY_BURST" envDefault:"40"`
	// InviteBase prefixes room codes in invite QR codes
	InviteBase string `env:"SUS_INVITE_BASE" envDefault:"sus://join/"`
	Debug      bool   `env:"DEBUG"`
}

// Load reads files (default ".env") into the environment, then parses it.
// Missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LobbyTTL <= 0 || cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("lobby ttl and sweep interval must be positive")
	}
	if cfg.RelayBurst < 1 {
		return Config{}, fmt.Errorf("relay burst must be at least 1, got %d", cfg.RelayBurst)
	}
	return cfg, nil
}

// Limit is RelayRate as a limiter rate; zero or less means unlimited
func (c Config) Limit() rate.Limit {
	if c.RelayRate <= 0 {
		return rate.Inf
	}
	return rate.Limit(c.RelayRate)
}
