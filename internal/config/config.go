package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the bot.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	StoreDriver  string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseDSN  string `env:"DATABASE_DSN"`
	RedisAddr    string `env:"REDIS_ADDR"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from a .env file (if present) and the
// environment, then validates the fields the chosen store driver needs.
func Load() (*Config, error) {
	// .env file is optional, continue with environment variables
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the postgres store")
		}
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}
