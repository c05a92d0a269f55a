package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls server, relying-party, and backend settings
type Config struct {
	// Env selects log output: "dev" (console) or "prod" (JSON)
	Env string `env:"ENV" envDefault:"dev"`

	// Port the HTTP server listens on
	Port int `env:"PORT" envDefault:"9000"`

	// RedisURL enables the Redis session store and event stream when set
	RedisURL string `env:"REDIS_URL"`

	// Relying-party identity presented to authenticators
	RPDisplayName string   `env:"RP_DISPLAY_NAME" envDefault:"Garuda"`
	RPID          string   `env:"RP_ID"           envDefault:"localhost"`
	RPOrigins     []string `env:"RP_ORIGINS"      envSeparator:"," envDefault:"http://localhost:5173"`

	// ChallengeTTL bounds how long an issued challenge stays answerable
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL" envDefault:"5m"`

	// SessionTTL bounds how long an issued session stays valid
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
}

// Load reads configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
