package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Feed kinds accepted in ROOMSYNC_FEED.
const (
	FeedMemory = "memory"
	FeedNATS   = "nats"
)

// Settings holds process-level settings read from the environment.
type Settings struct {
	DBPath              string        `env:"ROOMSYNC_DB_PATH"`
	Feed                string        `env:"ROOMSYNC_FEED" envDefault:"memory"`
	NATSURL             string        `env:"ROOMSYNC_NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSubjectPrefix   string        `env:"ROOMSYNC_NATS_SUBJECT_PREFIX" envDefault:"roomsync.changes"`
	NATSConnectRetries  int           `env:"ROOMSYNC_NATS_CONNECT_RETRIES" envDefault:"3"`
	PollInterval        time.Duration `env:"ROOMSYNC_POLL_INTERVAL" envDefault:"5s"`
	SuccessionLookahead int           `env:"ROOMSYNC_SUCCESSION_LOOKAHEAD" envDefault:"5"`
	MaxSuccessionHops   int           `env:"ROOMSYNC_MAX_SUCCESSION_HOPS" envDefault:"2"`
	LogLevel            string        `env:"ROOMSYNC_LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"ROOMSYNC_LOG_FORMAT" envDefault:"console"`
	UserID              string        `env:"ROOMSYNC_USER_ID"`
	OTelEndpoint        string        `env:"ROOMSYNC_OTEL_ENDPOINT"`
	OTelEnabled         bool          `env:"ROOMSYNC_OTEL_ENABLED" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings parses and validates Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the engine cannot run with.
func (s Settings) Validate() error {
	switch s.Feed {
	case FeedMemory, FeedNATS:
	default:
		return fmt.Errorf("ROOMSYNC_FEED must be %q or %q, got %q", FeedMemory, FeedNATS, s.Feed)
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("ROOMSYNC_LOG_FORMAT must be console or json, got %q", s.LogFormat)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("ROOMSYNC_POLL_INTERVAL must be positive, got %s", s.PollInterval)
	}
	if s.SuccessionLookahead <= 0 {
		return fmt.Errorf("ROOMSYNC_SUCCESSION_LOOKAHEAD must be positive, got %d", s.SuccessionLookahead)
	}
	if s.MaxSuccessionHops <= 0 {
		return fmt.Errorf("ROOMSYNC_MAX_SUCCESSION_HOPS must be positive, got %d", s.MaxSuccessionHops)
	}
	return nil
}
