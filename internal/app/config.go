package app

import (
	"errors"

	"github.com/vk/hotswap/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Scenario lists scenario files, directories or glob patterns.
	Scenario []string
	// Replay, when set, names a journal to print instead of running a
	// scenario: a file path or a redis:// URL.
	Replay string

	config.Settings
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Scenario) == 0 && cfg.Replay == "" {
		return nil, errors.New("a scenario path is required unless a journal is replayed")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
