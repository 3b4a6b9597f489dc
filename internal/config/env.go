package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Demo configures the storedemo command.
type Demo struct {
	Scenario string `env:"STOREDEMO_SCENARIO"`
	Trace    bool   `env:"STOREDEMO_TRACE" envDefault:"false"`
	Quiet    bool   `env:"STOREDEMO_QUIET" envDefault:"false"`
	Service  string `env:"STOREDEMO_SERVICE_NAME" envDefault:"storedemo"`
}

// LoadDemo reads the storedemo configuration from the environment.
func LoadDemo() (Demo, error) {
	var cfg Demo
	if err := ParseEnv(&cfg); err != nil {
		return Demo{}, err
	}
	if cfg.Scenario == "" {
		return Demo{}, errors.New("STOREDEMO_SCENARIO is required")
	}
	return cfg, nil
}
