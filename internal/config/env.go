package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the settings read from the process environment.
type Env struct {
	LogLevel string `env:"TI_LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"TI_LOG_DEV" envDefault:"false"`
	APIKey   string `env:"TI_MCP_API_KEY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
