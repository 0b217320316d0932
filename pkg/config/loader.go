// Package config loads configuration from the environment. The backend
// configures itself exclusively through environment variables, so the
// loader is a thin wrapper over caarlos0/env that wraps parse failures
// into a startup error.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
