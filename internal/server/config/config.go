// Package config handles configuration for the download proxy, including
// defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/megadl/internal/remote/mega"
)

var validate = validator.New()

// Config holds runtime settings for the proxy.
//
// Fields:
//   - ListenAddr: bind address of the HTTP endpoint, e.g. ":8080".
//   - APIBaseURL: MEGA public API endpoint.
//   - LogLevel: one of debug, info, warn, error.
//   - CopyBufferSize: size of the per-request relay buffer, bounds memory per download.
//   - ShutdownTimeout: grace period for in-flight downloads on SIGTERM.
//   - ReadHeaderTimeout: limit for reading request headers; 0 disables it.
type Config struct {
	ListenAddr        string        `validate:"required"`
	APIBaseURL        string        `validate:"required,url"`
	LogLevel          string        `validate:"oneof=debug info warn warning error"`
	CopyBufferSize    int           `validate:"min=4096,max=16777216"`
	ShutdownTimeout   time.Duration `validate:"gt=0"`
	ReadHeaderTimeout time.Duration `validate:"gte=0"`
}

// LoadDefaults populates Config with defaults suitable for local runs.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.APIBaseURL = mega.DefaultAPIURL
	c.LogLevel = "info"
	c.CopyBufferSize = 64 * 1024
	c.ShutdownTimeout = 10 * time.Second
	c.ReadHeaderTimeout = 10 * time.Second
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
