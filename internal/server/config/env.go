package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dmitrijs2005/megadl/internal/flagx"
)

// EnvConfig lists the recognised environment variables. PORT is the
// conventional single-port setting of hosting platforms.
type EnvConfig struct {
	Port              string        `envconfig:"PORT"`
	ListenAddr        string        `envconfig:"MEGADL_LISTEN_ADDR"`
	APIBaseURL        string        `envconfig:"MEGADL_API_URL"`
	LogLevel          string        `envconfig:"MEGADL_LOG_LEVEL"`
	CopyBufferSize    int           `envconfig:"MEGADL_COPY_BUFFER_SIZE"`
	ShutdownTimeout   time.Duration `envconfig:"MEGADL_SHUTDOWN_TIMEOUT"`
	ReadHeaderTimeout time.Duration `envconfig:"MEGADL_READ_HEADER_TIMEOUT"`
}

// parseEnv loads an optional dotenv file (-env, else ./.env) and overlays
// every variable that is set. MEGADL_LISTEN_ADDR wins over PORT.
func parseEnv(config *Config) error {
	if err := loadDotenv(flagx.EnvFileFlags()); err != nil {
		return err
	}

	var e EnvConfig
	if err := envconfig.Process("", &e); err != nil {
		return err
	}

	if e.Port != "" {
		config.ListenAddr = ":" + e.Port
	}
	if e.ListenAddr != "" {
		config.ListenAddr = e.ListenAddr
	}
	if e.APIBaseURL != "" {
		config.APIBaseURL = e.APIBaseURL
	}
	if e.LogLevel != "" {
		config.LogLevel = e.LogLevel
	}
	if e.CopyBufferSize != 0 {
		config.CopyBufferSize = e.CopyBufferSize
	}
	if e.ShutdownTimeout != 0 {
		config.ShutdownTimeout = e.ShutdownTimeout
	}
	if e.ReadHeaderTimeout != 0 {
		config.ReadHeaderTimeout = e.ReadHeaderTimeout
	}

	return nil
}

// loadDotenv never overrides variables already present in the process
// environment. A missing default .env is not an error; a missing explicit
// file is.
func loadDotenv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
