package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/megadl/internal/flagx"
	"github.com/dmitrijs2005/megadl/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept both "30s" strings and integer nanoseconds.
type JsonConfig struct {
	ListenAddr        string         `json:"listen_addr"`
	APIBaseURL        string         `json:"api_base_url"`
	LogLevel          string         `json:"log_level"`
	CopyBufferSize    int            `json:"copy_buffer_size"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
	ReadHeaderTimeout timex.Duration `json:"read_header_timeout"`
}

// parseJson overlays values from the file named by -c or -config. Fields
// absent from the file keep their current value. Without the flag nothing
// is loaded.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.APIBaseURL != "" {
		config.APIBaseURL = c.APIBaseURL
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.CopyBufferSize != 0 {
		config.CopyBufferSize = c.CopyBufferSize
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.ReadHeaderTimeout.Duration != 0 {
		config.ReadHeaderTimeout = c.ReadHeaderTimeout.Duration
	}

	return nil
}
