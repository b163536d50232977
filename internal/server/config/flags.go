package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/megadl/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-u string   MEGA API base URL
//	-l string   log level
//	-b int      relay buffer size, bytes
//	-s int      shutdown timeout, seconds
//
// os.Args is first filtered with flagx.FilterArgs so that -c and -env,
// handled elsewhere, do not cause parse errors.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-l", "-b", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.APIBaseURL, "u", config.APIBaseURL, "MEGA API base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&config.CopyBufferSize, "b", config.CopyBufferSize, "relay buffer size (bytes)")

	shutdownTimeout := fs.Int("s", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "s" {
			config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
		}
	})

	return nil
}
