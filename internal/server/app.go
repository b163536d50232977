// Package server wires the configuration, logger, MEGA provider and HTTP
// endpoint together and runs them until SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/megadl/internal/logging"
	"github.com/dmitrijs2005/megadl/internal/remote"
	"github.com/dmitrijs2005/megadl/internal/remote/mega"
	"github.com/dmitrijs2005/megadl/internal/server/config"
	"github.com/dmitrijs2005/megadl/internal/server/httpserver"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	provider remote.Provider
}

// NewApp builds the application from a loaded configuration. Logs go to
// stdout as JSON.
func NewApp(c *config.Config) (*App, error) {
	return newApp(c, os.Stdout)
}

func newApp(c *config.Config, logOut io.Writer) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewJSON(logOut, level)

	// The client has no overall timeout; each request is bound to the
	// incoming request's context instead.
	provider := mega.NewProvider(c.APIBaseURL, &http.Client{}, logger)

	return &App{config: c, logger: logger, provider: provider}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	router := httpserver.NewRouter(app.provider, app.logger, app.config.CopyBufferSize)
	s := httpserver.NewHTTPServer(
		app.config.ListenAddr,
		router,
		app.logger,
		app.config.ReadHeaderTimeout,
		app.config.ShutdownTimeout,
	)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for in-flight downloads to drain.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"address", app.config.ListenAddr,
		"api", app.config.APIBaseURL,
	)

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup
	var runErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return runErr
}
