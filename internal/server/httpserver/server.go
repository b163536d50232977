package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/megadl/internal/logging"
)

// HTTPServer runs the router until its context is cancelled, then drains
// in-flight downloads for at most shutdownTimeout.
type HTTPServer struct {
	address           string
	handler           http.Handler
	logger            logging.Logger
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
}

func NewHTTPServer(address string, h http.Handler, l logging.Logger, readHeaderTimeout, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:           address,
		handler:           h,
		logger:            l.With("module", "http_server"),
		readHeaderTimeout: readHeaderTimeout,
		shutdownTimeout:   shutdownTimeout,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	// No write timeout: downloads may legitimately take hours.
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-stopped; err != nil {
		return err
	}
	return nil
}
