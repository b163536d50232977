package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/megadl/internal/logging"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one is the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// responseRecorder captures the status and body size of a response.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (rw *responseRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *responseRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging logs one line per request with a generated request id. The level
// follows the status: 5xx error, 4xx warn, otherwise info.
func Logging(l logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			requestID := uuid.NewString()
			ctx := withRequestID(r.Context(), requestID)

			defer func() {
				log := l.Info
				switch {
				case rec.status >= 500:
					log = l.Error
				case rec.status >= 400:
					log = l.Warn
				}
				log(ctx, "HTTP request",
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"bytes", rec.written,
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}

// Recover turns a handler panic into a 500 response. If the response has
// already started the connection is aborted instead.
func Recover(l logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				l.Error(r.Context(), "handler panic", "panic", v, "request_id", requestIDFrom(r.Context()))

				if rec, ok := w.(*responseRecorder); ok && rec.wroteHeader {
					panic(http.ErrAbortHandler)
				}
				writeError(w, http.StatusInternalServerError, internalErrorMessage)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
