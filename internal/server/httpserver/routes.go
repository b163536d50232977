package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/megadl/internal/common"
	"github.com/dmitrijs2005/megadl/internal/logging"
	"github.com/dmitrijs2005/megadl/internal/remote"
)

// NewRouter wires the public endpoints:
//
//	GET  /        usage text
//	GET  /health  liveness probe
//	GET  /dl      download (HEAD is answered by the same handler)
//
// Every other path or method gets 404 with the usage text.
func NewRouter(p remote.Provider, l logging.Logger, bufferSize int) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", homeHandler)
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /dl", NewDownloadHandler(p, l, bufferSize))
	mux.HandleFunc("/", notFoundHandler)

	return Chain(mux, Logging(l), Recover(l))
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, common.UsageText)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok\n")
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, "Not found. "+common.UsageText)
}

// writeError sends a plain-text error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeText(w, status, message+"\n")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
