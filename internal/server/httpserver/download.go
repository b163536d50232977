package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/megadl/internal/common"
	"github.com/dmitrijs2005/megadl/internal/httprange"
	"github.com/dmitrijs2005/megadl/internal/links"
	"github.com/dmitrijs2005/megadl/internal/logging"
	"github.com/dmitrijs2005/megadl/internal/models"
	"github.com/dmitrijs2005/megadl/internal/remote"
)

const (
	missingLinkMessage = "Missing link parameter"
	invalidLinkMessage = "Invalid MEGA file link"
	emptyFileMessage   = "File is empty or invalid"
)

// DownloadHandler serves GET and HEAD /dl?link=... by relaying the remote
// file, or a window of it, to the client.
//
// Each request resolves metadata once, opens at most one stream and closes
// it before returning. Memory use per request is one relay buffer.
type DownloadHandler struct {
	provider remote.Provider
	logger   logging.Logger
	buffers  sync.Pool
}

func NewDownloadHandler(p remote.Provider, l logging.Logger, bufferSize int) *DownloadHandler {
	return &DownloadHandler{
		provider: p,
		logger:   l.With("module", "download"),
		buffers: sync.Pool{New: func() any {
			b := make([]byte, bufferSize)
			return &b
		}},
	}
}

func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	link := r.URL.Query().Get("link")
	if link == "" {
		h.reject(ctx, w, http.StatusBadRequest, missingLinkMessage, common.ErrMissingLink)
		return
	}
	if !links.Validate(link) {
		h.reject(ctx, w, http.StatusBadRequest, invalidLinkMessage, common.ErrInvalidLink)
		return
	}

	meta, err := h.provider.ResolveMetadata(ctx, link)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	if meta == nil || meta.Size <= 0 {
		h.reject(ctx, w, http.StatusBadRequest, emptyFileMessage, common.ErrEmptyFile)
		return
	}

	rng, err := httprange.Parse(r.Header.Get("Range"), meta.Size)
	if err != nil {
		h.logger.Debug(ctx, "serving full file for unsatisfiable range", "range", r.Header.Get("Range"), "size", meta.Size)
		rng = nil
	}

	status, header := downloadHeaders(meta, rng)

	if r.Method == http.MethodHead {
		copyHeader(w.Header(), header)
		w.WriteHeader(status)
		return
	}

	stream, err := h.provider.OpenStream(ctx, link, rng)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	defer stream.Close()

	copyHeader(w.Header(), header)
	w.WriteHeader(status)

	want := meta.Size
	if rng != nil {
		want = rng.Length()
	}

	n, err := h.relay(w, stream)
	switch {
	case err != nil:
		h.logger.Warn(ctx, "download aborted", "error", err, "sent", n, "expected", want, "request_id", requestIDFrom(ctx))
	case n != want:
		h.logger.Warn(ctx, "remote stream ended early", "sent", n, "expected", want, "request_id", requestIDFrom(ctx))
	}
}

// downloadHeaders builds the status and headers of a successful download.
func downloadHeaders(meta *models.FileMetadata, rng *models.ByteRange) (int, http.Header) {
	header := http.Header{}
	header.Set("Content-Disposition", contentDisposition(meta.Name))
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/octet-stream")

	if rng == nil {
		header.Set("Content-Length", strconv.FormatInt(meta.Size, 10))
		return http.StatusOK, header
	}

	header.Set("Content-Range", rng.ContentRange(meta.Size))
	header.Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
	return http.StatusPartialContent, header
}

// relay copies the stream to the client through a pooled buffer. Each write
// blocks until the client accepts it, so the remote is never read ahead.
func (h *DownloadHandler) relay(w io.Writer, stream io.Reader) (int64, error) {
	bp := h.buffers.Get().(*[]byte)
	defer h.buffers.Put(bp)

	return io.CopyBuffer(writerOnly{w}, readerOnly{stream}, *bp)
}

func (h *DownloadHandler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	out := MapError(err)
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		h.logger.Debug(ctx, "client went away before streaming", "error", err, "request_id", requestIDFrom(ctx))
		writeError(w, out.HTTPStatus, out.Message)
		return
	}
	if out.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error(ctx, "remote request failed", "error", err, "status", out.HTTPStatus, "request_id", requestIDFrom(ctx))
	} else {
		h.logger.Warn(ctx, "remote request rejected", "error", err, "status", out.HTTPStatus, "request_id", requestIDFrom(ctx))
	}
	writeError(w, out.HTTPStatus, out.Message)
}

func (h *DownloadHandler) reject(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	h.logger.Debug(ctx, "request rejected", "error", err, "status", status)
	writeError(w, status, message)
}

func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = v
	}
}

// writerOnly and readerOnly hide ReadFrom/WriteTo so io.CopyBuffer uses the
// supplied buffer.
type writerOnly struct{ io.Writer }

type readerOnly struct{ io.Reader }
