package httpserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/megadl/internal/logging"
	"github.com/dmitrijs2005/megadl/internal/models"
	"github.com/dmitrijs2005/megadl/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLink = "https://mega.nz/file/XXXX#key"

// ---- fakes ----

type fakeProvider struct {
	meta    *models.FileMetadata
	metaErr error
	openErr error
	content []byte
	// streamErr is returned after content has been read
	streamErr error

	metaCalls int
	openCalls int
	lastRange *models.ByteRange
	streams   []*fakeStream
}

func (f *fakeProvider) ResolveMetadata(ctx context.Context, link string) (*models.FileMetadata, error) {
	f.metaCalls++
	return f.meta, f.metaErr
}

func (f *fakeProvider) OpenStream(ctx context.Context, link string, rng *models.ByteRange) (io.ReadCloser, error) {
	f.openCalls++
	f.lastRange = rng
	if f.openErr != nil {
		return nil, f.openErr
	}

	data := f.content
	if rng != nil {
		data = data[rng.Start : rng.End+1]
	}
	s := &fakeStream{r: bytes.NewReader(data), err: f.streamErr}
	f.streams = append(f.streams, s)
	return s, nil
}

type fakeStream struct {
	r      *bytes.Reader
	err    error
	closed bool
}

func (s *fakeStream) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err == io.EOF && s.err != nil {
		return n, s.err
	}
	return n, err
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// ---- helpers ----

func content(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func newFake(size int) *fakeProvider {
	return &fakeProvider{
		meta:    &models.FileMetadata{Name: "a.bin", Size: int64(size)},
		content: content(size),
	}
}

func doDownload(t *testing.T, p remote.Provider, method, link, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/dl"
	if link != "" {
		target += "?link=" + url.QueryEscape(link)
	}
	req := httptest.NewRequest(method, target, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	NewDownloadHandler(p, logging.Nop{}, 4096).ServeHTTP(rec, req)
	return rec
}

// ---- tests ----

func TestDownload_Full(t *testing.T) {
	p := newFake(1000)

	rec := doDownload(t, p, http.MethodGet, testLink, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, `attachment; filename="a.bin"`, rec.Header().Get("Content-Disposition"))
	assert.Empty(t, rec.Header().Get("Content-Range"))
	assert.Equal(t, p.content, rec.Body.Bytes())

	assert.Nil(t, p.lastRange)
	require.Len(t, p.streams, 1)
	assert.True(t, p.streams[0].closed)
}

func TestDownload_Range(t *testing.T) {
	p := newFake(1000)

	rec := doDownload(t, p, http.MethodGet, testLink, "bytes=0-99")

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-99/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "100", rec.Header().Get("Content-Length"))
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, p.content[:100], rec.Body.Bytes())
	assert.Equal(t, &models.ByteRange{Start: 0, End: 99}, p.lastRange)
	assert.True(t, p.streams[0].closed)
}

func TestDownload_RangeWindows(t *testing.T) {
	tests := []struct {
		header       string
		start, end   int
		contentRange string
	}{
		{header: "bytes=500-", start: 500, end: 999, contentRange: "bytes 500-999/1000"},
		{header: "bytes=-100", start: 0, end: 100, contentRange: "bytes 0-100/1000"},
		{header: "bytes=900-1500", start: 900, end: 999, contentRange: "bytes 900-999/1000"},
		{header: "bytes=999-999", start: 999, end: 999, contentRange: "bytes 999-999/1000"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			p := newFake(1000)
			rec := doDownload(t, p, http.MethodGet, testLink, tt.header)

			require.Equal(t, http.StatusPartialContent, rec.Code)
			assert.Equal(t, tt.contentRange, rec.Header().Get("Content-Range"))
			assert.Equal(t, p.content[tt.start:tt.end+1], rec.Body.Bytes())
		})
	}
}

func TestDownload_InvalidRangeServesFullFile(t *testing.T) {
	for _, h := range []string{"bytes=500-100", "bytes=5000-", "items=0-10"} {
		t.Run(h, func(t *testing.T) {
			p := newFake(1000)
			rec := doDownload(t, p, http.MethodGet, testLink, h)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
			assert.Empty(t, rec.Header().Get("Content-Range"))
			assert.Nil(t, p.lastRange)
			assert.Len(t, rec.Body.Bytes(), 1000)
		})
	}
}

func TestDownload_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		link string
		body string
	}{
		{name: "missing link", link: "", body: missingLinkMessage},
		{name: "not a url", link: "hello", body: invalidLinkMessage},
		{name: "wrong host", link: "https://example.com/file/XXXX#key", body: invalidLinkMessage},
		{name: "folder link", link: "https://mega.nz/folder/XXXX#key", body: invalidLinkMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFake(10)
			rec := doDownload(t, p, http.MethodGet, tt.link, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.Zero(t, p.metaCalls, "provider must not be called")
		})
	}
}

func TestDownload_EmptyFile(t *testing.T) {
	for _, meta := range []*models.FileMetadata{
		{Name: "empty.bin", Size: 0},
		{Name: "neg.bin", Size: -1},
		nil,
	} {
		p := newFake(10)
		p.meta = meta

		rec := doDownload(t, p, http.MethodGet, testLink, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), emptyFileMessage)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
		assert.Zero(t, p.openCalls)
	}
}

func TestDownload_ProviderErrors(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{code: remote.CodeNotFound, status: http.StatusNotFound},
		{code: remote.CodeAccess, status: http.StatusForbidden},
		{code: remote.CodeExpired, status: http.StatusGone},
		{code: remote.CodeOverQuota, status: http.StatusTooManyRequests},
		{code: remote.CodeKey, status: http.StatusBadRequest},
		{code: remote.CodeTempUnavailable, status: http.StatusServiceUnavailable},
		{code: "EWHAT", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run("metadata "+tt.code, func(t *testing.T) {
			p := newFake(10)
			p.metaErr = remote.NewError(tt.code, "")

			rec := doDownload(t, p, http.MethodGet, testLink, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Zero(t, p.openCalls)
		})

		t.Run("open "+tt.code, func(t *testing.T) {
			p := newFake(10)
			p.openErr = remote.NewError(tt.code, "")

			rec := doDownload(t, p, http.MethodGet, testLink, "bytes=0-4")
			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
			assert.Empty(t, rec.Header().Get("Content-Range"))
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestDownload_InternalErrorIsNotLeaked(t *testing.T) {
	p := newFake(10)
	p.metaErr = errors.New("secret internal detail")

	rec := doDownload(t, p, http.MethodGet, testLink, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestDownload_StreamErrorAfterHeaders(t *testing.T) {
	p := newFake(100)
	p.streamErr = errors.New("connection reset by peer")

	rec := doDownload(t, p, http.MethodGet, testLink, "")

	// status already sent, cannot change
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p.content, rec.Body.Bytes())
	assert.True(t, p.streams[0].closed)
}

// brokenPipeWriter accepts headers but fails every body write, like a
// client that disconnected after the response started.
type brokenPipeWriter struct {
	header http.Header
	status int
	writes int
}

func (w *brokenPipeWriter) Header() http.Header { return w.header }

func (w *brokenPipeWriter) WriteHeader(status int) { w.status = status }

func (w *brokenPipeWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("write: broken pipe")
}

func TestDownload_ClientAbortClosesStream(t *testing.T) {
	p := newFake(100000)
	w := &brokenPipeWriter{header: http.Header{}}
	req := httptest.NewRequest(http.MethodGet, "/dl?link="+url.QueryEscape(testLink), nil)

	assert.NotPanics(t, func() {
		NewDownloadHandler(p, logging.Nop{}, 4096).ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusOK, w.status)
	assert.Equal(t, 1, w.writes, "relay must stop at the first failed write")
	require.Len(t, p.streams, 1)
	assert.True(t, p.streams[0].closed)
}

func TestDownload_CanceledRequestIsNotLoggedAsError(t *testing.T) {
	var logs bytes.Buffer
	p := newFake(10)
	p.metaErr = &remote.Error{Code: remote.CodeCanceled, Message: "request canceled", Err: context.Canceled}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/dl?link="+url.QueryEscape(testLink), nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	NewDownloadHandler(p, logging.NewJSON(&logs, slog.LevelDebug), 4096).ServeHTTP(rec, req)

	assert.NotContains(t, logs.String(), `"level":"ERROR"`)
	assert.Contains(t, logs.String(), "client went away")
	assert.Zero(t, p.openCalls)
}

func TestDownload_Head(t *testing.T) {
	p := newFake(1000)

	rec := doDownload(t, p, http.MethodHead, testLink, "bytes=10-19")

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes 10-19/1000", rec.Header().Get("Content-Range"))
	assert.Zero(t, p.openCalls)
	assert.Empty(t, rec.Body.Bytes())
}

func TestDownloadHeaders(t *testing.T) {
	meta := &models.FileMetadata{Name: "a.bin", Size: 1000}

	status, h := downloadHeaders(meta, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1000", h.Get("Content-Length"))
	assert.Len(t, h, 5)

	status, h = downloadHeaders(meta, &models.ByteRange{Start: 0, End: 99})
	assert.Equal(t, http.StatusPartialContent, status)
	assert.Equal(t, "100", h.Get("Content-Length"))
	assert.Equal(t, "bytes 0-99/1000", h.Get("Content-Range"))
	assert.Len(t, h, 6)
}

// slowWriter records how many bytes were accepted per Write call.
type slowWriter struct {
	writes []int
}

func (w *slowWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return len(p), nil
}

func TestRelay_UsesBoundedBuffer(t *testing.T) {
	h := NewDownloadHandler(newFake(1), logging.Nop{}, 4096)
	w := &slowWriter{}

	n, err := h.relay(w, bytes.NewReader(content(20000)))
	require.NoError(t, err)
	assert.Equal(t, int64(20000), n)
	for _, size := range w.writes {
		assert.LessOrEqual(t, size, 4096)
	}
}
