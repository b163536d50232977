// Package mega implements remote.Provider for public MEGA file links.
//
// Metadata and a temporary download URL come from the public API; content is
// fetched from the storage node with a byte window in the URL path and
// decrypted on the fly with AES-CTR.
package mega

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/megadl/internal/cryptox"
	"github.com/dmitrijs2005/megadl/internal/logging"
	"github.com/dmitrijs2005/megadl/internal/models"
	"github.com/dmitrijs2005/megadl/internal/netx"
	"github.com/dmitrijs2005/megadl/internal/remote"
)

// DefaultAPIURL is the public API endpoint.
const DefaultAPIURL = "https://g.api.mega.co.nz"

// Provider talks to the MEGA public API. It is safe for concurrent use and
// holds no per-request state.
type Provider struct {
	apiURL string
	client *http.Client
	logger logging.Logger
	seq    atomic.Uint64
}

var _ remote.Provider = (*Provider)(nil)

// NewProvider builds a provider for the API at apiURL. A nil client means
// http.DefaultClient.
func NewProvider(apiURL string, client *http.Client, l logging.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	p := &Provider{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: client,
		logger: l.With("module", "mega"),
	}
	p.seq.Store(rand.Uint64N(1 << 32))
	return p
}

// downloadInfo is the reply to the "g" command.
type downloadInfo struct {
	Size int64  `json:"s"`
	Attr string `json:"at"`
	URL  string `json:"g"`
	Err  int    `json:"e"`
}

// ResolveMetadata fetches and decrypts the file name and size.
func (p *Provider) ResolveMetadata(ctx context.Context, link string) (*models.FileMetadata, error) {
	fl, err := parseLink(link)
	if err != nil {
		return nil, err
	}

	info, err := p.fetchInfo(ctx, fl.Handle, false)
	if err != nil {
		return nil, err
	}

	meta := &models.FileMetadata{Size: info.Size}

	if info.Attr != "" {
		blob, err := cryptox.DecodeBase64(info.Attr)
		if err != nil {
			return nil, remote.NewError(remote.CodeKey, "malformed attribute blob")
		}
		attrs, err := cryptox.DecryptAttributes(blob, fl.Key)
		if err != nil {
			return nil, &remote.Error{Code: remote.CodeKey, Message: "decryption failed: wrong key", Err: err}
		}
		meta.Name = attrs.Name
	}

	return meta, nil
}

// OpenStream requests a fresh download URL and opens the decrypted stream
// for rng, or the whole file when rng is nil.
func (p *Provider) OpenStream(ctx context.Context, link string, rng *models.ByteRange) (io.ReadCloser, error) {
	fl, err := parseLink(link)
	if err != nil {
		return nil, err
	}

	info, err := p.fetchInfo(ctx, fl.Handle, true)
	if err != nil {
		return nil, err
	}
	if info.URL == "" {
		return nil, remote.NewError(remote.CodeTempUnavailable, "no download URL returned")
	}

	url := info.URL
	var offset int64
	if rng != nil {
		if !rng.Within(info.Size) {
			return nil, remote.NewError(remote.CodeArgs, fmt.Sprintf("range %s outside file of %d bytes", rng, info.Size))
		}
		url = fmt.Sprintf("%s/%d-%d", info.URL, rng.Start, rng.End)
		offset = rng.Start
	}

	body, err := netx.Get(ctx, p.client, url)
	if err != nil {
		return nil, httpError(err)
	}

	r, err := cryptox.NewDecryptReader(body, fl.Key, offset)
	if err != nil {
		body.Close()
		return nil, &remote.Error{Code: remote.CodeKey, Message: "invalid decryption key", Err: err}
	}

	p.logger.Debug(ctx, "stream opened", "handle", fl.Handle, "offset", offset)

	return &decryptingStream{Reader: r, body: body}, nil
}

// fetchInfo runs the "g" command for a public handle.
func (p *Provider) fetchInfo(ctx context.Context, handle string, withURL bool) (*downloadInfo, error) {
	cmd := map[string]any{"a": "g", "p": handle}
	if withURL {
		cmd["g"] = 1
		cmd["ssl"] = 1
	}

	url := fmt.Sprintf("%s/cs?id=%d", p.apiURL, p.seq.Add(1))

	var raw json.RawMessage
	if err := netx.PostJSON(ctx, p.client, url, []any{cmd}, &raw); err != nil {
		return nil, httpError(err)
	}

	info, err := decodeInfo(raw)
	if err != nil {
		p.logger.Debug(ctx, "api call failed", "handle", handle, "error", err)
		return nil, err
	}

	return info, nil
}

// decodeInfo handles the reply shapes: a bare error number, an {"e": n}
// object, or an array holding either of those or the result object.
func decodeInfo(raw json.RawMessage) (*downloadInfo, error) {
	var code int
	if err := json.Unmarshal(raw, &code); err == nil {
		return nil, apiError(code)
	}

	item := raw
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		if len(items) == 0 {
			return nil, remote.NewError(remote.CodeInternal, "unexpected API reply")
		}
		item = items[0]
	}

	if err := json.Unmarshal(item, &code); err == nil {
		return nil, apiError(code)
	}

	info := &downloadInfo{}
	if err := json.Unmarshal(item, info); err != nil {
		return nil, remote.NewError(remote.CodeInternal, "unexpected API reply")
	}
	if info.Err < 0 {
		return nil, apiError(info.Err)
	}

	return info, nil
}

// decryptingStream closes the underlying HTTP body.
type decryptingStream struct {
	io.Reader
	body io.Closer
}

func (s *decryptingStream) Close() error {
	return s.body.Close()
}
