package mega

import (
	"net/url"
	"strings"

	"github.com/dmitrijs2005/megadl/internal/cryptox"
	"github.com/dmitrijs2005/megadl/internal/remote"
)

// fileLink is a public file link split into its node handle and key.
type fileLink struct {
	Handle string
	Key    *cryptox.FileKey
}

// parseLink extracts the handle and key from the link shapes accepted by
// links.Validate:
//
//	/file/<handle>#<key>
//	/#!<handle>!<key>
//	/%23!<handle>!<key>
func parseLink(link string) (*fileLink, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, &remote.Error{Code: remote.CodeArgs, Message: "malformed link", Err: err}
	}

	var handle, key string

	switch {
	case strings.HasPrefix(u.Path, "/file/"):
		handle, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/file/"), "/")
		key, _, _ = strings.Cut(u.Fragment, "/")
	case strings.HasPrefix(u.Path, "/#!"):
		handle, key, _ = strings.Cut(strings.TrimPrefix(u.Path, "/#!"), "!")
	default:
		handle, key, _ = strings.Cut(strings.TrimPrefix(u.Fragment, "!"), "!")
	}

	if handle == "" {
		return nil, remote.NewError(remote.CodeArgs, "link has no file handle")
	}
	if key == "" {
		return nil, remote.NewError(remote.CodeKey, "link has no decryption key")
	}

	raw, err := cryptox.DecodeBase64(key)
	if err != nil {
		return nil, remote.NewError(remote.CodeKey, "malformed decryption key")
	}

	fk, err := cryptox.UnpackFileKey(raw)
	if err != nil {
		return nil, remote.NewError(remote.CodeKey, "invalid decryption key length")
	}

	return &fileLink{Handle: handle, Key: fk}, nil
}
