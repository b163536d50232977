// Package links decides whether an inbound string is a public MEGA file link
// the proxy is willing to resolve.
package links

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// AllowedHosts lists the only hostnames accepted, current and legacy
// top-level domains with and without the www prefix.
var AllowedHosts = []string{
	"mega.nz",
	"www.mega.nz",
	"mega.co.nz",
	"www.mega.co.nz",
}

const (
	filePathPrefix = "/file/"
	legacyMarker   = "!"
	legacyPath     = "/#!"
)

// Validate reports whether link is a single public file link on an allowed
// host. It never touches the network and never panics on malformed input.
//
// Accepted shapes:
//
//	https://mega.nz/file/<handle>#<key>
//	https://mega.nz/#!<handle>!<key>
//	https://mega.nz/%23!<handle>!<key>
//
// Folder links and any other path on an allowed host are rejected.
func Validate(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return false
	}

	if !lo.Contains(AllowedHosts, strings.ToLower(u.Hostname())) {
		return false
	}

	return isFilePath(u)
}

func isFilePath(u *url.URL) bool {
	switch {
	case strings.HasPrefix(u.Path, filePathPrefix):
		return true
	case (u.Path == "" || u.Path == "/") && strings.HasPrefix(u.Fragment, legacyMarker):
		return true
	case strings.HasPrefix(u.Path, legacyPath):
		return true
	}
	return false
}
