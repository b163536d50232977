package mega

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/megadl/internal/netx"
	"github.com/dmitrijs2005/megadl/internal/remote"
)

type apiCode struct {
	code    string
	message string
}

// apiCodes translates negative API result codes.
var apiCodes = map[int]apiCode{
	-1:  {remote.CodeInternal, "internal API error"},
	-2:  {remote.CodeArgs, "invalid arguments"},
	-3:  {remote.CodeAgain, "temporarily unavailable, try again"},
	-4:  {remote.CodeRateLimit, "rate limit exceeded"},
	-5:  {remote.CodeFailed, "request failed"},
	-6:  {remote.CodeRateLimit, "too many requests"},
	-8:  {remote.CodeExpired, "link expired"},
	-9:  {remote.CodeNotFound, "file not found or deleted"},
	-11: {remote.CodeAccess, "access denied"},
	-14: {remote.CodeKey, "decryption key rejected"},
	-16: {remote.CodeBlocked, "file blocked for terms of service violation"},
	-17: {remote.CodeOverQuota, "transfer quota exceeded"},
	-18: {remote.CodeTempUnavailable, "resource temporarily unavailable"},
}

func apiError(n int) *remote.Error {
	if c, ok := apiCodes[n]; ok {
		return remote.NewError(c.code, c.message)
	}
	return remote.NewError(remote.CodeFailed, fmt.Sprintf("API error %d", n))
}

// httpError classifies a failed call to the API or to a storage node.
//
// Response bodies and transport details stay in Err for logging; Message
// only carries fixed text and the HTTP status line.
func httpError(err error) *remote.Error {
	if errors.Is(err, context.Canceled) {
		return &remote.Error{Code: remote.CodeCanceled, Message: "request canceled", Err: err}
	}
	if errors.Is(err, netx.ErrBadResponse) {
		return &remote.Error{Code: remote.CodeInternal, Message: "unexpected API reply", Err: err}
	}

	var se *netx.StatusError
	if !errors.As(err, &se) {
		return &remote.Error{Code: remote.CodeTempUnavailable, Message: "remote unreachable", Err: err}
	}

	switch se.StatusCode {
	case http.StatusForbidden:
		return &remote.Error{Code: remote.CodeAccess, Message: "access denied by remote", Err: err}
	case http.StatusNotFound:
		return &remote.Error{Code: remote.CodeNotFound, Message: "file not found on remote", Err: err}
	case http.StatusGone:
		return &remote.Error{Code: remote.CodeExpired, Message: "download URL expired", Err: err}
	case http.StatusTooManyRequests, 509:
		return &remote.Error{Code: remote.CodeOverQuota, Message: "transfer quota exceeded", Err: err}
	case http.StatusServiceUnavailable:
		return &remote.Error{Code: remote.CodeTempUnavailable, Message: "remote temporarily unavailable", Err: err}
	}

	return &remote.Error{Code: remote.CodeFailed, Message: "remote request failed: " + se.Status, Err: err}
}
