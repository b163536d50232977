package remote

import (
	"errors"
	"fmt"
)

// Stable error codes reported by providers.
const (
	CodeInternal        = "EINTERNAL"
	CodeArgs            = "EARGS"
	CodeAgain           = "EAGAIN"
	CodeRateLimit       = "ERATELIMIT"
	CodeFailed          = "EFAILED"
	CodeExpired         = "EEXPIRED"
	CodeNotFound        = "ENOENT"
	CodeAccess          = "EACCESS"
	CodeKey             = "EKEY"
	CodeBlocked         = "EBLOCKED"
	CodeOverQuota       = "EOVERQUOTA"
	CodeTempUnavailable = "ETEMPUNAVAIL"
	CodeCanceled        = "ECANCELED"
)

// Error is a failure reported by a Provider. Either field may be empty.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Code != "":
		return e.Code
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a provider error without a cause.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// AsError extracts a provider error from err's chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
