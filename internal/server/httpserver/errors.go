package httpserver

import (
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/dmitrijs2005/megadl/internal/remote"
)

// ErrorOutcome is the HTTP answer for a failed request.
type ErrorOutcome struct {
	HTTPStatus int
	Message    string
}

// errorRule matches a provider failure by code or by message fragment.
type errorRule struct {
	codes   []string
	signals []string
	outcome ErrorOutcome
}

// errorRules are checked in order; the first match wins.
var errorRules = []errorRule{
	{
		codes:   []string{remote.CodeNotFound},
		signals: []string{"not found", "deleted", "enoent"},
		outcome: ErrorOutcome{http.StatusNotFound, "File not found or has been deleted"},
	},
	{
		codes:   []string{remote.CodeAccess, remote.CodeBlocked},
		signals: []string{"access denied", "forbidden", "private", "blocked", "eaccess"},
		outcome: ErrorOutcome{http.StatusForbidden, "Access to this file is denied"},
	},
	{
		codes:   []string{remote.CodeExpired},
		signals: []string{"expired", "eexpired"},
		outcome: ErrorOutcome{http.StatusGone, "This link has expired"},
	},
	{
		codes:   []string{remote.CodeOverQuota, remote.CodeRateLimit},
		signals: []string{"quota", "rate limit", "bandwidth", "too many requests"},
		outcome: ErrorOutcome{http.StatusTooManyRequests, "Download quota exceeded, try again later"},
	},
	{
		codes:   []string{remote.CodeKey, remote.CodeArgs},
		signals: []string{"decrypt", "invalid key", "bad key", "ekey"},
		outcome: ErrorOutcome{http.StatusBadRequest, "Invalid decryption key in link"},
	},
	{
		codes:   []string{remote.CodeAgain, remote.CodeTempUnavailable},
		signals: []string{"temporarily unavailable", "try again", "unavailable", "eagain"},
		outcome: ErrorOutcome{http.StatusServiceUnavailable, "File service temporarily unavailable"},
	},
}

const internalErrorMessage = "Internal server error"

// MapError translates any provider failure into exactly one outcome.
//
// Provider errors are matched on their code first and then on their message;
// other errors are matched on their text. Unrecognised provider errors keep
// their own message with status 500. Anything else becomes a generic 500.
func MapError(err error) ErrorOutcome {
	if err == nil {
		return ErrorOutcome{http.StatusInternalServerError, internalErrorMessage}
	}

	code, message := "", err.Error()
	pe, isProvider := remote.AsError(err)
	if isProvider {
		code, message = pe.Code, pe.Message
	}
	lower := strings.ToLower(message)

	for _, rule := range errorRules {
		if code != "" && lo.Contains(rule.codes, code) {
			return rule.outcome
		}
		if lo.SomeBy(rule.signals, func(s string) bool { return strings.Contains(lower, s) }) {
			return rule.outcome
		}
	}

	if isProvider {
		if message == "" {
			message = pe.Error()
		}
		return ErrorOutcome{http.StatusInternalServerError, message}
	}

	return ErrorOutcome{http.StatusInternalServerError, internalErrorMessage}
}
