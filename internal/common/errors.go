// Package common defines sentinel errors and constants shared by the proxy
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Request validation errors.
	ErrMissingLink = errors.New("missing link parameter")
	ErrInvalidLink = errors.New("invalid file link")

	// Metadata reported a zero or unknown size.
	ErrEmptyFile = errors.New("empty or invalid file")

	// Range header could not be turned into a window inside the file.
	ErrInvalidRange = errors.New("invalid range")
)
