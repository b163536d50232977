// Package models holds the request-scoped values passed between the link
// validator, the range parser, the remote provider and the HTTP responder.
package models

import "fmt"

// FileMetadata describes a remote file as reported by the provider.
type FileMetadata struct {
	Name string
	Size int64
}

// ByteRange is an inclusive [Start, End] window into a file.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the Content-Range header value for a file of the
// given total size.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// Within reports whether the range satisfies 0 <= Start <= End <= size-1.
func (r ByteRange) Within(size int64) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= size-1
}

func (r ByteRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}
