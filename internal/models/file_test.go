package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteRange(t *testing.T) {
	r := ByteRange{Start: 0, End: 99}

	assert.Equal(t, int64(100), r.Length())
	assert.Equal(t, "bytes 0-99/1000", r.ContentRange(1000))
	assert.Equal(t, "0-99", r.String())
}

func TestByteRange_Within(t *testing.T) {
	tests := []struct {
		name string
		r    ByteRange
		size int64
		want bool
	}{
		{name: "whole file", r: ByteRange{0, 999}, size: 1000, want: true},
		{name: "single byte", r: ByteRange{5, 5}, size: 10, want: true},
		{name: "end past size", r: ByteRange{0, 1000}, size: 1000, want: false},
		{name: "negative start", r: ByteRange{-1, 10}, size: 1000, want: false},
		{name: "inverted", r: ByteRange{10, 9}, size: 1000, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Within(tt.size))
		})
	}
}
