// Package httprange turns a Range request header into a concrete byte window
// inside a file of known size.
package httprange

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/megadl/internal/common"
	"github.com/dmitrijs2005/megadl/internal/models"
)

const unitPrefix = "bytes="

// Parse decodes header against size.
//
// It returns (nil, nil) when no range was requested: the header is empty or
// does not use the bytes unit. It returns common.ErrInvalidRange when the
// window cannot be satisfied. Otherwise the returned range always satisfies
// 0 <= Start <= End <= size-1.
//
// Defaulting rules:
//   - an empty or non-numeric start becomes 0, so "bytes=-100" means the
//     window from 0 to 100, not the last 100 bytes;
//   - an empty, non-numeric or out-of-bounds end becomes size-1.
//
// Only the first range of a multi-range header is considered.
func Parse(header string, size int64) (*models.ByteRange, error) {
	if !strings.HasPrefix(header, unitPrefix) {
		return nil, nil
	}
	if size <= 0 {
		return nil, common.ErrInvalidRange
	}

	window := strings.TrimPrefix(header, unitPrefix)
	window, _, _ = strings.Cut(window, ",")
	startPart, endPart, _ := strings.Cut(window, "-")

	last := size - 1

	start, err := strconv.ParseInt(strings.TrimSpace(startPart), 10, 64)
	if err != nil {
		start = 0
	}

	end, err := strconv.ParseInt(strings.TrimSpace(endPart), 10, 64)
	if err != nil || end < 0 || end > last {
		end = last
	}

	if start < 0 || start > end {
		return nil, common.ErrInvalidRange
	}

	return &models.ByteRange{Start: start, End: end}, nil
}
