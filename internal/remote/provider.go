// Package remote defines the boundary between the HTTP proxy and the storage
// service that actually holds the files.
package remote

import (
	"context"
	"io"

	"github.com/dmitrijs2005/megadl/internal/models"
)

// Provider resolves validated links and opens byte streams against them.
//
// Implementations report failures as *Error so that the HTTP layer can map
// them to a status code. They must not retry internally.
type Provider interface {
	// ResolveMetadata returns the name and size of the linked file.
	ResolveMetadata(ctx context.Context, link string) (*models.FileMetadata, error)

	// OpenStream returns the bytes of rng (inclusive), or of the whole file
	// when rng is nil. The caller owns the stream and must close it.
	OpenStream(ctx context.Context, link string, rng *models.ByteRange) (io.ReadCloser, error)
}
