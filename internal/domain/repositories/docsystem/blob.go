package docsystem

import (
	"context"
	"io"
)

// BlobStore holds uploaded files and serves them by URL.
type BlobStore interface {
	// Put stores size bytes from r under key and returns the public URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object behind a URL returned by Put. Deleting an
	// unknown object is not an error.
	Delete(ctx context.Context, url string) error
}
