package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("object not found")

// Provider is the interface for upload storage backends
type Provider interface {
	// Put stores size bytes read from r under key
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error

	// Open returns a reader for the object and its content type
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the object; missing objects are not an error
	Delete(ctx context.Context, key string) error

	// URL returns a link to the object, or "" when objects are only served through the API
	URL(key string) string
}
