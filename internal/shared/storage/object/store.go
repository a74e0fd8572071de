package object

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrSigningUnsupported is returned by stores that cannot issue signed URLs.
	ErrSigningUnsupported = errors.New("signed urls not supported by this store")
	// ErrNotFound is returned by Open when nothing is stored at the key.
	ErrNotFound = errors.New("object not found")
)

// ObjectStore defines the contract for saving and retrieving binary objects under caller-chosen keys.
type ObjectStore interface {
	// Put writes r at key, replacing any existing object, and returns the stored size.
	Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// SignedURL returns a time-limited GET URL for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
