// Package blob stores uploaded file bytes under their randomized stored
// names. Two backends exist: a flat local directory and an S3/MinIO bucket.
package blob

import (
	"context"
	"io"
)

// Store holds blobs keyed by stored name.
type Store interface {
	// Put writes the blob. size may be -1 when unknown.
	Put(ctx context.Context, name string, r io.Reader, size int64) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}
