// Package blobstore stores face-crop blobs by opaque key.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no blob exists under a key.
var ErrNotFound = errors.New("blob not found")

// Store abstracts the blob operations used by the workflows so tests
// can substitute an in-memory implementation.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is idempotent: removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
