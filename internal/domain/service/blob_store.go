package service

import "context"

// BlobStore defines the interface for binary artifact storage
// (packaging images).
type BlobStore interface {
	// Put stores data under key with the given content type.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves the data stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
}
