package repository

import (
	"context"
	"time"

	"canopy/internal/errors"
)

// ErrCacheMiss is returned when a cache entry is absent or expired.
var ErrCacheMiss = errors.New("catalog cache miss")

// CatalogCacheRepository is the Firestore-backed TTL cache that fronts
// the CannMenus API. Values are opaque JSON payloads.
type CatalogCacheRepository interface {
	// GetEntry returns the payload for key unless absent or expired.
	GetEntry(ctx context.Context, key string) ([]byte, error)

	// PutEntry stores payload under key until expiresAt, overwriting
	// any previous entry.
	PutEntry(ctx context.Context, key string, payload []byte, expiresAt time.Time) error
}
