package service

import (
	"context"
	"time"
)

// IdempotencyStore deduplicates webhook deliveries across replicas.
type IdempotencyStore interface {
	// Claim marks key as processed for the given window. It returns
	// true exactly once per key; replays within the window return false.
	Claim(ctx context.Context, key string, window time.Duration) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
