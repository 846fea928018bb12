// Package idempotency deduplicates webhook deliveries across replicas.
package idempotency

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// redisStore implements IdempotencyStore on Redis SETNX. Keys expire
// with the claim window so the set stays bounded.
type redisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Claim marks key as processed for the given window
func (s *redisStore) Claim(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, "idem:"+key, 1, window).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to claim idempotency key")
	}

	return ok, nil
}

// Close releases the Redis connection
func (s *redisStore) Close() error {
	return errors.WithStack(s.client.Close())
}

// memoryStore is the single-replica fallback when Redis is not
// configured. Expired claims are dropped on access.
type memoryStore struct {
	mu     sync.Mutex
	claims map[string]time.Time
}

// Claim marks key as processed for the given window
func (s *memoryStore) Claim(_ context.Context, key string, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if until, ok := s.claims[key]; ok && now.Before(until) {
		return false, nil
	}
	s.claims[key] = now.Add(window)

	return true, nil
}

// Close releases resources (no-op for the in-memory store)
func (s *memoryStore) Close() error {
	return nil
}

// StoreParams holds dependencies for IdempotencyStore, injected by Fx
type StoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewIdempotencyStore creates an IdempotencyStore based on configuration
func NewIdempotencyStore(params StoreParams) (service.IdempotencyStore, error) {
	cfg := params.Config.Redis
	logger := params.Logger

	// Without Redis, fall back to per-process dedupe
	if cfg == nil || cfg.Addr == "" {
		logger.Info("Redis not configured, using in-memory idempotency store")

		return &memoryStore{claims: map[string]time.Time{}}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(params.Ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	store := &redisStore{client: client, logger: logger}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing idempotency store")

			return store.Close()
		},
	})

	logger.Info("Redis idempotency store initialized", slog.String("addr", cfg.Addr))

	return store, nil
}

// Module provides the idempotency FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewIdempotencyStore),
)
