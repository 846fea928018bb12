package firestore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// cacheEntry is the stored form of one proxied catalog response.
type cacheEntry struct {
	Key       string    `firestore:"key"`
	Payload   []byte    `firestore:"payload"`
	ExpiresAt time.Time `firestore:"expiresAt"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// catalogCacheRepository implements repository.CatalogCacheRepository
// on a Firestore collection. Expiry is checked on read; stale documents
// are overwritten on the next PutEntry for the same key.
type catalogCacheRepository struct {
	client *firestore.Client
}

// NewCatalogCacheRepository is the constructor for catalogCacheRepository.
func NewCatalogCacheRepository(client *firestore.Client) repository.CatalogCacheRepository {
	return &catalogCacheRepository{client: client}
}

// cacheDocID hashes the key because cache keys contain slashes and
// query strings, which Firestore document IDs do not allow.
func cacheDocID(key string) string {
	sum := sha1.Sum([]byte(key))

	return hex.EncodeToString(sum[:])
}

// GetEntry returns the payload for key unless absent or expired.
func (repo *catalogCacheRepository) GetEntry(ctx context.Context, key string) ([]byte, error) {
	snap, err := repo.client.Collection(collCatalogCache).Doc(cacheDocID(key)).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrCacheMiss
		}

		return nil, errors.Wrap(err, "failed to read catalog cache entry")
	}

	var entry cacheEntry
	if err := snap.DataTo(&entry); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalog cache entry")
	}

	if time.Now().After(entry.ExpiresAt) {
		return nil, repository.ErrCacheMiss
	}

	return entry.Payload, nil
}

// PutEntry stores payload under key until expiresAt, overwriting any
// previous entry.
func (repo *catalogCacheRepository) PutEntry(ctx context.Context, key string, payload []byte, expiresAt time.Time) error {
	entry := cacheEntry{
		Key:       key,
		Payload:   payload,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := repo.client.Collection(collCatalogCache).Doc(cacheDocID(key)).Set(ctx, &entry); err != nil {
		return errors.Wrap(err, "failed to write catalog cache entry")
	}

	return nil
}
