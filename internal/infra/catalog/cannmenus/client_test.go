package cannmenus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"canopy/config"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/infra/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCacheRepo is an in-memory stand-in for the Firestore cache collection.
type memCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	puts    int
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{entries: make(map[string][]byte)}
}

func (r *memCacheRepo) GetEntry(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, ok := r.entries[key]
	if !ok {
		return nil, repository.ErrCacheMiss
	}

	return payload, nil
}

func (r *memCacheRepo) PutEntry(_ context.Context, key string, payload []byte, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = payload
	r.puts++

	return nil
}

func newTestClient(t *testing.T, baseURL string, retries int) (*Client, *memCacheRepo) {
	t.Helper()

	cfg := &config.Config{
		CannMenus: &config.CannMenusConfig{
			BaseURL:     baseURL,
			Retries:     retries,
			BackoffBase: time.Millisecond,
			Timeout:     time.Second,
			MenuTTL:     time.Minute,
			SearchTTL:   time.Minute,
		},
	}
	repo := newMemCacheRepo()

	client, err := NewClient(cfg, repo, cache.New(time.Minute), newDiscardLogger())
	require.NoError(t, err)

	return client.(*Client), repo
}

func TestClient_RetriesOn429ThenSucceeds(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusTooManyRequests)

			return
		}
		w.Write([]byte(`[{"id":"p1","name":"OG Kush","price_cents":3500}]`))
	}))
	defer srv.Close()

	client, repo := newTestClient(t, srv.URL, 3)

	products, err := client.SearchProducts(context.Background(), service.CatalogSearch{Query: "kush"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "OG Kush", products[0].Name)
	assert.Equal(t, 3, requests)
	assert.Equal(t, 1, repo.puts)
}

func TestClient_ExactlyRetriesAttemptsBeforeError(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 3)

	_, err := client.GetRetailerMenu(context.Background(), "r-100")
	require.Error(t, err)
	assert.Equal(t, 3, requests)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestClient_ZeroRetriesStillAttemptsOnce(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, repo := newTestClient(t, srv.URL, 0)

	_, err := client.GetRetailerMenu(context.Background(), "r-100")
	require.Error(t, err, "a zero retry count must not short-circuit into a nil payload")
	assert.Equal(t, 1, requests)
	assert.Zero(t, repo.puts)
}

func TestClient_404DoesNotRetry(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 3)

	_, err := client.GetProduct(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 1, requests)
}

func TestClient_SecondCallServedFromCache(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.Write([]byte(`[{"id":"p1","name":"Gummy","price_cents":1200}]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 3)
	ctx := context.Background()

	_, err := client.GetRetailerMenu(ctx, "r-1")
	require.NoError(t, err)
	_, err = client.GetRetailerMenu(ctx, "r-1")
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
}

func TestClient_FirestoreCacheSurvivesProcessCache(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.Write([]byte(`[{"id":"p1","name":"Pre-roll","price_cents":900}]`))
	}))
	defer srv.Close()

	client, repo := newTestClient(t, srv.URL, 3)
	ctx := context.Background()

	_, err := client.GetRetailerMenu(ctx, "r-1")
	require.NoError(t, err)

	// A fresh process (empty tool cache) reads through the shared
	// Firestore cache without hitting the upstream again.
	client.toolCache = cache.New(time.Minute)

	_, err = client.GetRetailerMenu(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, 1, repo.puts)
}

func TestClient_ContextCancellationStopsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := &config.Config{
		CannMenus: &config.CannMenusConfig{
			BaseURL:     srv.URL,
			Retries:     5,
			BackoffBase: time.Hour, // would stall without cancellation
			Timeout:     time.Second,
			MenuTTL:     time.Minute,
			SearchTTL:   time.Minute,
		},
	}
	client, err := NewClient(cfg, newMemCacheRepo(), cache.New(time.Minute), newDiscardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.GetRetailerMenu(ctx, "r-1")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
