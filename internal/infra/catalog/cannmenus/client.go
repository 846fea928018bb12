// Package cannmenus implements the proxy to the CannMenus third-party
// catalog API: retried HTTP fetches behind a Firestore-backed TTL cache
// with the in-process tool cache on the hot path.
package cannmenus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"canopy/config"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/infra/cache"
	"canopy/internal/infra/metrics"

	"github.com/pkg/errors"
)

// Client proxies the CannMenus REST API.
type Client struct {
	cfg        *config.CannMenusConfig
	httpClient *http.Client
	cacheRepo  repository.CatalogCacheRepository
	toolCache  *cache.ToolCache
	logger     *slog.Logger
}

// NewClient constructs the catalog proxy.
func NewClient(cfg *config.Config, cacheRepo repository.CatalogCacheRepository, toolCache *cache.ToolCache, logger *slog.Logger) (service.CatalogClient, error) {
	if cfg.CannMenus == nil || cfg.CannMenus.BaseURL == "" {
		return nil, errors.New("cannmenus base URL must be configured")
	}

	return &Client{
		cfg:        cfg.CannMenus,
		httpClient: &http.Client{Timeout: cfg.CannMenus.Timeout},
		cacheRepo:  cacheRepo,
		toolCache:  toolCache,
		logger:     logger,
	}, nil
}

// SearchProducts queries listings across retailers.
func (c *Client) SearchProducts(ctx context.Context, search service.CatalogSearch) ([]service.CatalogProduct, error) {
	query := url.Values{}
	if search.Query != "" {
		query.Set("q", search.Query)
	}
	if search.Category != "" {
		query.Set("category", search.Category)
	}
	if search.State != "" {
		query.Set("state", search.State)
	}
	if search.Limit > 0 {
		query.Set("limit", strconv.Itoa(search.Limit))
	}

	var products []service.CatalogProduct
	if err := c.getJSON(ctx, "/v1/products/search", query, c.cfg.SearchTTL, &products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetRetailerMenu fetches the full shelf for one retailer key.
func (c *Client) GetRetailerMenu(ctx context.Context, retailerKey string) ([]service.CatalogProduct, error) {
	var products []service.CatalogProduct
	path := "/v1/retailers/" + url.PathEscape(retailerKey) + "/menu"
	if err := c.getJSON(ctx, path, nil, c.cfg.MenuTTL, &products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetProduct fetches a single listing.
func (c *Client) GetProduct(ctx context.Context, productID string) (*service.CatalogProduct, error) {
	var product service.CatalogProduct
	path := "/v1/products/" + url.PathEscape(productID)
	if err := c.getJSON(ctx, path, nil, c.cfg.MenuTTL, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

// getJSON resolves a GET through the two cache layers and decodes into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, ttl time.Duration, out any) error {
	key := cacheKey(path, query)

	payload, err := c.toolCache.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return c.fetchThroughStore(ctx, key, path, query, ttl)
	})
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()

		return err
	}

	raw, ok := payload.([]byte)
	if !ok {
		return errors.Errorf("unexpected cache payload type %T for %s", payload, key)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode cannmenus response for %s", path)
	}

	return nil
}

// fetchThroughStore consults the Firestore TTL cache before going to
// the upstream API, and writes fresh payloads back through it.
func (c *Client) fetchThroughStore(ctx context.Context, key, path string, query url.Values, ttl time.Duration) ([]byte, error) {
	payload, err := c.cacheRepo.GetEntry(ctx, key)
	if err == nil {
		metrics.CatalogRequestsTotal.WithLabelValues("hit").Inc()

		return payload, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		// A broken cache must not take the storefront down; log and fetch.
		c.logger.Warn("catalog cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	payload, err = c.fetchWithRetry(ctx, path, query)
	if err != nil {
		return nil, err
	}

	metrics.CatalogRequestsTotal.WithLabelValues("fetched").Inc()

	if err := c.cacheRepo.PutEntry(ctx, key, payload, time.Now().Add(ttl)); err != nil {
		c.logger.Warn("catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return payload, nil
}

// fetchWithRetry performs the upstream GET, re-attempting on 429 and
// 5xx with exponential backoff until cfg.Retries attempts have been
// spent. Other status codes fail immediately.
func (c *Client) fetchWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	// A misconfigured retry count still gets one attempt, otherwise the
	// loop would be skipped and a nil payload returned as a success.
	attempts := c.cfg.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			metrics.CatalogRetriesTotal.Inc()
			backoff := c.cfg.BackoffBase * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "cannmenus request canceled")
			case <-time.After(backoff):
			}
		}

		payload, retryable, err := c.doRequest(ctx, endpoint)
		if err == nil {
			return payload, nil
		}
		if !retryable {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("cannmenus request failed",
			slog.String("endpoint", path),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
	}

	return nil, errors.Wrapf(lastErr, "cannmenus request failed after %d attempts", attempts)
}

func (c *Client) doRequest(ctx context.Context, endpoint string) (payload []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "build cannmenus request")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors are retryable (timeouts, resets).
		return nil, true, errors.Wrap(err, "cannmenus request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, "read cannmenus response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, errors.Errorf("cannmenus returned %d", resp.StatusCode)
	default:
		return nil, false, errors.Errorf("cannmenus returned %d", resp.StatusCode)
	}
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return fmt.Sprintf("cannmenus:%s", path)
	}

	return fmt.Sprintf("cannmenus:%s?%s", path, query.Encode())
}
