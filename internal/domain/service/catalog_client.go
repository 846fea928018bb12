package service

import "context"

// CatalogProduct is a third-party catalog listing as returned by the
// CannMenus proxy.
type CatalogProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Brand      string  `json:"brand"`
	Category   string  `json:"category"`
	PriceCents int64   `json:"price_cents"`
	THCPercent float64 `json:"thc_percent"`
	Retailer   string  `json:"retailer"`
}

// CatalogSearch narrows a catalog query.
type CatalogSearch struct {
	Query    string
	Category string
	State    string
	Limit    int
}

// CatalogClient defines the interface to the third-party menu catalog.
type CatalogClient interface {
	// SearchProducts queries listings across retailers.
	SearchProducts(ctx context.Context, search CatalogSearch) ([]CatalogProduct, error)

	// GetRetailerMenu fetches the full shelf for one retailer key.
	GetRetailerMenu(ctx context.Context, retailerKey string) ([]CatalogProduct, error)

	// GetProduct fetches a single listing.
	GetProduct(ctx context.Context, productID string) (*CatalogProduct, error)
}
