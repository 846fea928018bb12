package usecase

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
)

// --- Input DTOs ---

// CreateProductInput defines the data required to create a product.
type CreateProductInput struct {
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Brand          string           `json:"brand"`
	BasePriceCents int64            `json:"base_price_cents"`
	RetailerPrices map[string]int64 `json:"retailer_prices,omitempty"`
	Active         bool             `json:"active"`
}

// UpdateProductInput carries a full product replacement.
type UpdateProductInput struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Brand          string           `json:"brand"`
	BasePriceCents int64            `json:"base_price_cents"`
	RetailerPrices map[string]int64 `json:"retailer_prices,omitempty"`
	Active         bool             `json:"active"`
}

// CreateRetailerInput defines the data required to create a retailer.
type CreateRetailerInput struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	State         string `json:"state"`
	LicenseNumber string `json:"license_number"`
	SalesTaxBps   int64  `json:"sales_tax_bps"`
	ExciseTaxBps  int64  `json:"excise_tax_bps"`
	CannMenusKey  string `json:"cannmenus_key,omitempty"`
}

// CreateCouponInput defines the data required to create a coupon.
type CreateCouponInput struct {
	Code             string `json:"code"`
	PercentOff       int    `json:"percent_off,omitempty"`
	AmountOffCents   int64  `json:"amount_off_cents,omitempty"`
	MinSubtotalCents int64  `json:"min_subtotal_cents,omitempty"`
	MaxRedemptions   int    `json:"max_redemptions,omitempty"`
	ExpiresAt        string `json:"expires_at,omitempty"` // RFC3339, empty for no expiry
}

// CatalogUsecase defines the interface for the org's own product
// catalog plus the CannMenus market proxy.
type CatalogUsecase interface {
	// CreateProduct adds a product to the org's catalog.
	CreateProduct(ctx context.Context, orgID string, input CreateProductInput) (*entity.Product, error)

	// GetProduct retrieves one product, enforcing the org boundary.
	GetProduct(ctx context.Context, orgID, productID string) (*entity.Product, error)

	// ListProducts retrieves the org's products.
	ListProducts(ctx context.Context, orgID string, filter repository.ProductFilter) ([]*entity.Product, error)

	// UpdateProduct replaces a product, enforcing the org boundary.
	UpdateProduct(ctx context.Context, orgID string, input UpdateProductInput) (*entity.Product, error)

	// DeleteProduct removes a product, enforcing the org boundary.
	DeleteProduct(ctx context.Context, orgID, productID string) error

	// CreateRetailer adds a retailer to the org.
	CreateRetailer(ctx context.Context, orgID string, input CreateRetailerInput) (*entity.Retailer, error)

	// ListRetailers retrieves the org's retailers.
	ListRetailers(ctx context.Context, orgID string) ([]*entity.Retailer, error)

	// CreateCoupon adds a coupon to the org.
	CreateCoupon(ctx context.Context, orgID string, input CreateCouponInput) (*entity.Coupon, error)

	// ListCoupons retrieves the org's coupons.
	ListCoupons(ctx context.Context, orgID string) ([]*entity.Coupon, error)

	// SearchMarket proxies a catalog search through CannMenus.
	SearchMarket(ctx context.Context, search service.CatalogSearch) ([]service.CatalogProduct, error)
}
