package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// Domain-specific errors for catalog persistence.
var (
	// ErrProductNotFound is returned when a product document does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrRetailerNotFound is returned when a retailer document does not exist.
	ErrRetailerNotFound = errors.New("retailer not found")
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category string
	// ActiveOnly hides delisted products (the storefront default).
	ActiveOnly bool
	Limit      int
}

// ProductRepository defines product document operations.
type ProductRepository interface {
	// CreateProduct persists a new product document.
	CreateProduct(ctx context.Context, product *entity.Product) error

	// FindProductByID retrieves a product by document ID.
	FindProductByID(ctx context.Context, id string) (*entity.Product, error)

	// ListProducts retrieves products for an org matching the filter.
	ListProducts(ctx context.Context, orgID string, filter ProductFilter) ([]*entity.Product, error)

	// UpdateProduct overwrites an existing product document.
	UpdateProduct(ctx context.Context, product *entity.Product) error

	// DeleteProduct removes a product document.
	DeleteProduct(ctx context.Context, id string) error
}

// RetailerRepository defines retailer document operations.
type RetailerRepository interface {
	// CreateRetailer persists a new retailer document.
	CreateRetailer(ctx context.Context, retailer *entity.Retailer) error

	// FindRetailerByID retrieves a retailer by document ID.
	FindRetailerByID(ctx context.Context, id string) (*entity.Retailer, error)

	// ListRetailers retrieves all retailers for an org.
	ListRetailers(ctx context.Context, orgID string) ([]*entity.Retailer, error)

	// UpdateRetailer overwrites an existing retailer document.
	UpdateRetailer(ctx context.Context, retailer *entity.Retailer) error
}
