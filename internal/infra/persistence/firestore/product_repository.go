package firestore

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// productRepository implements repository.ProductRepository.
type productRepository struct {
	client *firestore.Client
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(client *firestore.Client) repository.ProductRepository {
	return &productRepository{client: client}
}

// CreateProduct persists a new product document.
func (repo *productRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	if _, err := repo.client.Collection(collProducts).Doc(product.ID).Set(ctx, product); err != nil {
		return errors.Wrap(err, "failed to create product")
	}

	return nil
}

// FindProductByID retrieves a product by document ID.
func (repo *productRepository) FindProductByID(ctx context.Context, id string) (*entity.Product, error) {
	snap, err := repo.client.Collection(collProducts).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by ID")
	}

	var product entity.Product
	if err := snap.DataTo(&product); err != nil {
		return nil, errors.Wrap(err, "failed to decode product")
	}

	return &product, nil
}

// ListProducts retrieves products for an org matching the filter.
func (repo *productRepository) ListProducts(ctx context.Context, orgID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := repo.client.Collection(collProducts).Where("orgId", "==", orgID)
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.ActiveOnly {
		query = query.Where("active", "==", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var products []*entity.Product
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list products")
		}

		var product entity.Product
		if err := snap.DataTo(&product); err != nil {
			return nil, errors.Wrap(err, "failed to decode product")
		}
		products = append(products, &product)
	}

	return products, nil
}

// UpdateProduct overwrites an existing product document.
func (repo *productRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	if _, err := repo.client.Collection(collProducts).Doc(product.ID).Set(ctx, product); err != nil {
		return errors.Wrap(err, "failed to update product")
	}

	return nil
}

// DeleteProduct removes a product document.
func (repo *productRepository) DeleteProduct(ctx context.Context, id string) error {
	if _, err := repo.client.Collection(collProducts).Doc(id).Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to delete product")
	}

	return nil
}

// retailerRepository implements repository.RetailerRepository.
type retailerRepository struct {
	client *firestore.Client
}

// NewRetailerRepository is the constructor for retailerRepository.
func NewRetailerRepository(client *firestore.Client) repository.RetailerRepository {
	return &retailerRepository{client: client}
}

// CreateRetailer persists a new retailer document.
func (repo *retailerRepository) CreateRetailer(ctx context.Context, retailer *entity.Retailer) error {
	if _, err := repo.client.Collection(collRetailers).Doc(retailer.ID).Set(ctx, retailer); err != nil {
		return errors.Wrap(err, "failed to create retailer")
	}

	return nil
}

// FindRetailerByID retrieves a retailer by document ID.
func (repo *retailerRepository) FindRetailerByID(ctx context.Context, id string) (*entity.Retailer, error) {
	snap, err := repo.client.Collection(collRetailers).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrRetailerNotFound
		}

		return nil, errors.Wrap(err, "failed to find retailer by ID")
	}

	var retailer entity.Retailer
	if err := snap.DataTo(&retailer); err != nil {
		return nil, errors.Wrap(err, "failed to decode retailer")
	}

	return &retailer, nil
}

// ListRetailers retrieves all retailers for an org.
func (repo *retailerRepository) ListRetailers(ctx context.Context, orgID string) ([]*entity.Retailer, error) {
	iter := repo.client.Collection(collRetailers).
		Where("orgId", "==", orgID).
		Documents(ctx)
	defer iter.Stop()

	var retailers []*entity.Retailer
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list retailers")
		}

		var retailer entity.Retailer
		if err := snap.DataTo(&retailer); err != nil {
			return nil, errors.Wrap(err, "failed to decode retailer")
		}
		retailers = append(retailers, &retailer)
	}

	return retailers, nil
}

// UpdateRetailer overwrites an existing retailer document.
func (repo *retailerRepository) UpdateRetailer(ctx context.Context, retailer *entity.Retailer) error {
	if _, err := repo.client.Collection(collRetailers).Doc(retailer.ID).Set(ctx, retailer); err != nil {
		return errors.Wrap(err, "failed to update retailer")
	}

	return nil
}
