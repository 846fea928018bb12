package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	productRepo   repository.ProductRepository
	retailerRepo  repository.RetailerRepository
	couponRepo    repository.CouponRepository
	catalogClient service.CatalogClient
	logger        *slog.Logger
	now           func() time.Time
}

// CatalogServiceParams holds dependencies for CatalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	ProductRepo   repository.ProductRepository
	RetailerRepo  repository.RetailerRepository
	CouponRepo    repository.CouponRepository
	CatalogClient service.CatalogClient
	Logger        *slog.Logger
}

// NewCatalogService is the constructor for catalogService. It receives all dependencies as interfaces.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		productRepo:   params.ProductRepo,
		retailerRepo:  params.RetailerRepo,
		couponRepo:    params.CouponRepo,
		catalogClient: params.CatalogClient,
		logger:        params.Logger,
		now:           time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateProduct adds a product to the org's catalog.
func (srv *catalogService) CreateProduct(ctx context.Context, orgID string, input usecase.CreateProductInput) (*entity.Product, error) {
	if input.BasePriceCents < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("price must not be negative")
	}

	now := srv.now().UTC()
	product := &entity.Product{
		ID:             uuid.NewString(),
		OrgID:          orgID,
		Name:           input.Name,
		Brand:          input.Brand,
		Category:       input.Category,
		PriceCents:     input.BasePriceCents,
		RetailerPrices: input.RetailerPrices,
		Active:         input.Active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := srv.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created",
		slog.String("product_id", product.ID),
		slog.String("org_id", orgID),
	)

	return product, nil
}

// GetProduct retrieves one product, enforcing the org boundary.
func (srv *catalogService) GetProduct(ctx context.Context, orgID, productID string) (*entity.Product, error) {
	product, err := srv.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domainerrors.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to load product")
	}
	if product.OrgID != orgID {
		return nil, domainerrors.ErrTenantMismatch
	}

	return product, nil
}

// ListProducts retrieves the org's products.
func (srv *catalogService) ListProducts(ctx context.Context, orgID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	products, err := srv.productRepo.ListProducts(ctx, orgID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}

// UpdateProduct replaces a product, enforcing the org boundary.
func (srv *catalogService) UpdateProduct(ctx context.Context, orgID string, input usecase.UpdateProductInput) (*entity.Product, error) {
	product, err := srv.GetProduct(ctx, orgID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.BasePriceCents < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("price must not be negative")
	}

	product.Name = input.Name
	product.Brand = input.Brand
	product.Category = input.Category
	product.PriceCents = input.BasePriceCents
	product.RetailerPrices = input.RetailerPrices
	product.Active = input.Active
	product.UpdatedAt = srv.now().UTC()

	if err := srv.productRepo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to update product")
	}

	return product, nil
}

// DeleteProduct removes a product, enforcing the org boundary.
func (srv *catalogService) DeleteProduct(ctx context.Context, orgID, productID string) error {
	if _, err := srv.GetProduct(ctx, orgID, productID); err != nil {
		return err
	}

	if err := srv.productRepo.DeleteProduct(ctx, productID); err != nil {
		return errors.Wrap(err, "failed to delete product")
	}

	return nil
}

// CreateRetailer adds a retailer to the org.
func (srv *catalogService) CreateRetailer(ctx context.Context, orgID string, input usecase.CreateRetailerInput) (*entity.Retailer, error) {
	if input.SalesTaxBps < 0 || input.ExciseTaxBps < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("tax rates must not be negative")
	}

	now := srv.now().UTC()
	retailer := &entity.Retailer{
		ID:            uuid.NewString(),
		OrgID:         orgID,
		Name:          input.Name,
		Address:       input.Address,
		State:         input.State,
		LicenseNumber: input.LicenseNumber,
		CannMenusKey:  input.CannMenusKey,
		SalesTaxBps:   input.SalesTaxBps,
		ExciseTaxBps:  input.ExciseTaxBps,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := srv.retailerRepo.CreateRetailer(ctx, retailer); err != nil {
		return nil, errors.Wrap(err, "failed to create retailer")
	}

	return retailer, nil
}

// ListRetailers retrieves the org's retailers.
func (srv *catalogService) ListRetailers(ctx context.Context, orgID string) ([]*entity.Retailer, error) {
	retailers, err := srv.retailerRepo.ListRetailers(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list retailers")
	}

	return retailers, nil
}

// CreateCoupon adds a coupon to the org.
func (srv *catalogService) CreateCoupon(ctx context.Context, orgID string, input usecase.CreateCouponInput) (*entity.Coupon, error) {
	if input.Code == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("coupon code is required")
	}
	if (input.PercentOff > 0) == (input.AmountOffCents > 0) {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("exactly one of percent_off or amount_off_cents is required")
	}
	if input.PercentOff > 100 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("percent_off must not exceed 100")
	}

	coupon := &entity.Coupon{
		Code:             input.Code,
		OrgID:            orgID,
		PercentOff:       input.PercentOff,
		AmountOffCents:   input.AmountOffCents,
		MinSubtotalCents: input.MinSubtotalCents,
		MaxRedemptions:   input.MaxRedemptions,
		Active:           true,
		CreatedAt:        srv.now().UTC(),
	}
	if input.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, input.ExpiresAt)
		if err != nil {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("expires_at must be RFC3339")
		}
		coupon.ExpiresAt = &expires
	}

	if err := srv.couponRepo.CreateCoupon(ctx, coupon); err != nil {
		return nil, errors.Wrap(err, "failed to create coupon")
	}

	return coupon, nil
}

// ListCoupons retrieves the org's coupons.
func (srv *catalogService) ListCoupons(ctx context.Context, orgID string) ([]*entity.Coupon, error) {
	coupons, err := srv.couponRepo.ListCoupons(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list coupons")
	}

	return coupons, nil
}

// SearchMarket proxies a catalog search through CannMenus.
func (srv *catalogService) SearchMarket(ctx context.Context, search service.CatalogSearch) ([]service.CatalogProduct, error) {
	products, err := srv.catalogClient.SearchProducts(ctx, search)
	if err != nil {
		return nil, errors.Wrap(err, "catalog search failed")
	}

	return products, nil
}
