package impl

import (
	"context"
	"testing"

	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCatalogService(t *testing.T) (usecase.CatalogUsecase, *fakeProductRepo, *fakeCouponRepo) {
	t.Helper()

	productRepo := newFakeProductRepo()
	couponRepo := newFakeCouponRepo()

	svc := NewCatalogService(CatalogServiceParams{
		ProductRepo:   productRepo,
		RetailerRepo:  newFakeRetailerRepo(),
		CouponRepo:    couponRepo,
		CatalogClient: &fakeCatalogClient{},
		Logger:        newDiscardLogger(),
	})

	return svc, productRepo, couponRepo
}

func TestCatalogService_ProductLifecycle(t *testing.T) {
	svc, _, _ := createTestCatalogService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, "org-1", usecase.CreateProductInput{
		Name:           "Blue Dream 3.5g",
		Brand:          "Canopy Farms",
		Category:       "flower",
		BasePriceCents: 3500,
		RetailerPrices: map[string]int64{"ret-1": 3200},
		Active:         true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, int64(3200), product.PriceFor("ret-1"))
	assert.Equal(t, int64(3500), product.PriceFor("ret-other"))

	updated, err := svc.UpdateProduct(ctx, "org-1", usecase.UpdateProductInput{
		ID:             product.ID,
		Name:           "Blue Dream 3.5g",
		Brand:          "Canopy Farms",
		Category:       "flower",
		BasePriceCents: 2900,
		Active:         false,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2900), updated.PriceCents)
	assert.False(t, updated.Active)

	listed, err := svc.ListProducts(ctx, "org-1", repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, listed, "delisted products are hidden from the storefront filter")

	require.NoError(t, svc.DeleteProduct(ctx, "org-1", product.ID))
	_, err = svc.GetProduct(ctx, "org-1", product.ID)
	assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
}

func TestCatalogService_ProductValidationAndBoundary(t *testing.T) {
	svc, productRepo, _ := createTestCatalogService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, "org-1", usecase.CreateProductInput{
		Name: "bad", BasePriceCents: -1,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	require.NoError(t, productRepo.CreateProduct(ctx, &entity.Product{
		ID: "prod-1", OrgID: "org-1", Name: "Mine", PriceCents: 1000, Active: true,
	}))

	_, err = svc.GetProduct(ctx, "org-2", "prod-1")
	assert.ErrorIs(t, err, domainerrors.ErrTenantMismatch)

	err = svc.DeleteProduct(ctx, "org-2", "prod-1")
	assert.ErrorIs(t, err, domainerrors.ErrTenantMismatch)
}

func TestCatalogService_CreateRetailer(t *testing.T) {
	svc, _, _ := createTestCatalogService(t)
	ctx := context.Background()

	retailer, err := svc.CreateRetailer(ctx, "org-1", usecase.CreateRetailerInput{
		Name:         "Main St",
		State:        "CA",
		SalesTaxBps:  800,
		ExciseTaxBps: 1500,
		CannMenusKey: "greenleaf-main",
	})
	require.NoError(t, err)
	assert.True(t, retailer.Active)
	assert.Equal(t, int64(2300), retailer.TaxBps())

	_, err = svc.CreateRetailer(ctx, "org-1", usecase.CreateRetailerInput{
		Name: "bad", SalesTaxBps: -100,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestCatalogService_CreateCoupon_Validation(t *testing.T) {
	svc, _, _ := createTestCatalogService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input usecase.CreateCouponInput
	}{
		{"missing code", usecase.CreateCouponInput{PercentOff: 10}},
		{"no discount", usecase.CreateCouponInput{Code: "X"}},
		{"both discounts", usecase.CreateCouponInput{Code: "X", PercentOff: 10, AmountOffCents: 500}},
		{"percent over 100", usecase.CreateCouponInput{Code: "X", PercentOff: 150}},
		{"bad expiry", usecase.CreateCouponInput{Code: "X", PercentOff: 10, ExpiresAt: "tomorrow"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateCoupon(ctx, "org-1", tc.input)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}

	coupon, err := svc.CreateCoupon(ctx, "org-1", usecase.CreateCouponInput{
		Code:             "SAVE10",
		PercentOff:       10,
		MinSubtotalCents: 2000,
		MaxRedemptions:   100,
		ExpiresAt:        "2026-12-31T00:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, coupon.Active)
	require.NotNil(t, coupon.ExpiresAt)

	amountCoupon, err := svc.CreateCoupon(ctx, "org-1", usecase.CreateCouponInput{
		Code: "FIVE", AmountOffCents: 500,
	})
	require.NoError(t, err)
	assert.Nil(t, amountCoupon.ExpiresAt)
}
