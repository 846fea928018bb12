package impl

import (
	"context"
	"testing"
	"time"

	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/service"
	"canopy/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCheckoutService(t *testing.T) (
	usecase.CheckoutUsecase,
	*fakeOrderRepo,
	*fakeCouponRepo,
	*fakeGateway,
	*fakeEmailSender,
	*fakePublisher,
) {
	t.Helper()

	productRepo := newFakeProductRepo(
		&entity.Product{ID: "prod-1", OrgID: "org-1", Name: "Blue Dream 3.5g", PriceCents: 3500, Active: true},
		&entity.Product{
			ID: "prod-2", OrgID: "org-1", Name: "Gummies 100mg", PriceCents: 2000, Active: true,
			RetailerPrices: map[string]int64{"ret-1": 1800},
		},
		&entity.Product{ID: "prod-inactive", OrgID: "org-1", Name: "Delisted", PriceCents: 1000, Active: false},
		&entity.Product{ID: "prod-other-org", OrgID: "org-2", Name: "Foreign", PriceCents: 1000, Active: true},
	)
	retailerRepo := newFakeRetailerRepo(
		// 8% sales tax + 10% excise, combined 1800 bps.
		&entity.Retailer{ID: "ret-1", OrgID: "org-1", Name: "Main St", SalesTaxBps: 800, ExciseTaxBps: 1000, Active: true},
	)
	couponRepo := newFakeCouponRepo(
		&entity.Coupon{Code: "SAVE10", OrgID: "org-1", PercentOff: 10, Active: true},
		&entity.Coupon{Code: "EXPIRED", OrgID: "org-1", PercentOff: 10, Active: false},
	)
	orderRepo := newFakeOrderRepo()
	gateway := &fakeGateway{provider: "stripe"}
	emailSender := &fakeEmailSender{}
	publisher := &fakePublisher{}

	service := NewCheckoutService(CheckoutServiceParams{
		ProductRepo:  productRepo,
		RetailerRepo: retailerRepo,
		CouponRepo:   couponRepo,
		OrderRepo:    orderRepo,
		Gateways:     &fakeGatewayRegistry{gateway: gateway},
		QRService:    fakeQRService{},
		EmailSender:  emailSender,
		Publisher:    publisher,
		Logger:       newDiscardLogger(),
	})

	return service, orderRepo, couponRepo, gateway, emailSender, publisher
}

func TestCheckoutService_PriceCart_ComputesTotals(t *testing.T) {
	service, _, _, _, _, _ := createTestCheckoutService(t)

	quote, err := service.PriceCart(context.Background(), usecase.PriceCartInput{
		OrgID:      "org-1",
		RetailerID: "ret-1",
		Items: []usecase.CartItemInput{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 1},
		},
	})
	require.NoError(t, err)

	// prod-1 at base price, prod-2 at the retailer override.
	assert.Equal(t, int64(2*3500+1800), quote.SubtotalCents)
	assert.Zero(t, quote.DiscountCents)
	// 8800 * 18% = 1584, no rounding needed.
	assert.Equal(t, int64(1584), quote.TaxCents)
	assert.Equal(t, int64(8800+1584), quote.TotalCents)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, int64(3500), quote.Items[0].UnitPriceCents)
	assert.Equal(t, int64(1800), quote.Items[1].UnitPriceCents)
}

func TestCheckoutService_PriceCart_AppliesCoupon(t *testing.T) {
	service, _, _, _, _, _ := createTestCheckoutService(t)

	quote, err := service.PriceCart(context.Background(), usecase.PriceCartInput{
		OrgID:      "org-1",
		RetailerID: "ret-1",
		Items:      []usecase.CartItemInput{{ProductID: "prod-1", Quantity: 1}},
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3500), quote.SubtotalCents)
	assert.Equal(t, int64(350), quote.DiscountCents)
	// Tax on the discounted subtotal: 3150 * 18% = 567.
	assert.Equal(t, int64(567), quote.TaxCents)
	assert.Equal(t, int64(3150+567), quote.TotalCents)
}

func TestCheckoutService_PriceCart_RoundsTaxHalfUp(t *testing.T) {
	service, _, _, _, _, _ := createTestCheckoutService(t)

	assert.Equal(t, int64(1), roundHalfUpBps(25, 200))    // 0.5 cents rounds up
	assert.Equal(t, int64(0), roundHalfUpBps(24, 200))    // 0.48 rounds down
	assert.Equal(t, int64(68), roundHalfUpBps(375, 1800)) // 67.5 rounds up
	assert.Equal(t, int64(62), roundHalfUpBps(347, 1800)) // 62.46 rounds down

	quote, err := service.PriceCart(context.Background(), usecase.PriceCartInput{
		OrgID:      "org-1",
		RetailerID: "ret-1",
		Items:      []usecase.CartItemInput{{ProductID: "prod-1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, roundHalfUpBps(3500, 1800), quote.TaxCents)
}

func TestCheckoutService_PriceCart_Rejections(t *testing.T) {
	service, _, _, _, _, _ := createTestCheckoutService(t)
	ctx := context.Background()

	base := usecase.PriceCartInput{
		OrgID:      "org-1",
		RetailerID: "ret-1",
		Items:      []usecase.CartItemInput{{ProductID: "prod-1", Quantity: 1}},
	}

	t.Run("empty cart", func(t *testing.T) {
		input := base
		input.Items = nil
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrEmptyCart)
	})

	t.Run("zero quantity", func(t *testing.T) {
		input := base
		input.Items = []usecase.CartItemInput{{ProductID: "prod-1", Quantity: 0}}
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		input := base
		input.Items = []usecase.CartItemInput{{ProductID: "missing", Quantity: 1}}
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
	})

	t.Run("inactive product", func(t *testing.T) {
		input := base
		input.Items = []usecase.CartItemInput{{ProductID: "prod-inactive", Quantity: 1}}
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrProductInactive)
	})

	t.Run("product from another org", func(t *testing.T) {
		input := base
		input.Items = []usecase.CartItemInput{{ProductID: "prod-other-org", Quantity: 1}}
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrTenantMismatch)
	})

	t.Run("unknown coupon", func(t *testing.T) {
		input := base
		input.CouponCode = "NOPE"
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCoupon)
	})

	t.Run("inactive coupon", func(t *testing.T) {
		input := base
		input.CouponCode = "EXPIRED"
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCoupon)
	})

	t.Run("retailer from another org", func(t *testing.T) {
		input := base
		input.OrgID = "org-2"
		_, err := service.PriceCart(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrTenantMismatch)
	})
}

func TestCheckoutService_Checkout_CreatesPendingOrder(t *testing.T) {
	service, orderRepo, couponRepo, gateway, emailSender, publisher := createTestCheckoutService(t)

	out, err := service.Checkout(context.Background(), usecase.CheckoutInput{
		OrgID:         "org-1",
		RetailerID:    "ret-1",
		Items:         []usecase.CartItemInput{{ProductID: "prod-1", Quantity: 1}},
		CouponCode:    "SAVE10",
		CustomerEmail: "customer@example.com",
	})
	require.NoError(t, err)

	order := out.Order
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.Regexp(t, `^PU-[0-9a-f]{8}$`, order.PickupCode)
	assert.Equal(t, "stripe", order.PaymentProvider)
	assert.Equal(t, "ext_"+order.ID, order.PaymentExternal)
	assert.Equal(t, order.PaymentExternal, out.Intent.ExternalID)

	stored, err := orderRepo.FindOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalCents, stored.TotalCents)

	// The coupon redemption counter was bumped.
	coupon, err := couponRepo.FindCoupon(context.Background(), "org-1", "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.Redeemed)

	assert.Len(t, gateway.created, 1)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "order.created", publisher.events[0].Event)
	assert.Equal(t, order.ID, publisher.events[0].Subject)

	require.Len(t, emailSender.sent, 1)
	assert.Equal(t, "customer@example.com", emailSender.sent[0].To)
	assert.Contains(t, emailSender.sent[0].TextBody, order.PickupCode)
}

func TestCheckoutService_Checkout_PaymentIntentFailure(t *testing.T) {
	service, orderRepo, _, gateway, _, publisher := createTestCheckoutService(t)
	gateway.err = assert.AnError

	_, err := service.Checkout(context.Background(), usecase.CheckoutInput{
		OrgID:         "org-1",
		RetailerID:    "ret-1",
		Items:         []usecase.CartItemInput{{ProductID: "prod-1", Quantity: 1}},
		CustomerEmail: "customer@example.com",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPaymentFailed)

	// Nothing was persisted or announced.
	assert.Empty(t, orderRepo.orders)
	assert.Empty(t, publisher.events)
}

func TestCheckoutService_Checkout_EmailFailureDoesNotBlock(t *testing.T) {
	service, _, _, _, emailSender, _ := createTestCheckoutService(t)
	emailSender.err = assert.AnError

	out, err := service.Checkout(context.Background(), usecase.CheckoutInput{
		OrgID:         "org-1",
		RetailerID:    "ret-1",
		Items:         []usecase.CartItemInput{{ProductID: "prod-1", Quantity: 1}},
		CustomerEmail: "customer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, out.Order.Status)
}

func TestCheckoutService_ConfirmPayment(t *testing.T) {
	newEvent := func(orderID string, status service.PaymentStatus) *service.PaymentEvent {
		return &service.PaymentEvent{Provider: "stripe", EventID: "evt-1", OrderID: orderID, Status: status}
	}

	t.Run("succeeded marks paid and publishes", func(t *testing.T) {
		svc, orderRepo, _, _, _, publisher := createTestCheckoutService(t)
		require.NoError(t, orderRepo.CreateOrder(context.Background(),
			&entity.Order{ID: "order-1", OrgID: "org-1", Status: entity.OrderStatusPending}))

		require.NoError(t, svc.ConfirmPayment(context.Background(), newEvent("order-1", service.PaymentSucceeded)))

		order, err := orderRepo.FindOrderByID(context.Background(), "order-1")
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusPaid, order.Status)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, "order.paid", publisher.events[0].Event)
	})

	t.Run("failed cancels", func(t *testing.T) {
		svc, orderRepo, _, _, _, _ := createTestCheckoutService(t)
		require.NoError(t, orderRepo.CreateOrder(context.Background(),
			&entity.Order{ID: "order-2", OrgID: "org-1", Status: entity.OrderStatusPending}))

		require.NoError(t, svc.ConfirmPayment(context.Background(), newEvent("order-2", service.PaymentFailed)))

		order, err := orderRepo.FindOrderByID(context.Background(), "order-2")
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusCanceled, order.Status)
	})

	t.Run("refund after payment cancels", func(t *testing.T) {
		svc, orderRepo, _, _, _, _ := createTestCheckoutService(t)
		require.NoError(t, orderRepo.CreateOrder(context.Background(),
			&entity.Order{ID: "order-3", OrgID: "org-1", Status: entity.OrderStatusPaid}))

		require.NoError(t, svc.ConfirmPayment(context.Background(), newEvent("order-3", service.PaymentRefunded)))

		order, err := orderRepo.FindOrderByID(context.Background(), "order-3")
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusCanceled, order.Status)
	})

	t.Run("replayed delivery is a no-op", func(t *testing.T) {
		svc, orderRepo, _, _, _, publisher := createTestCheckoutService(t)
		require.NoError(t, orderRepo.CreateOrder(context.Background(),
			&entity.Order{ID: "order-4", OrgID: "org-1", Status: entity.OrderStatusPaid}))

		require.NoError(t, svc.ConfirmPayment(context.Background(), newEvent("order-4", service.PaymentSucceeded)))
		assert.Empty(t, publisher.events)
	})

	t.Run("success on fulfilled order rejected", func(t *testing.T) {
		svc, orderRepo, _, _, _, _ := createTestCheckoutService(t)
		require.NoError(t, orderRepo.CreateOrder(context.Background(),
			&entity.Order{ID: "order-5", OrgID: "org-1", Status: entity.OrderStatusFulfilled}))

		err := svc.ConfirmPayment(context.Background(), newEvent("order-5", service.PaymentSucceeded))
		assert.ErrorIs(t, err, domainerrors.ErrInvalidOrderTransition)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _, _, _, _, _ := createTestCheckoutService(t)
		err := svc.ConfirmPayment(context.Background(), newEvent("missing", service.PaymentSucceeded))
		assert.ErrorIs(t, err, domainerrors.ErrOrderNotFound)
	})
}

func TestCheckoutService_GetOrder_EnforcesOrgBoundary(t *testing.T) {
	service, orderRepo, _, _, _, _ := createTestCheckoutService(t)
	require.NoError(t, orderRepo.CreateOrder(context.Background(),
		&entity.Order{ID: "order-1", OrgID: "org-1", Status: entity.OrderStatusPending}))

	_, err := service.GetOrder(context.Background(), "org-2", "order-1")
	assert.ErrorIs(t, err, domainerrors.ErrTenantMismatch)

	order, err := service.GetOrder(context.Background(), "org-1", "order-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
}

func TestCheckoutService_TransitionOrder(t *testing.T) {
	service, orderRepo, _, _, _, _ := createTestCheckoutService(t)
	require.NoError(t, orderRepo.CreateOrder(context.Background(),
		&entity.Order{ID: "order-1", OrgID: "org-1", Status: entity.OrderStatusPaid}))

	order, err := service.TransitionOrder(context.Background(), "org-1", "order-1", entity.OrderStatusFulfilled)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusFulfilled, order.Status)

	// Fulfilled is terminal.
	_, err = service.TransitionOrder(context.Background(), "org-1", "order-1", entity.OrderStatusCanceled)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrderTransition)
}

func TestCheckoutService_ExpireStaleOrders(t *testing.T) {
	service, orderRepo, _, _, _, _ := createTestCheckoutService(t)
	ctx := context.Background()

	old := time.Now().Add(-96 * time.Hour)
	fresh := time.Now()

	require.NoError(t, orderRepo.CreateOrder(ctx, &entity.Order{ID: "stale-pending", Status: entity.OrderStatusPending, UpdatedAt: old}))
	require.NoError(t, orderRepo.CreateOrder(ctx, &entity.Order{ID: "fresh-pending", Status: entity.OrderStatusPending, UpdatedAt: fresh}))
	require.NoError(t, orderRepo.CreateOrder(ctx, &entity.Order{ID: "stale-paid", Status: entity.OrderStatusPaid, UpdatedAt: old}))
	require.NoError(t, orderRepo.CreateOrder(ctx, &entity.Order{ID: "fresh-paid", Status: entity.OrderStatusPaid, UpdatedAt: fresh}))

	canceled, fulfilled, err := service.ExpireStaleOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, canceled)
	assert.Equal(t, 1, fulfilled)

	stalePending, err := orderRepo.FindOrderByID(ctx, "stale-pending")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCanceled, stalePending.Status)

	stalePaid, err := orderRepo.FindOrderByID(ctx, "stale-paid")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusFulfilled, stalePaid.Status)

	freshPending, err := orderRepo.FindOrderByID(ctx, "fresh-pending")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, freshPending.Status)
}
