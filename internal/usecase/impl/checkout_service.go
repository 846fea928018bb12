package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"canopy/config"
	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/infra/metrics"
	"canopy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// checkoutService implements the CheckoutUsecase interface.
type checkoutService struct {
	productRepo   repository.ProductRepository
	retailerRepo  repository.RetailerRepository
	couponRepo    repository.CouponRepository
	orderRepo     repository.OrderRepository
	gateways      service.GatewayRegistry
	qrService     service.QRCodeService
	emailSender   service.EmailSender
	publisher     service.EventPublisher
	pendingMaxAge time.Duration
	pickupWindow  time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// CheckoutServiceParams holds dependencies for CheckoutService, injected by Fx.
type CheckoutServiceParams struct {
	fx.In

	ProductRepo  repository.ProductRepository
	RetailerRepo repository.RetailerRepository
	CouponRepo   repository.CouponRepository
	OrderRepo    repository.OrderRepository
	Gateways     service.GatewayRegistry
	QRService    service.QRCodeService
	EmailSender  service.EmailSender
	Publisher    service.EventPublisher
	Config       *config.Config
	Logger       *slog.Logger
}

// NewCheckoutService is the constructor for checkoutService. It receives all dependencies as interfaces.
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	pendingMaxAge := 24 * time.Hour
	pickupWindow := 72 * time.Hour
	if params.Config != nil && params.Config.Checkout != nil {
		if params.Config.Checkout.PendingMaxAge > 0 {
			pendingMaxAge = params.Config.Checkout.PendingMaxAge
		}
		if params.Config.Checkout.PickupWindow > 0 {
			pickupWindow = params.Config.Checkout.PickupWindow
		}
	}

	return &checkoutService{
		productRepo:   params.ProductRepo,
		retailerRepo:  params.RetailerRepo,
		couponRepo:    params.CouponRepo,
		orderRepo:     params.OrderRepo,
		gateways:      params.Gateways,
		qrService:     params.QRService,
		emailSender:   params.EmailSender,
		publisher:     params.Publisher,
		pendingMaxAge: pendingMaxAge,
		pickupWindow:  pickupWindow,
		logger:        params.Logger,
		now:           time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// PriceCart resolves products, applies the coupon, and computes tax.
func (srv *checkoutService) PriceCart(ctx context.Context, input usecase.PriceCartInput) (*usecase.CartQuote, error) {
	if len(input.Items) == 0 {
		return nil, domainerrors.ErrEmptyCart
	}

	retailer, err := srv.retailerRepo.FindRetailerByID(ctx, input.RetailerID)
	if err != nil {
		if errors.Is(err, repository.ErrRetailerNotFound) {
			return nil, domainerrors.ErrRetailerNotFound
		}

		return nil, errors.Wrap(err, "failed to load retailer")
	}
	if retailer.OrgID != input.OrgID {
		return nil, domainerrors.ErrTenantMismatch
	}

	var lines []entity.OrderItem
	var subtotal int64
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, domainerrors.ErrInvalidQuantity.WrapMessage(
				fmt.Sprintf("quantity %d for product %s", item.Quantity, item.ProductID))
		}

		product, err := srv.productRepo.FindProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, domainerrors.ErrProductNotFound.WrapMessage("product " + item.ProductID)
			}

			return nil, errors.Wrap(err, "failed to load product")
		}
		if product.OrgID != input.OrgID {
			return nil, domainerrors.ErrTenantMismatch
		}
		if !product.Active {
			return nil, domainerrors.ErrProductInactive.WrapMessage(product.Name)
		}

		unit := product.PriceFor(input.RetailerID)
		lines = append(lines, entity.OrderItem{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: unit,
			Quantity:       item.Quantity,
		})
		subtotal += unit * int64(item.Quantity)
	}

	var discount int64
	if input.CouponCode != "" {
		coupon, err := srv.couponRepo.FindCoupon(ctx, input.OrgID, input.CouponCode)
		if err != nil {
			if errors.Is(err, repository.ErrCouponNotFound) {
				return nil, domainerrors.ErrInvalidCoupon
			}

			return nil, errors.Wrap(err, "failed to load coupon")
		}
		if !coupon.Valid(subtotal, srv.now()) {
			return nil, domainerrors.ErrInvalidCoupon
		}
		discount = coupon.DiscountFor(subtotal)
	}

	tax := roundHalfUpBps(subtotal-discount, retailer.TaxBps())
	total := subtotal - discount + tax

	return &usecase.CartQuote{
		Items:         lines,
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TaxCents:      tax,
		TotalCents:    total,
		CouponCode:    input.CouponCode,
	}, nil
}

// roundHalfUpBps applies a basis-point rate to an amount with half-up
// rounding to the nearest cent.
func roundHalfUpBps(amountCents, bps int64) int64 {
	return (amountCents*bps + 5000) / 10000
}

// newPickupCode derives a short human-readable code budtenders can
// check against ID at the counter.
func newPickupCode() string {
	id := uuid.NewString()

	return "PU-" + id[:8]
}

// Checkout prices the cart, creates a pending order, and registers a
// payment intent with the configured gateway.
func (srv *checkoutService) Checkout(ctx context.Context, input usecase.CheckoutInput) (*usecase.CheckoutOutput, error) {
	started := srv.now()
	defer func() {
		metrics.CheckoutLatency.Observe(time.Since(started).Seconds())
	}()

	quote, err := srv.PriceCart(ctx, usecase.PriceCartInput{
		OrgID:      input.OrgID,
		RetailerID: input.RetailerID,
		Items:      input.Items,
		CouponCode: input.CouponCode,
	})
	if err != nil {
		metrics.OrdersFailedTotal.WithLabelValues("pricing").Inc()

		return nil, err
	}

	now := srv.now().UTC()
	order := &entity.Order{
		ID:            uuid.NewString(),
		OrgID:         input.OrgID,
		RetailerID:    input.RetailerID,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Items:         quote.Items,
		SubtotalCents: quote.SubtotalCents,
		DiscountCents: quote.DiscountCents,
		TaxCents:      quote.TaxCents,
		TotalCents:    quote.TotalCents,
		CouponCode:    quote.CouponCode,
		PickupCode:    newPickupCode(),
		Status:        entity.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	gateway, err := srv.gateways.Primary()
	if err != nil {
		metrics.OrdersFailedTotal.WithLabelValues("gateway").Inc()

		return nil, errors.Wrap(err, "failed to resolve payment gateway")
	}

	intent, err := gateway.CreatePayment(ctx, order.ID, order.TotalCents, "usd")
	if err != nil {
		metrics.OrdersFailedTotal.WithLabelValues("payment_intent").Inc()
		srv.log(ctx).Error("Payment intent creation failed",
			slog.String("order_id", order.ID),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrPaymentFailed.WrapMessage("payment intent creation failed")
	}
	order.PaymentProvider = intent.Provider
	order.PaymentExternal = intent.ExternalID

	if err := srv.orderRepo.CreateOrder(ctx, order); err != nil {
		metrics.OrdersFailedTotal.WithLabelValues("persist").Inc()

		return nil, errors.Wrap(err, "failed to persist order")
	}
	metrics.OrdersCreatedTotal.Inc()

	if order.CouponCode != "" {
		if err := srv.couponRepo.IncrementRedemptions(ctx, order.OrgID, order.CouponCode); err != nil {
			srv.log(ctx).Error("Failed to increment coupon redemptions",
				slog.String("order_id", order.ID),
				slog.String("coupon", order.CouponCode),
				slog.Any("error", err),
			)
		}
	}

	srv.publishOrderEvent(ctx, service.EventOrderCreated, order)
	srv.sendOrderConfirmation(ctx, order)

	srv.log(ctx).Info("Order created",
		slog.String("order_id", order.ID),
		slog.String("org_id", order.OrgID),
		slog.Int64("total_cents", order.TotalCents),
	)

	return &usecase.CheckoutOutput{Order: order, Intent: intent}, nil
}

func (srv *checkoutService) publishOrderEvent(ctx context.Context, event string, order *entity.Order) {
	platformEvent := &service.PlatformEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		Event:     event,
		OrgID:     order.OrgID,
		Subject:   order.ID,
		Payload: map[string]string{
			"retailer_id": order.RetailerID,
			"total_cents": fmt.Sprintf("%d", order.TotalCents),
		},
	}
	if err := srv.publisher.PublishEvent(ctx, platformEvent); err != nil {
		srv.log(ctx).Error("Failed to publish order event",
			slog.String("order_id", order.ID),
			slog.String("event", event),
			slog.Any("error", err),
		)
	}
}

func (srv *checkoutService) sendOrderConfirmation(ctx context.Context, order *entity.Order) {
	msg := &service.EmailMessage{
		To:      order.CustomerEmail,
		Subject: "Your pickup order is in",
		TextBody: fmt.Sprintf(
			"Order %s confirmed. Show pickup code %s at the counter. Total: $%d.%02d.",
			order.ID, order.PickupCode, order.TotalCents/100, order.TotalCents%100),
	}
	if err := srv.emailSender.Send(ctx, msg); err != nil {
		srv.log(ctx).Error("Failed to send order confirmation",
			slog.String("order_id", order.ID),
			slog.Any("error", err),
		)
	}
}

// ConfirmPayment applies a verified gateway event to its order.
func (srv *checkoutService) ConfirmPayment(ctx context.Context, event *service.PaymentEvent) error {
	order, err := srv.orderRepo.FindOrderByID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return domainerrors.ErrOrderNotFound.WrapMessage("order " + event.OrderID)
		}

		return errors.Wrap(err, "failed to load order for payment event")
	}

	var next entity.OrderStatus
	switch event.Status {
	case service.PaymentSucceeded:
		next = entity.OrderStatusPaid
	case service.PaymentFailed, service.PaymentRefunded:
		next = entity.OrderStatusCanceled
	default:
		return domainerrors.ErrValidationFailed.WrapMessage("unhandled payment status")
	}

	if !order.Status.CanTransitionTo(next) {
		return domainerrors.ErrInvalidOrderTransition.WrapMessage(
			fmt.Sprintf("%s -> %s", order.Status, next))
	}
	if order.Status == next {
		// Replayed delivery, nothing to do.
		return nil
	}

	if err := srv.orderRepo.UpdateOrderStatus(ctx, order.ID, next); err != nil {
		return errors.Wrap(err, "failed to update order status")
	}

	if next == entity.OrderStatusPaid {
		order.Status = next
		srv.publishOrderEvent(ctx, service.EventOrderPaid, order)
	}

	srv.log(ctx).Info("Payment event applied",
		slog.String("order_id", order.ID),
		slog.String("provider", event.Provider),
		slog.String("status", string(next)),
	)

	return nil
}

// GetOrder retrieves one order, enforcing the org boundary.
func (srv *checkoutService) GetOrder(ctx context.Context, orgID, orderID string) (*entity.Order, error) {
	order, err := srv.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domainerrors.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to load order")
	}
	if order.OrgID != orgID {
		return nil, domainerrors.ErrTenantMismatch
	}

	return order, nil
}

// ListOrders retrieves the org's orders, newest first.
func (srv *checkoutService) ListOrders(ctx context.Context, orgID string, limit int) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.ListOrders(ctx, orgID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return orders, nil
}

// TransitionOrder moves an order to a new status if the transition
// table allows it.
func (srv *checkoutService) TransitionOrder(ctx context.Context, orgID, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	order, err := srv.GetOrder(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, domainerrors.ErrInvalidOrderTransition.WrapMessage(
			fmt.Sprintf("%s -> %s", order.Status, status))
	}
	if order.Status != status {
		if err := srv.orderRepo.UpdateOrderStatus(ctx, order.ID, status); err != nil {
			return nil, errors.Wrap(err, "failed to update order status")
		}
		order.Status = status
	}

	return order, nil
}

// GetPickupQR renders the pickup QR PNG for an order.
func (srv *checkoutService) GetPickupQR(ctx context.Context, orderID string) ([]byte, error) {
	order, err := srv.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domainerrors.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to load order for QR")
	}

	png, err := srv.qrService.GeneratePickupQR(order.ID, order.PickupCode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render pickup QR")
	}

	return png, nil
}

// ExpireStaleOrders is the nightly backfill over stuck orders.
func (srv *checkoutService) ExpireStaleOrders(ctx context.Context) (int, int, error) {
	now := srv.now()

	pending, err := srv.orderRepo.ListOrdersInStatusOlderThan(ctx, entity.OrderStatusPending, now.Add(-srv.pendingMaxAge))
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to list stale pending orders")
	}

	var canceled int
	for _, order := range pending {
		if err := srv.orderRepo.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusCanceled); err != nil {
			srv.log(ctx).Error("Failed to cancel stale order",
				slog.String("order_id", order.ID),
				slog.Any("error", err),
			)

			continue
		}
		canceled++
	}

	paid, err := srv.orderRepo.ListOrdersInStatusOlderThan(ctx, entity.OrderStatusPaid, now.Add(-srv.pickupWindow))
	if err != nil {
		return canceled, 0, errors.Wrap(err, "failed to list stale paid orders")
	}

	var fulfilled int
	for _, order := range paid {
		if err := srv.orderRepo.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusFulfilled); err != nil {
			srv.log(ctx).Error("Failed to fulfill stale order",
				slog.String("order_id", order.ID),
				slog.Any("error", err),
			)

			continue
		}
		fulfilled++
	}

	srv.log(ctx).Info("Stale order sweep finished",
		slog.Int("canceled", canceled),
		slog.Int("fulfilled", fulfilled),
	)

	return canceled, fulfilled, nil
}
