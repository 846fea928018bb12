package usecase

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/service"
)

// --- Input DTOs ---

// CartItemInput is one requested line in a cart.
type CartItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PriceCartInput defines the data required to price a cart.
type PriceCartInput struct {
	OrgID      string          `json:"-"`
	RetailerID string          `json:"retailer_id"`
	Items      []CartItemInput `json:"items"`
	CouponCode string          `json:"coupon_code,omitempty"`
}

// CheckoutInput defines the data required to place an order.
type CheckoutInput struct {
	OrgID         string          `json:"-"`
	RetailerID    string          `json:"retailer_id"`
	Items         []CartItemInput `json:"items"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
}

// --- Output DTOs ---

// CartQuote is the priced view of a cart before an order exists.
type CartQuote struct {
	Items         []entity.OrderItem `json:"items"`
	SubtotalCents int64              `json:"subtotal_cents"`
	DiscountCents int64              `json:"discount_cents"`
	TaxCents      int64              `json:"tax_cents"`
	TotalCents    int64              `json:"total_cents"`
	CouponCode    string             `json:"coupon_code,omitempty"`
}

// CheckoutOutput returns the created order and the gateway handle the
// storefront needs to collect payment.
type CheckoutOutput struct {
	Order  *entity.Order          `json:"order"`
	Intent *service.PaymentIntent `json:"intent"`
}

// CheckoutUsecase defines the interface for cart pricing and the order
// lifecycle.
type CheckoutUsecase interface {
	// PriceCart resolves products, applies the coupon, and computes tax.
	PriceCart(ctx context.Context, input PriceCartInput) (*CartQuote, error)

	// Checkout prices the cart, creates a pending order, and registers
	// a payment intent with the configured gateway.
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutOutput, error)

	// ConfirmPayment applies a verified gateway event to its order.
	ConfirmPayment(ctx context.Context, event *service.PaymentEvent) error

	// GetOrder retrieves one order, enforcing the org boundary.
	GetOrder(ctx context.Context, orgID, orderID string) (*entity.Order, error)

	// ListOrders retrieves the org's orders, newest first.
	ListOrders(ctx context.Context, orgID string, limit int) ([]*entity.Order, error)

	// TransitionOrder moves an order to a new status if the transition
	// table allows it.
	TransitionOrder(ctx context.Context, orgID, orderID string, status entity.OrderStatus) (*entity.Order, error)

	// GetPickupQR renders the pickup QR PNG for an order.
	GetPickupQR(ctx context.Context, orderID string) ([]byte, error)

	// ExpireStaleOrders is the nightly backfill: pending orders older
	// than the configured age are canceled, paid orders past the pickup
	// window are fulfilled. Returns (canceled, fulfilled) counts.
	ExpireStaleOrders(ctx context.Context) (int, int, error)
}
