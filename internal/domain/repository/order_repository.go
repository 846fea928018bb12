package repository

import (
	"context"
	"time"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// Domain-specific errors for order persistence.
var (
	// ErrOrderNotFound is returned when an order document does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCouponNotFound is returned when a coupon document does not exist.
	ErrCouponNotFound = errors.New("coupon not found")
)

// OrderRepository defines order document operations.
type OrderRepository interface {
	// CreateOrder persists a new order document.
	CreateOrder(ctx context.Context, order *entity.Order) error

	// FindOrderByID retrieves an order by document ID.
	FindOrderByID(ctx context.Context, id string) (*entity.Order, error)

	// ListOrders retrieves an org's orders, newest first.
	ListOrders(ctx context.Context, orgID string, limit int) ([]*entity.Order, error)

	// UpdateOrderStatus sets a new status and bumps updatedAt.
	UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) error

	// ListOrdersInStatusOlderThan retrieves orders across all orgs in
	// the given status whose updatedAt predates the cutoff. Used by the
	// nightly transition job.
	ListOrdersInStatusOlderThan(ctx context.Context, status entity.OrderStatus, cutoff time.Time) ([]*entity.Order, error)

	// FindLatestOrderTime returns the most recent order creation time
	// for an org, or the zero time when the org has no orders.
	FindLatestOrderTime(ctx context.Context, orgID string) (time.Time, error)
}

// CouponRepository defines coupon document operations. Coupons are
// keyed by their code within an org.
type CouponRepository interface {
	// CreateCoupon persists a new coupon document.
	CreateCoupon(ctx context.Context, coupon *entity.Coupon) error

	// FindCoupon retrieves a coupon by org and code.
	FindCoupon(ctx context.Context, orgID, code string) (*entity.Coupon, error)

	// ListCoupons retrieves all coupons for an org.
	ListCoupons(ctx context.Context, orgID string) ([]*entity.Coupon, error)

	// IncrementRedemptions transactionally bumps the redeemed counter.
	IncrementRedemptions(ctx context.Context, orgID, code string) error

	// UpdateCoupon overwrites an existing coupon document.
	UpdateCoupon(ctx context.Context, coupon *entity.Coupon) error
}
