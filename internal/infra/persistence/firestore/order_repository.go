package firestore

import (
	"context"
	"fmt"
	"time"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// orderRepository implements repository.OrderRepository.
type orderRepository struct {
	client *firestore.Client
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &orderRepository{client: client}
}

// CreateOrder persists a new order document.
func (repo *orderRepository) CreateOrder(ctx context.Context, order *entity.Order) error {
	if _, err := repo.client.Collection(collOrders).Doc(order.ID).Set(ctx, order); err != nil {
		return errors.Wrap(err, "failed to create order")
	}

	return nil
}

// FindOrderByID retrieves an order by document ID.
func (repo *orderRepository) FindOrderByID(ctx context.Context, id string) (*entity.Order, error) {
	snap, err := repo.client.Collection(collOrders).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by ID")
	}

	var order entity.Order
	if err := snap.DataTo(&order); err != nil {
		return nil, errors.Wrap(err, "failed to decode order")
	}

	return &order, nil
}

// ListOrders retrieves an org's orders, newest first.
func (repo *orderRepository) ListOrders(ctx context.Context, orgID string, limit int) ([]*entity.Order, error) {
	query := repo.client.Collection(collOrders).
		Where("orgId", "==", orgID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var orders []*entity.Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list orders")
		}

		var order entity.Order
		if err := snap.DataTo(&order); err != nil {
			return nil, errors.Wrap(err, "failed to decode order")
		}
		orders = append(orders, &order)
	}

	return orders, nil
}

// UpdateOrderStatus sets a new status and bumps updatedAt.
func (repo *orderRepository) UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	_, err := repo.client.Collection(collOrders).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if notFound(err) {
			return repository.ErrOrderNotFound
		}

		return errors.Wrap(err, "failed to update order status")
	}

	return nil
}

// ListOrdersInStatusOlderThan retrieves orders across all orgs in the
// given status whose updatedAt predates the cutoff.
func (repo *orderRepository) ListOrdersInStatusOlderThan(ctx context.Context, status entity.OrderStatus, cutoff time.Time) ([]*entity.Order, error) {
	iter := repo.client.Collection(collOrders).
		Where("status", "==", string(status)).
		Where("updatedAt", "<", cutoff).
		Documents(ctx)
	defer iter.Stop()

	var orders []*entity.Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list stale orders")
		}

		var order entity.Order
		if err := snap.DataTo(&order); err != nil {
			return nil, errors.Wrap(err, "failed to decode order")
		}
		orders = append(orders, &order)
	}

	return orders, nil
}

// FindLatestOrderTime returns the most recent order creation time for
// an org, or the zero time when the org has no orders.
func (repo *orderRepository) FindLatestOrderTime(ctx context.Context, orgID string) (time.Time, error) {
	iter := repo.client.Collection(collOrders).
		Where("orgId", "==", orgID).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to find latest order")
	}

	var order entity.Order
	if err := snap.DataTo(&order); err != nil {
		return time.Time{}, errors.Wrap(err, "failed to decode order")
	}

	return order.CreatedAt, nil
}

// couponRepository implements repository.CouponRepository. Coupons are
// stored one document per org and code.
type couponRepository struct {
	client *firestore.Client
}

// NewCouponRepository is the constructor for couponRepository.
func NewCouponRepository(client *firestore.Client) repository.CouponRepository {
	return &couponRepository{client: client}
}

func couponDocID(orgID, code string) string {
	return fmt.Sprintf("%s_%s", orgID, code)
}

// CreateCoupon persists a new coupon document.
func (repo *couponRepository) CreateCoupon(ctx context.Context, coupon *entity.Coupon) error {
	docID := couponDocID(coupon.OrgID, coupon.Code)
	if _, err := repo.client.Collection(collCoupons).Doc(docID).Set(ctx, coupon); err != nil {
		return errors.Wrap(err, "failed to create coupon")
	}

	return nil
}

// FindCoupon retrieves a coupon by org and code.
func (repo *couponRepository) FindCoupon(ctx context.Context, orgID, code string) (*entity.Coupon, error) {
	snap, err := repo.client.Collection(collCoupons).Doc(couponDocID(orgID, code)).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrCouponNotFound
		}

		return nil, errors.Wrap(err, "failed to find coupon")
	}

	var coupon entity.Coupon
	if err := snap.DataTo(&coupon); err != nil {
		return nil, errors.Wrap(err, "failed to decode coupon")
	}

	return &coupon, nil
}

// ListCoupons retrieves all coupons for an org.
func (repo *couponRepository) ListCoupons(ctx context.Context, orgID string) ([]*entity.Coupon, error) {
	iter := repo.client.Collection(collCoupons).
		Where("orgId", "==", orgID).
		Documents(ctx)
	defer iter.Stop()

	var coupons []*entity.Coupon
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list coupons")
		}

		var coupon entity.Coupon
		if err := snap.DataTo(&coupon); err != nil {
			return nil, errors.Wrap(err, "failed to decode coupon")
		}
		coupons = append(coupons, &coupon)
	}

	return coupons, nil
}

// IncrementRedemptions transactionally bumps the redeemed counter.
func (repo *couponRepository) IncrementRedemptions(ctx context.Context, orgID, code string) error {
	ref := repo.client.Collection(collCoupons).Doc(couponDocID(orgID, code))

	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if notFound(err) {
				return repository.ErrCouponNotFound
			}

			return err
		}

		var coupon entity.Coupon
		if err := snap.DataTo(&coupon); err != nil {
			return err
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "redeemed", Value: coupon.Redeemed + 1},
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return err
		}

		return errors.Wrap(err, "failed to increment coupon redemptions")
	}

	return nil
}

// UpdateCoupon overwrites an existing coupon document.
func (repo *couponRepository) UpdateCoupon(ctx context.Context, coupon *entity.Coupon) error {
	docID := couponDocID(coupon.OrgID, coupon.Code)
	if _, err := repo.client.Collection(collCoupons).Doc(docID).Set(ctx, coupon); err != nil {
		return errors.Wrap(err, "failed to update coupon")
	}

	return nil
}
