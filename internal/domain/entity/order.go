package entity

import "time"

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// validOrderTransitions enumerates the allowed status moves. A status
// may always transition to itself (webhook replays).
var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:    {OrderStatusFulfilled, OrderStatusCanceled},
}

// CanTransitionTo reports whether the status may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range validOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// OrderItem is a priced line on an order. The unit price is captured
// at checkout time so later product edits do not rewrite history.
type OrderItem struct {
	ProductID      string `json:"product_id" firestore:"productId"`
	Name           string `json:"name" firestore:"name"`
	UnitPriceCents int64  `json:"unit_price_cents" firestore:"unitPriceCents"`
	Quantity       int    `json:"quantity" firestore:"quantity"`
}

// Order is a customer pickup order at a retailer.
type Order struct {
	ID         string `json:"id" firestore:"id"`
	OrgID      string `json:"org_id" firestore:"orgId"`
	RetailerID string `json:"retailer_id" firestore:"retailerId"`

	CustomerEmail string `json:"customer_email" firestore:"customerEmail"`
	CustomerPhone string `json:"customer_phone,omitempty" firestore:"customerPhone,omitempty"`

	Items []OrderItem `json:"items" firestore:"items"`

	SubtotalCents int64 `json:"subtotal_cents" firestore:"subtotalCents"`
	DiscountCents int64 `json:"discount_cents" firestore:"discountCents"`
	TaxCents      int64 `json:"tax_cents" firestore:"taxCents"`
	TotalCents    int64 `json:"total_cents" firestore:"totalCents"`

	CouponCode string `json:"coupon_code,omitempty" firestore:"couponCode,omitempty"`

	PaymentProvider string `json:"payment_provider,omitempty" firestore:"paymentProvider,omitempty"`
	PaymentExternal string `json:"payment_external,omitempty" firestore:"paymentExternal,omitempty"`
	PickupCode      string `json:"pickup_code" firestore:"pickupCode"`

	Status    OrderStatus `json:"status" firestore:"status"`
	CreatedAt time.Time   `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time   `json:"updated_at" firestore:"updatedAt"`
}
