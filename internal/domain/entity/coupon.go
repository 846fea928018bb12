package entity

import "time"

// Coupon is an org-scoped discount code. Exactly one of PercentOff or
// AmountOffCents is non-zero.
type Coupon struct {
	Code  string `json:"code" firestore:"code"`
	OrgID string `json:"org_id" firestore:"orgId"`

	PercentOff     int   `json:"percent_off,omitempty" firestore:"percentOff,omitempty"`
	AmountOffCents int64 `json:"amount_off_cents,omitempty" firestore:"amountOffCents,omitempty"`

	MinSubtotalCents int64 `json:"min_subtotal_cents" firestore:"minSubtotalCents"`

	// MaxRedemptions of zero means unlimited.
	MaxRedemptions int `json:"max_redemptions" firestore:"maxRedemptions"`
	Redeemed       int `json:"redeemed" firestore:"redeemed"`

	ExpiresAt *time.Time `json:"expires_at,omitempty" firestore:"expiresAt,omitempty"`
	Active    bool       `json:"active" firestore:"active"`
	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
}

// Valid reports whether the coupon can be applied to a cart with the
// given subtotal at the given time.
func (c *Coupon) Valid(subtotalCents int64, now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	if c.MaxRedemptions > 0 && c.Redeemed >= c.MaxRedemptions {
		return false
	}
	if subtotalCents < c.MinSubtotalCents {
		return false
	}

	return true
}

// DiscountFor computes the discount in cents for a subtotal, capped at
// the subtotal so totals never go negative.
func (c *Coupon) DiscountFor(subtotalCents int64) int64 {
	var discount int64
	if c.PercentOff > 0 {
		discount = subtotalCents * int64(c.PercentOff) / 100
	} else {
		discount = c.AmountOffCents
	}

	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}

	return discount
}
