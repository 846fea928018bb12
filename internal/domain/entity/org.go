// Package entity contains the core business objects of the platform.
package entity

import "time"

// OrgType distinguishes the two tenant kinds.
type OrgType string

const (
	OrgTypeBrand      OrgType = "brand"
	OrgTypeDispensary OrgType = "dispensary"
)

// Org is a tenant account. Every document in the platform is scoped to
// exactly one org.
type Org struct {
	ID               string    `json:"id" firestore:"id"`
	Name             string    `json:"name" firestore:"name"`
	Type             OrgType   `json:"type" firestore:"type"`
	TierID           string    `json:"tier_id" firestore:"tierId"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty" firestore:"stripeCustomerId,omitempty"`
	ContactEmail     string    `json:"contact_email" firestore:"contactEmail"`
	State            string    `json:"state" firestore:"state"` // two-letter licensing state
	Active           bool      `json:"active" firestore:"active"`
	CreatedAt        time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt        time.Time `json:"updated_at" firestore:"updatedAt"`
}
