package entity

import "time"

// LoyaltyTier is one spend band of a loyalty program. Customers whose
// trailing spend reaches RequiredSpendCents earn points at Multiplier
// times the base rate.
type LoyaltyTier struct {
	Name               string   `json:"name" firestore:"name"`
	RequiredSpendCents int64    `json:"required_spend_cents" firestore:"requiredSpendCents"`
	Multiplier         float64  `json:"multiplier" firestore:"multiplier"`
	Benefits           []string `json:"benefits,omitempty" firestore:"benefits,omitempty"`
}

// LoyaltySettings is an org's loyalty program configuration, one
// document per org.
type LoyaltySettings struct {
	OrgID              string        `json:"org_id" firestore:"orgId"`
	Enabled            bool          `json:"enabled" firestore:"enabled"`
	ProgramName        string        `json:"program_name" firestore:"programName"`
	PointsPerDollar    int64         `json:"points_per_dollar" firestore:"pointsPerDollar"`
	CentsPerPoint      int64         `json:"cents_per_point" firestore:"centsPerPoint"`
	MinPointsToRedeem  int64         `json:"min_points_to_redeem" firestore:"minPointsToRedeem"`
	MaxPointsPerOrder  int64         `json:"max_points_per_order" firestore:"maxPointsPerOrder"`
	Tiers              []LoyaltyTier `json:"tiers" firestore:"tiers"`
	TierInactivityDays int           `json:"tier_inactivity_days" firestore:"tierInactivityDays"`

	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// DefaultLoyaltySettings returns the program an org gets before it has
// configured one: 1 point per dollar, 100 points to the dollar back,
// four spend tiers.
func DefaultLoyaltySettings(orgID string) *LoyaltySettings {
	return &LoyaltySettings{
		OrgID:             orgID,
		Enabled:           true,
		ProgramName:       "Rewards Program",
		PointsPerDollar:   1,
		CentsPerPoint:     1,
		MinPointsToRedeem: 100,
		MaxPointsPerOrder: 5000,
		Tiers: []LoyaltyTier{
			{Name: "Bronze", RequiredSpendCents: 0, Multiplier: 1, Benefits: []string{"Earn 1 point per dollar"}},
			{Name: "Silver", RequiredSpendCents: 50000, Multiplier: 1.2, Benefits: []string{"Earn 1.2 points per dollar", "Birthday bonus"}},
			{Name: "Gold", RequiredSpendCents: 100000, Multiplier: 1.5, Benefits: []string{"Earn 1.5 points per dollar", "Birthday bonus", "Exclusive deals"}},
			{Name: "Platinum", RequiredSpendCents: 250000, Multiplier: 2, Benefits: []string{"Earn 2 points per dollar", "Birthday bonus", "Exclusive deals", "VIP events"}},
		},
		TierInactivityDays: 180,
	}
}
