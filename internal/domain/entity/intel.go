package entity

import "time"

// CategoryPricing aggregates competitor shelf prices for one category.
type CategoryPricing struct {
	Category string `json:"category" firestore:"category"`
	MinCents int64  `json:"min_cents" firestore:"minCents"`
	AvgCents int64  `json:"avg_cents" firestore:"avgCents"`
	MaxCents int64  `json:"max_cents" firestore:"maxCents"`
	Samples  int    `json:"samples" firestore:"samples"`
}

// CompetitorSnapshot is one point-in-time pull of a tracked competitor
// menu from the catalog proxy.
type CompetitorSnapshot struct {
	ID          string            `json:"id" firestore:"id"`
	OrgID       string            `json:"org_id" firestore:"orgId"`
	RetailerKey string            `json:"retailer_key" firestore:"retailerKey"`
	Categories  []CategoryPricing `json:"categories" firestore:"categories"`
	CapturedAt  time.Time         `json:"captured_at" firestore:"capturedAt"`
}

// ChurnScore is one org's churn risk as computed by the nightly job.
type ChurnScore struct {
	OrgID    string    `json:"org_id" firestore:"orgId"`
	Score    float64   `json:"score" firestore:"score"` // [0,1], higher is riskier
	AtRisk   bool      `json:"at_risk" firestore:"atRisk"`
	Reasons  []string  `json:"reasons,omitempty" firestore:"reasons,omitempty"`
	ScoredAt time.Time `json:"scored_at" firestore:"scoredAt"`
}
