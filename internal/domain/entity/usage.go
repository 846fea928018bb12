package entity

import (
	"fmt"
	"time"
)

// UsageRecord holds the per-metric counters for an org within a
// billing period (UTC calendar month).
type UsageRecord struct {
	OrgID    string                `json:"org_id" firestore:"orgId"`
	Period   string                `json:"period" firestore:"period"` // YYYY-MM
	Counters map[UsageMetric]int64 `json:"counters" firestore:"counters"`

	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PeriodOf formats the billing period for a point in time.
func PeriodOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// UsageDocID is the Firestore document ID for an org's period counters.
func UsageDocID(orgID, period string) string {
	return fmt.Sprintf("%s_%s", orgID, period)
}

// MetricUsage is the computed view of one metric against its tier limit.
type MetricUsage struct {
	Metric         UsageMetric `json:"metric"`
	Used           int64       `json:"used"`
	Limit          int64       `json:"limit"`
	PercentOfLimit float64     `json:"percent_of_limit"`
	AtRisk         bool        `json:"at_risk"`
	OverLimit      bool        `json:"over_limit"`
	OverageUnits   int64       `json:"overage_units"`
	OverageCents   int64       `json:"overage_cents"`
}

// UsageSummary is the full metering report for an org's current period.
type UsageSummary struct {
	OrgID              string        `json:"org_id"`
	Period             string        `json:"period"`
	TierID             string        `json:"tier_id"`
	TierName           string        `json:"tier_name"`
	Metrics            []MetricUsage `json:"metrics"`
	OverageCents       int64         `json:"overage_cents"`
	MonthlyPriceCents  int64         `json:"monthly_price_cents"`
	ProjectedBillCents int64         `json:"projected_bill_cents"`
}
