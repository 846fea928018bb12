package entity

// UsageMetric identifies a metered allocation on a tier.
type UsageMetric string

const (
	MetricSMS         UsageMetric = "sms"
	MetricEmail       UsageMetric = "email"
	MetricAISessions  UsageMetric = "ai_sessions"
	MetricCompetitors UsageMetric = "competitors"
)

// AllMetrics lists every metered metric in a stable order.
var AllMetrics = []UsageMetric{MetricSMS, MetricEmail, MetricAISessions, MetricCompetitors}

// KnownMetric reports whether m is a metered metric.
func KnownMetric(m UsageMetric) bool {
	for _, known := range AllMetrics {
		if known == m {
			return true
		}
	}

	return false
}

// Tier is a subscription plan defining monthly allocations and per-unit
// overage rates.
type Tier struct {
	ID                string `json:"id" firestore:"id"`
	Name              string `json:"name" firestore:"name"`
	MonthlyPriceCents int64  `json:"monthly_price_cents" firestore:"monthlyPriceCents"`

	// Limits maps metric → monthly allocation. A missing metric means
	// a zero allocation.
	Limits map[UsageMetric]int64 `json:"limits" firestore:"limits"`

	// OverageRates maps metric → cents charged per unit over the limit.
	OverageRates map[UsageMetric]int64 `json:"overage_rates" firestore:"overageRates"`
}

// BaseTier is the fallback plan applied when an org has no tier
// configured or the tier document is missing.
func BaseTier() *Tier {
	return &Tier{
		ID:                "base",
		Name:              "Starter",
		MonthlyPriceCents: 9900,
		Limits: map[UsageMetric]int64{
			MetricSMS:         500,
			MetricEmail:       2000,
			MetricAISessions:  100,
			MetricCompetitors: 3,
		},
		OverageRates: map[UsageMetric]int64{
			MetricSMS:         3,
			MetricEmail:       1,
			MetricAISessions:  25,
			MetricCompetitors: 500,
		},
	}
}
