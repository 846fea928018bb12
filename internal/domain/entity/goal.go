package entity

import "time"

// GoalMetric is a numeric tracker a brand sets against a target.
type GoalMetric struct {
	ID    string `json:"id" firestore:"id"`
	OrgID string `json:"org_id" firestore:"orgId"`
	Label string `json:"label" firestore:"label"`
	Unit  string `json:"unit,omitempty" firestore:"unit,omitempty"`

	Baseline float64 `json:"baseline" firestore:"baseline"`
	Target   float64 `json:"target" firestore:"target"`
	Current  float64 `json:"current" firestore:"current"`

	DueAt     *time.Time `json:"due_at,omitempty" firestore:"dueAt,omitempty"`
	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
}

// Progress returns completion in [0,1]. When target equals baseline the
// goal is degenerate: it reports 1 once current reaches the target.
func (g *GoalMetric) Progress() float64 {
	span := g.Target - g.Baseline
	if span == 0 {
		if g.Current >= g.Target {
			return 1
		}

		return 0
	}

	progress := (g.Current - g.Baseline) / span
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}

	return progress
}
