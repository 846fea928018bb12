package usecase

import (
	"context"

	"canopy/internal/domain/entity"
)

// ChurnReport summarizes one churn-prediction run.
type ChurnReport struct {
	Scored  int                  `json:"scored"`
	AtRisk  []*entity.ChurnScore `json:"at_risk"`
	RunTime string               `json:"run_time"` // RFC3339
}

// IntelUsecase defines the interface for competitive intelligence and
// churn prediction.
type IntelUsecase interface {
	// SnapshotCompetitors pulls competitor pricing from the catalog
	// proxy for the org's tracked retailers and stores per-category
	// aggregates. Increments the competitors usage metric.
	SnapshotCompetitors(ctx context.Context, orgID string) (*entity.CompetitorSnapshot, error)

	// ListSnapshots retrieves the org's snapshots, newest first.
	ListSnapshots(ctx context.Context, orgID string, limit int) ([]*entity.CompetitorSnapshot, error)

	// PredictChurn scores every active org and emails the operator a
	// digest of at-risk tenants. Run nightly by the jobs server.
	PredictChurn(ctx context.Context) (*ChurnReport, error)
}
