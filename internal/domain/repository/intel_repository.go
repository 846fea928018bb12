package repository

import (
	"context"

	"canopy/internal/domain/entity"
)

// IntelRepository defines competitive intelligence document operations.
type IntelRepository interface {
	// SaveSnapshot persists a competitor pricing snapshot.
	SaveSnapshot(ctx context.Context, snapshot *entity.CompetitorSnapshot) error

	// ListSnapshots retrieves an org's snapshots, newest first.
	ListSnapshots(ctx context.Context, orgID string, limit int) ([]*entity.CompetitorSnapshot, error)

	// SaveChurnScores persists the nightly churn scores.
	SaveChurnScores(ctx context.Context, scores []*entity.ChurnScore) error
}
