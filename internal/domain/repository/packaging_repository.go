package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// ErrAnalysisNotFound is returned when an analysis document does not exist.
var ErrAnalysisNotFound = errors.New("packaging analysis not found")

// PackagingRepository defines packaging analysis document operations.
type PackagingRepository interface {
	// CreateAnalysis persists a new analysis record.
	CreateAnalysis(ctx context.Context, analysis *entity.PackagingAnalysis) error

	// FindAnalysisByID retrieves an analysis by document ID.
	FindAnalysisByID(ctx context.Context, id string) (*entity.PackagingAnalysis, error)

	// ListAnalyses retrieves all analyses for an org, newest first.
	ListAnalyses(ctx context.Context, orgID string) ([]*entity.PackagingAnalysis, error)

	// UpdateAnalysis overwrites an existing analysis record.
	UpdateAnalysis(ctx context.Context, analysis *entity.PackagingAnalysis) error
}
