package usecase

import (
	"context"

	"canopy/internal/domain/entity"
)

// SubmitPackagingInput carries the packaging artwork to review.
type SubmitPackagingInput struct {
	// Image is base64-encoded when submitted as JSON.
	Image       []byte `json:"image"`
	ContentType string `json:"content_type"`
}

// PackagingUsecase defines the interface for packaging compliance
// review.
type PackagingUsecase interface {
	// Submit stores the image and runs the agent compliance review.
	// A review failure marks the record failed with the message
	// retained; each submission consumes one ai_sessions usage unit.
	Submit(ctx context.Context, orgID string, input SubmitPackagingInput) (*entity.PackagingAnalysis, error)

	// GetAnalysis retrieves one analysis, enforcing the org boundary.
	GetAnalysis(ctx context.Context, orgID, analysisID string) (*entity.PackagingAnalysis, error)

	// ListAnalyses retrieves the org's analyses, newest first.
	ListAnalyses(ctx context.Context, orgID string) ([]*entity.PackagingAnalysis, error)
}
