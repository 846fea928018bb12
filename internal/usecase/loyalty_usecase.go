package usecase

import (
	"context"

	"canopy/internal/domain/entity"
)

// LoyaltyTierInput is one spend band in a save request.
type LoyaltyTierInput struct {
	Name               string   `json:"name"`
	RequiredSpendCents int64    `json:"required_spend_cents"`
	Multiplier         float64  `json:"multiplier"`
	Benefits           []string `json:"benefits,omitempty"`
}

// SaveLoyaltyInput defines the data required to configure an org's
// loyalty program.
type SaveLoyaltyInput struct {
	Enabled            bool               `json:"enabled"`
	ProgramName        string             `json:"program_name"`
	PointsPerDollar    int64              `json:"points_per_dollar"`
	CentsPerPoint      int64              `json:"cents_per_point"`
	MinPointsToRedeem  int64              `json:"min_points_to_redeem"`
	MaxPointsPerOrder  int64              `json:"max_points_per_order"`
	Tiers              []LoyaltyTierInput `json:"tiers"`
	TierInactivityDays int                `json:"tier_inactivity_days"`
}

// LoyaltyUsecase defines the interface for loyalty program settings
// operations.
type LoyaltyUsecase interface {
	// GetLoyaltySettings retrieves the org's program, falling back to
	// the default program when none has been saved.
	GetLoyaltySettings(ctx context.Context, orgID string) (*entity.LoyaltySettings, error)

	// SaveLoyaltySettings validates and stores the org's program.
	SaveLoyaltySettings(ctx context.Context, orgID string, input SaveLoyaltyInput) (*entity.LoyaltySettings, error)
}
