package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// ErrLoyaltySettingsNotFound is returned when an org has never saved
// loyalty settings.
var ErrLoyaltySettingsNotFound = errors.New("loyalty settings not found")

// LoyaltyRepository defines loyalty program settings operations.
type LoyaltyRepository interface {
	// FindLoyaltySettings retrieves the org's settings document.
	FindLoyaltySettings(ctx context.Context, orgID string) (*entity.LoyaltySettings, error)

	// SaveLoyaltySettings creates or overwrites the org's settings document.
	SaveLoyaltySettings(ctx context.Context, settings *entity.LoyaltySettings) error
}
