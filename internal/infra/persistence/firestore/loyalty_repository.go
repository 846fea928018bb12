package firestore

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// loyaltyRepository implements repository.LoyaltyRepository. One
// document per org, keyed by org ID.
type loyaltyRepository struct {
	client *firestore.Client
}

// NewLoyaltyRepository is the constructor for loyaltyRepository.
func NewLoyaltyRepository(client *firestore.Client) repository.LoyaltyRepository {
	return &loyaltyRepository{client: client}
}

// FindLoyaltySettings retrieves the org's settings document.
func (repo *loyaltyRepository) FindLoyaltySettings(ctx context.Context, orgID string) (*entity.LoyaltySettings, error) {
	snap, err := repo.client.Collection(collLoyalty).Doc(orgID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrLoyaltySettingsNotFound
		}

		return nil, errors.Wrap(err, "failed to find loyalty settings")
	}

	var settings entity.LoyaltySettings
	if err := snap.DataTo(&settings); err != nil {
		return nil, errors.Wrap(err, "failed to decode loyalty settings")
	}

	return &settings, nil
}

// SaveLoyaltySettings creates or overwrites the org's settings document.
func (repo *loyaltyRepository) SaveLoyaltySettings(ctx context.Context, settings *entity.LoyaltySettings) error {
	if _, err := repo.client.Collection(collLoyalty).Doc(settings.OrgID).Set(ctx, settings); err != nil {
		return errors.Wrap(err, "failed to save loyalty settings")
	}

	return nil
}
