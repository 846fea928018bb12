package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// loyaltyService implements the LoyaltyUsecase interface.
type loyaltyService struct {
	loyaltyRepo repository.LoyaltyRepository
	logger      *slog.Logger
	now         func() time.Time
}

// LoyaltyServiceParams holds dependencies for LoyaltyService, injected by Fx.
type LoyaltyServiceParams struct {
	fx.In

	LoyaltyRepo repository.LoyaltyRepository
	Logger      *slog.Logger
}

// NewLoyaltyService is the constructor for loyaltyService. It receives all dependencies as interfaces.
func NewLoyaltyService(params LoyaltyServiceParams) usecase.LoyaltyUsecase {
	return &loyaltyService{
		loyaltyRepo: params.LoyaltyRepo,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *loyaltyService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetLoyaltySettings retrieves the org's program, falling back to the
// default program when none has been saved.
func (srv *loyaltyService) GetLoyaltySettings(ctx context.Context, orgID string) (*entity.LoyaltySettings, error) {
	settings, err := srv.loyaltyRepo.FindLoyaltySettings(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrLoyaltySettingsNotFound) {
			return entity.DefaultLoyaltySettings(orgID), nil
		}

		return nil, errors.Wrap(err, "failed to load loyalty settings")
	}

	return settings, nil
}

// SaveLoyaltySettings validates and stores the org's program.
func (srv *loyaltyService) SaveLoyaltySettings(ctx context.Context, orgID string, input usecase.SaveLoyaltyInput) (*entity.LoyaltySettings, error) {
	if err := validateLoyaltyInput(input); err != nil {
		return nil, err
	}

	settings := &entity.LoyaltySettings{
		OrgID:              orgID,
		Enabled:            input.Enabled,
		ProgramName:        input.ProgramName,
		PointsPerDollar:    input.PointsPerDollar,
		CentsPerPoint:      input.CentsPerPoint,
		MinPointsToRedeem:  input.MinPointsToRedeem,
		MaxPointsPerOrder:  input.MaxPointsPerOrder,
		TierInactivityDays: input.TierInactivityDays,
		UpdatedAt:          srv.now().UTC(),
	}
	for _, tier := range input.Tiers {
		settings.Tiers = append(settings.Tiers, entity.LoyaltyTier{
			Name:               tier.Name,
			RequiredSpendCents: tier.RequiredSpendCents,
			Multiplier:         tier.Multiplier,
			Benefits:           tier.Benefits,
		})
	}

	if err := srv.loyaltyRepo.SaveLoyaltySettings(ctx, settings); err != nil {
		return nil, errors.Wrap(err, "failed to save loyalty settings")
	}

	srv.log(ctx).Info("Loyalty settings saved",
		slog.String("org_id", orgID),
		slog.Bool("enabled", settings.Enabled),
		slog.Int("tiers", len(settings.Tiers)),
	)

	return settings, nil
}

func validateLoyaltyInput(input usecase.SaveLoyaltyInput) error {
	if input.ProgramName == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("program name is required")
	}
	if input.PointsPerDollar <= 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("points per dollar must be positive")
	}
	if input.CentsPerPoint <= 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("cents per point must be positive")
	}
	if input.MinPointsToRedeem < 0 || input.MaxPointsPerOrder < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("redemption bounds must not be negative")
	}
	if input.MaxPointsPerOrder > 0 && input.MinPointsToRedeem > input.MaxPointsPerOrder {
		return domainerrors.ErrValidationFailed.WrapMessage("min points to redeem exceeds max points per order")
	}
	if input.TierInactivityDays < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("tier inactivity days must not be negative")
	}

	if len(input.Tiers) == 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("at least one tier is required")
	}
	if input.Tiers[0].RequiredSpendCents != 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("the first tier must start at zero spend")
	}
	prev := int64(-1)
	for _, tier := range input.Tiers {
		if tier.Name == "" {
			return domainerrors.ErrValidationFailed.WrapMessage("tier name is required")
		}
		if tier.Multiplier <= 0 {
			return domainerrors.ErrValidationFailed.WrapMessage("tier multiplier must be positive")
		}
		if tier.RequiredSpendCents <= prev {
			return domainerrors.ErrValidationFailed.WrapMessage("tier spend thresholds must be strictly increasing")
		}
		prev = tier.RequiredSpendCents
	}

	return nil
}
