package impl

import (
	"context"
	"testing"

	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLoyaltyService(t *testing.T) (usecase.LoyaltyUsecase, *fakeLoyaltyRepo) {
	t.Helper()

	repo := newFakeLoyaltyRepo()
	service := NewLoyaltyService(LoyaltyServiceParams{
		LoyaltyRepo: repo,
		Logger:      newDiscardLogger(),
	})

	return service, repo
}

func validLoyaltyInput() usecase.SaveLoyaltyInput {
	return usecase.SaveLoyaltyInput{
		Enabled:           true,
		ProgramName:       "Green Leaf Rewards",
		PointsPerDollar:   2,
		CentsPerPoint:     1,
		MinPointsToRedeem: 200,
		MaxPointsPerOrder: 4000,
		Tiers: []usecase.LoyaltyTierInput{
			{Name: "Sprout", RequiredSpendCents: 0, Multiplier: 1},
			{Name: "Bloom", RequiredSpendCents: 75000, Multiplier: 1.5, Benefits: []string{"Birthday bonus"}},
		},
		TierInactivityDays: 90,
	}
}

func TestLoyaltyService_GetSettings_DefaultsWhenUnconfigured(t *testing.T) {
	service, _ := createTestLoyaltyService(t)

	settings, err := service.GetLoyaltySettings(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, "org-1", settings.OrgID)
	assert.True(t, settings.Enabled)
	assert.Equal(t, "Rewards Program", settings.ProgramName)
	assert.Equal(t, int64(1), settings.PointsPerDollar)
	assert.Equal(t, int64(100), settings.MinPointsToRedeem)
	require.Len(t, settings.Tiers, 4)
	assert.Equal(t, "Bronze", settings.Tiers[0].Name)
	assert.Zero(t, settings.Tiers[0].RequiredSpendCents)
	assert.Equal(t, "Platinum", settings.Tiers[3].Name)
	assert.Equal(t, float64(2), settings.Tiers[3].Multiplier)
}

func TestLoyaltyService_SaveSettings_Roundtrip(t *testing.T) {
	service, repo := createTestLoyaltyService(t)
	ctx := context.Background()

	saved, err := service.SaveLoyaltySettings(ctx, "org-1", validLoyaltyInput())
	require.NoError(t, err)
	assert.Equal(t, "org-1", saved.OrgID)
	assert.False(t, saved.UpdatedAt.IsZero())
	require.Contains(t, repo.settings, "org-1")

	got, err := service.GetLoyaltySettings(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Green Leaf Rewards", got.ProgramName)
	require.Len(t, got.Tiers, 2)
	assert.Equal(t, int64(75000), got.Tiers[1].RequiredSpendCents)
}

func TestLoyaltyService_SaveSettings_Rejections(t *testing.T) {
	service, _ := createTestLoyaltyService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*usecase.SaveLoyaltyInput)
	}{
		{"missing program name", func(in *usecase.SaveLoyaltyInput) { in.ProgramName = "" }},
		{"zero points per dollar", func(in *usecase.SaveLoyaltyInput) { in.PointsPerDollar = 0 }},
		{"negative cents per point", func(in *usecase.SaveLoyaltyInput) { in.CentsPerPoint = -1 }},
		{"min redeem above max per order", func(in *usecase.SaveLoyaltyInput) { in.MinPointsToRedeem = 5000 }},
		{"negative inactivity days", func(in *usecase.SaveLoyaltyInput) { in.TierInactivityDays = -1 }},
		{"no tiers", func(in *usecase.SaveLoyaltyInput) { in.Tiers = nil }},
		{"first tier above zero", func(in *usecase.SaveLoyaltyInput) { in.Tiers[0].RequiredSpendCents = 100 }},
		{"unnamed tier", func(in *usecase.SaveLoyaltyInput) { in.Tiers[1].Name = "" }},
		{"zero multiplier", func(in *usecase.SaveLoyaltyInput) { in.Tiers[1].Multiplier = 0 }},
		{"non-increasing thresholds", func(in *usecase.SaveLoyaltyInput) { in.Tiers[1].RequiredSpendCents = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validLoyaltyInput()
			tc.mutate(&input)

			_, err := service.SaveLoyaltySettings(ctx, "org-1", input)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}
}

func TestLoyaltyService_SaveSettings_DisabledProgramStillValidates(t *testing.T) {
	service, _ := createTestLoyaltyService(t)

	input := validLoyaltyInput()
	input.Enabled = false

	saved, err := service.SaveLoyaltySettings(context.Background(), "org-1", input)
	require.NoError(t, err)
	assert.False(t, saved.Enabled)
}
