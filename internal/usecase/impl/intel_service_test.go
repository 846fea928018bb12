package impl

import (
	"context"
	"testing"
	"time"

	"canopy/config"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/service"
	"canopy/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intelFixture struct {
	orgRepo       *fakeOrgRepo
	orderRepo     *fakeOrderRepo
	retailerRepo  *fakeRetailerRepo
	intelRepo     *fakeIntelRepo
	catalogClient *fakeCatalogClient
	emailSender   *fakeEmailSender
	usageUC       *fakeUsageUsecase
}

func createTestIntelService(t *testing.T) (usecase.IntelUsecase, *intelFixture) {
	t.Helper()

	f := &intelFixture{
		orgRepo:   newFakeOrgRepo(),
		orderRepo: newFakeOrderRepo(),
		retailerRepo: newFakeRetailerRepo(
			&entity.Retailer{ID: "ret-1", OrgID: "org-1", CannMenusKey: "greenleaf-main", Active: true},
			&entity.Retailer{ID: "ret-2", OrgID: "org-1", CannMenusKey: "greenleaf-downtown", Active: true},
			&entity.Retailer{ID: "ret-untracked", OrgID: "org-2", Active: true},
		),
		intelRepo: &fakeIntelRepo{},
		catalogClient: &fakeCatalogClient{menus: map[string][]service.CatalogProduct{
			"greenleaf-main": {
				{ID: "c1", Category: "flower", PriceCents: 3000},
				{ID: "c2", Category: "flower", PriceCents: 5000},
				{ID: "c3", Category: "edible", PriceCents: 2000},
			},
			"greenleaf-downtown": {
				{ID: "c4", Category: "flower", PriceCents: 4000},
			},
		}},
		emailSender: &fakeEmailSender{},
		usageUC:     &fakeUsageUsecase{summaries: map[string]*entity.UsageSummary{}},
	}

	svc := NewIntelService(IntelServiceParams{
		OrgRepo:       f.orgRepo,
		OrderRepo:     f.orderRepo,
		RetailerRepo:  f.retailerRepo,
		IntelRepo:     f.intelRepo,
		CatalogClient: f.catalogClient,
		EmailSender:   f.emailSender,
		Usage:         f.usageUC,
		Config:        &config.Config{Email: &config.EmailConfig{Operator: "ops@canopy.example"}},
		Logger:        newDiscardLogger(),
	})

	return svc, f
}

func TestIntelService_SnapshotCompetitors(t *testing.T) {
	svc, f := createTestIntelService(t)

	snapshot, err := svc.SnapshotCompetitors(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, "org-1", snapshot.OrgID)
	assert.Contains(t, snapshot.RetailerKey, "greenleaf-main")
	assert.Contains(t, snapshot.RetailerKey, "greenleaf-downtown")

	// Categories come back sorted.
	require.Len(t, snapshot.Categories, 2)
	edible := snapshot.Categories[0]
	flower := snapshot.Categories[1]

	assert.Equal(t, "edible", edible.Category)
	assert.Equal(t, int64(2000), edible.MinCents)
	assert.Equal(t, int64(2000), edible.MaxCents)
	assert.Equal(t, 1, edible.Samples)

	assert.Equal(t, "flower", flower.Category)
	assert.Equal(t, int64(3000), flower.MinCents)
	assert.Equal(t, int64(4000), flower.AvgCents)
	assert.Equal(t, int64(5000), flower.MaxCents)
	assert.Equal(t, 3, flower.Samples)

	// Each snapshot consumes a competitors unit and is persisted.
	assert.Equal(t, []entity.UsageMetric{entity.MetricCompetitors}, f.usageUC.recorded)
	assert.Len(t, f.intelRepo.snapshots, 1)
}

func TestIntelService_SnapshotCompetitors_NoTrackedRetailers(t *testing.T) {
	svc, f := createTestIntelService(t)

	_, err := svc.SnapshotCompetitors(context.Background(), "org-2")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, f.usageUC.recorded)
}

func TestIntelService_SnapshotCompetitors_PartialMenuFailure(t *testing.T) {
	svc, f := createTestIntelService(t)
	delete(f.catalogClient.menus, "greenleaf-downtown")

	// One menu missing still yields a snapshot from the other.
	snapshot, err := svc.SnapshotCompetitors(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Len(t, snapshot.Categories, 2)
}

func TestIntelService_PredictChurn(t *testing.T) {
	svc, f := createTestIntelService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	healthyUsage := &entity.UsageSummary{Metrics: []entity.MetricUsage{
		{Metric: entity.MetricEmail, Used: 120},
	}}

	// Active org, ordered yesterday, uses the platform: low risk.
	require.NoError(t, f.orgRepo.CreateOrg(ctx, &entity.Org{ID: "org-healthy", Active: true}))
	require.NoError(t, f.orderRepo.CreateOrder(ctx, &entity.Order{
		ID: "o-1", OrgID: "org-healthy", CreatedAt: now.Add(-24 * time.Hour),
	}))
	f.usageUC.summaries["org-healthy"] = healthyUsage

	// No orders ever and no usage this period: maximum risk.
	require.NoError(t, f.orgRepo.CreateOrg(ctx, &entity.Org{ID: "org-ghost", Active: true}))

	// Stale orders but still using the platform: 0.7, under the bar.
	require.NoError(t, f.orgRepo.CreateOrg(ctx, &entity.Org{ID: "org-stale", Active: true}))
	require.NoError(t, f.orderRepo.CreateOrder(ctx, &entity.Order{
		ID: "o-2", OrgID: "org-stale", CreatedAt: now.Add(-90 * 24 * time.Hour),
	}))
	f.usageUC.summaries["org-stale"] = healthyUsage

	// Inactive orgs are not scored.
	require.NoError(t, f.orgRepo.CreateOrg(ctx, &entity.Org{ID: "org-closed", Active: false}))

	report, err := svc.PredictChurn(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scored)
	require.Len(t, report.AtRisk, 1)
	assert.Equal(t, "org-ghost", report.AtRisk[0].OrgID)
	assert.InDelta(t, 1.0, report.AtRisk[0].Score, 0.001)
	assert.Contains(t, report.AtRisk[0].Reasons, "no orders on record")
	assert.Contains(t, report.AtRisk[0].Reasons, "no platform usage this period")

	byOrg := map[string]*entity.ChurnScore{}
	for _, score := range f.intelRepo.scores {
		byOrg[score.OrgID] = score
	}
	require.Len(t, byOrg, 3)
	assert.Less(t, byOrg["org-healthy"].Score, 0.1)
	assert.InDelta(t, 0.7, byOrg["org-stale"].Score, 0.001)
	assert.False(t, byOrg["org-stale"].AtRisk)

	// The operator digest went out.
	require.Len(t, f.emailSender.sent, 1)
	assert.Equal(t, "ops@canopy.example", f.emailSender.sent[0].To)
	assert.Contains(t, f.emailSender.sent[0].TextBody, "org-ghost")
}

func TestIntelService_PredictChurn_NoAtRiskNoDigest(t *testing.T) {
	svc, f := createTestIntelService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, f.orgRepo.CreateOrg(ctx, &entity.Org{ID: "org-healthy", Active: true}))
	require.NoError(t, f.orderRepo.CreateOrder(ctx, &entity.Order{
		ID: "o-1", OrgID: "org-healthy", CreatedAt: now.Add(-time.Hour),
	}))
	f.usageUC.summaries["org-healthy"] = &entity.UsageSummary{Metrics: []entity.MetricUsage{
		{Metric: entity.MetricSMS, Used: 10},
	}}

	report, err := svc.PredictChurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scored)
	assert.Empty(t, report.AtRisk)
	assert.Empty(t, f.emailSender.sent)
}
