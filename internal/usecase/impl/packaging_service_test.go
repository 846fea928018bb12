package impl

import (
	"context"
	"testing"

	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPackagingService(t *testing.T) (
	usecase.PackagingUsecase,
	*fakePackagingRepo,
	*fakeBlobStore,
	*fakeAgent,
	*fakeUsageUsecase,
) {
	t.Helper()

	packagingRepo := newFakePackagingRepo()
	blobStore := newFakeBlobStore()
	agent := &fakeAgent{reply: `{"flags":[{"check":"thc_symbol","passed":false,"note":"symbol missing"}],"summary":"one failure"}`}
	usageUC := &fakeUsageUsecase{}

	service := NewPackagingService(PackagingServiceParams{
		PackagingRepo: packagingRepo,
		BlobStore:     blobStore,
		Agent:         agent,
		Usage:         usageUC,
		Logger:        newDiscardLogger(),
	})

	return service, packagingRepo, blobStore, agent, usageUC
}

func TestPackagingService_Submit(t *testing.T) {
	service, packagingRepo, blobStore, agent, usageUC := createTestPackagingService(t)
	ctx := context.Background()

	image := []byte{0x89, 0x50, 0x4E, 0x47}
	analysis, err := service.Submit(ctx, "org-1", usecase.SubmitPackagingInput{
		Image:       image,
		ContentType: "image/png",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PackagingComplete, analysis.Status)
	require.Len(t, analysis.Flags, 1)
	assert.Equal(t, "thc_symbol", analysis.Flags[0].Check)
	assert.False(t, analysis.Flags[0].Passed)
	assert.Equal(t, "one failure", analysis.Summary)
	assert.Regexp(t, `^packaging/org-1/`, analysis.BlobKey)

	// The image landed in blob storage and the record was persisted.
	stored, err := blobStore.Get(ctx, analysis.BlobKey)
	require.NoError(t, err)
	assert.Equal(t, image, stored)

	persisted, err := packagingRepo.FindAnalysisByID(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PackagingComplete, persisted.Status)

	assert.Equal(t, 1, agent.calls)
	assert.Equal(t, []entity.UsageMetric{entity.MetricAISessions}, usageUC.recorded)
}

func TestPackagingService_Submit_EmptyImage(t *testing.T) {
	service, _, _, _, usageUC := createTestPackagingService(t)

	_, err := service.Submit(context.Background(), "org-1", usecase.SubmitPackagingInput{})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, usageUC.recorded)
}

func TestPackagingService_Submit_AgentFailureMarksFailed(t *testing.T) {
	service, packagingRepo, _, agent, _ := createTestPackagingService(t)
	agent.err = assert.AnError

	analysis, err := service.Submit(context.Background(), "org-1", usecase.SubmitPackagingInput{
		Image: []byte{1}, ContentType: "image/png",
	})
	require.NoError(t, err, "agent failures are recorded, not returned")

	assert.Equal(t, entity.PackagingFailed, analysis.Status)
	assert.NotEmpty(t, analysis.Error)

	persisted, err := packagingRepo.FindAnalysisByID(context.Background(), analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PackagingFailed, persisted.Status)
}

func TestPackagingService_Submit_MalformedReviewMarksFailed(t *testing.T) {
	service, _, _, agent, _ := createTestPackagingService(t)
	agent.reply = "sorry, I can't produce JSON today"

	analysis, err := service.Submit(context.Background(), "org-1", usecase.SubmitPackagingInput{
		Image: []byte{1}, ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PackagingFailed, analysis.Status)
	assert.Contains(t, analysis.Error, "malformed")
}

func TestPackagingService_Submit_UsageFailureAborts(t *testing.T) {
	service, packagingRepo, blobStore, _, usageUC := createTestPackagingService(t)
	usageUC.err = assert.AnError

	_, err := service.Submit(context.Background(), "org-1", usecase.SubmitPackagingInput{
		Image: []byte{1}, ContentType: "image/png",
	})
	require.Error(t, err)
	assert.Empty(t, blobStore.blobs)
	assert.Empty(t, packagingRepo.analyses)
}

func TestPackagingService_GetAnalysis_TenantBoundary(t *testing.T) {
	service, packagingRepo, _, _, _ := createTestPackagingService(t)
	ctx := context.Background()

	require.NoError(t, packagingRepo.CreateAnalysis(ctx, &entity.PackagingAnalysis{
		ID: "an-1", OrgID: "org-1", Status: entity.PackagingComplete,
	}))

	_, err := service.GetAnalysis(ctx, "org-2", "an-1")
	assert.ErrorIs(t, err, domainerrors.ErrTenantMismatch)

	_, err = service.GetAnalysis(ctx, "org-1", "missing")
	assert.ErrorIs(t, err, domainerrors.ErrAnalysisNotFound)

	analysis, err := service.GetAnalysis(ctx, "org-1", "an-1")
	require.NoError(t, err)
	assert.Equal(t, "an-1", analysis.ID)
}
