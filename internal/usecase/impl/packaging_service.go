package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// complianceChecks are the review points the agent is asked to grade.
var complianceChecks = []string{
	"child_resistant_notice",
	"thc_symbol",
	"health_warning",
}

const compliancePrompt = `You review cannabis packaging artwork for label compliance.
For each named check, answer whether the artwork passes, with a short note.
Respond with JSON: {"flags":[{"check":"...","passed":true,"note":"..."}],"summary":"..."}`

// agentReview is the JSON shape the agent is instructed to return.
type agentReview struct {
	Flags   []entity.ComplianceFlag `json:"flags"`
	Summary string                  `json:"summary"`
}

// packagingService implements the PackagingUsecase interface.
type packagingService struct {
	packagingRepo repository.PackagingRepository
	blobStore     service.BlobStore
	agent         service.AgentClient
	usage         usecase.UsageUsecase
	logger        *slog.Logger
	now           func() time.Time
}

// PackagingServiceParams holds dependencies for PackagingService, injected by Fx.
type PackagingServiceParams struct {
	fx.In

	PackagingRepo repository.PackagingRepository
	BlobStore     service.BlobStore
	Agent         service.AgentClient
	Usage         usecase.UsageUsecase
	Logger        *slog.Logger
}

// NewPackagingService is the constructor for packagingService. It receives all dependencies as interfaces.
func NewPackagingService(params PackagingServiceParams) usecase.PackagingUsecase {
	return &packagingService{
		packagingRepo: params.PackagingRepo,
		blobStore:     params.BlobStore,
		agent:         params.Agent,
		usage:         params.Usage,
		logger:        params.Logger,
		now:           time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *packagingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit stores the image and runs the agent compliance review.
func (srv *packagingService) Submit(ctx context.Context, orgID string, input usecase.SubmitPackagingInput) (*entity.PackagingAnalysis, error) {
	if len(input.Image) == 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("image is required")
	}

	if _, err := srv.usage.RecordUsage(ctx, orgID, entity.MetricAISessions, 1); err != nil {
		return nil, errors.Wrap(err, "failed to record packaging usage")
	}

	now := srv.now().UTC()
	analysis := &entity.PackagingAnalysis{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		BlobKey:   fmt.Sprintf("packaging/%s/%s", orgID, uuid.NewString()),
		Status:    entity.PackagingPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := srv.blobStore.Put(ctx, analysis.BlobKey, input.Image, input.ContentType); err != nil {
		return nil, errors.Wrap(err, "failed to store packaging image")
	}
	if err := srv.packagingRepo.CreateAnalysis(ctx, analysis); err != nil {
		return nil, errors.Wrap(err, "failed to create packaging analysis")
	}

	srv.review(ctx, analysis)

	if err := srv.packagingRepo.UpdateAnalysis(ctx, analysis); err != nil {
		return nil, errors.Wrap(err, "failed to update packaging analysis")
	}

	return analysis, nil
}

// review asks the agent for compliance flags and applies the outcome
// to the record. Failures mark the record failed with the message
// retained.
func (srv *packagingService) review(ctx context.Context, analysis *entity.PackagingAnalysis) {
	user := fmt.Sprintf("Checks: %v. Image stored at %s.", complianceChecks, analysis.BlobKey)

	raw, err := srv.agent.Complete(ctx, compliancePrompt, user)
	if err != nil {
		srv.fail(ctx, analysis, errors.Wrap(err, "agent review failed"))

		return
	}

	var review agentReview
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		srv.fail(ctx, analysis, errors.Wrap(err, "agent returned malformed review"))

		return
	}

	analysis.Status = entity.PackagingComplete
	analysis.Flags = review.Flags
	analysis.Summary = review.Summary
	analysis.UpdatedAt = srv.now().UTC()
}

func (srv *packagingService) fail(ctx context.Context, analysis *entity.PackagingAnalysis, err error) {
	analysis.Status = entity.PackagingFailed
	analysis.Error = err.Error()
	analysis.UpdatedAt = srv.now().UTC()

	srv.log(ctx).Error("Packaging review failed",
		slog.String("analysis_id", analysis.ID),
		slog.Any("error", err),
	)
}

// GetAnalysis retrieves one analysis, enforcing the org boundary.
func (srv *packagingService) GetAnalysis(ctx context.Context, orgID, analysisID string) (*entity.PackagingAnalysis, error) {
	analysis, err := srv.packagingRepo.FindAnalysisByID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisNotFound) {
			return nil, domainerrors.ErrAnalysisNotFound
		}

		return nil, errors.Wrap(err, "failed to load packaging analysis")
	}
	if analysis.OrgID != orgID {
		return nil, domainerrors.ErrTenantMismatch
	}

	return analysis, nil
}

// ListAnalyses retrieves the org's analyses, newest first.
func (srv *packagingService) ListAnalyses(ctx context.Context, orgID string) ([]*entity.PackagingAnalysis, error) {
	analyses, err := srv.packagingRepo.ListAnalyses(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list packaging analyses")
	}

	return analyses, nil
}
