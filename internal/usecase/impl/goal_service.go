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

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// goalService implements the GoalUsecase interface.
type goalService struct {
	goalRepo repository.GoalRepository
	logger   *slog.Logger
	now      func() time.Time
}

// GoalServiceParams holds dependencies for GoalService, injected by Fx.
type GoalServiceParams struct {
	fx.In

	GoalRepo repository.GoalRepository
	Logger   *slog.Logger
}

// NewGoalService is the constructor for goalService. It receives all dependencies as interfaces.
func NewGoalService(params GoalServiceParams) usecase.GoalUsecase {
	return &goalService{
		goalRepo: params.GoalRepo,
		logger:   params.Logger,
		now:      time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *goalService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func buildGoal(orgID string, input usecase.SaveGoalInput, now time.Time) (*entity.GoalMetric, error) {
	goal := &entity.GoalMetric{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Label:     input.Label,
		Unit:      input.Unit,
		Baseline:  input.Baseline,
		Target:    input.Target,
		Current:   input.Current,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.DueAt != "" {
		due, err := time.Parse(time.RFC3339, input.DueAt)
		if err != nil {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("due_at must be RFC3339")
		}
		goal.DueAt = &due
	}

	return goal, nil
}

// CreateGoal adds a goal to the org.
func (srv *goalService) CreateGoal(ctx context.Context, orgID string, input usecase.SaveGoalInput) (*entity.GoalMetric, error) {
	if input.Label == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("goal label is required")
	}

	goal, err := buildGoal(orgID, input, srv.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := srv.goalRepo.CreateGoal(ctx, goal); err != nil {
		return nil, errors.Wrap(err, "failed to create goal")
	}

	srv.log(ctx).Info("Goal created",
		slog.String("goal_id", goal.ID),
		slog.String("org_id", orgID),
	)

	return goal, nil
}

// findOrgGoal loads a goal and enforces the org boundary.
func (srv *goalService) findOrgGoal(ctx context.Context, orgID, goalID string) (*entity.GoalMetric, error) {
	goal, err := srv.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, domainerrors.ErrGoalNotFound
		}

		return nil, errors.Wrap(err, "failed to load goal")
	}
	if goal.OrgID != orgID {
		return nil, domainerrors.ErrTenantMismatch
	}

	return goal, nil
}

// GetGoal retrieves one goal with progress, enforcing the org boundary.
func (srv *goalService) GetGoal(ctx context.Context, orgID, goalID string) (*usecase.GoalWithProgress, error) {
	goal, err := srv.findOrgGoal(ctx, orgID, goalID)
	if err != nil {
		return nil, err
	}

	return &usecase.GoalWithProgress{Goal: goal, Progress: goal.Progress()}, nil
}

// ListGoals retrieves the org's goals with progress.
func (srv *goalService) ListGoals(ctx context.Context, orgID string) ([]*usecase.GoalWithProgress, error) {
	goals, err := srv.goalRepo.ListGoals(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list goals")
	}

	out := make([]*usecase.GoalWithProgress, 0, len(goals))
	for _, goal := range goals {
		out = append(out, &usecase.GoalWithProgress{Goal: goal, Progress: goal.Progress()})
	}

	return out, nil
}

// UpdateGoal replaces a goal, enforcing the org boundary.
func (srv *goalService) UpdateGoal(ctx context.Context, orgID, goalID string, input usecase.SaveGoalInput) (*entity.GoalMetric, error) {
	goal, err := srv.findOrgGoal(ctx, orgID, goalID)
	if err != nil {
		return nil, err
	}

	updated, err := buildGoal(orgID, input, srv.now().UTC())
	if err != nil {
		return nil, err
	}
	updated.ID = goal.ID
	updated.CreatedAt = goal.CreatedAt

	if err := srv.goalRepo.UpdateGoal(ctx, updated); err != nil {
		return nil, errors.Wrap(err, "failed to update goal")
	}

	return updated, nil
}

// RecordProgress sets the goal's current value.
func (srv *goalService) RecordProgress(ctx context.Context, orgID, goalID string, current float64) (*usecase.GoalWithProgress, error) {
	goal, err := srv.findOrgGoal(ctx, orgID, goalID)
	if err != nil {
		return nil, err
	}

	goal.Current = current
	goal.UpdatedAt = srv.now().UTC()

	if err := srv.goalRepo.UpdateGoal(ctx, goal); err != nil {
		return nil, errors.Wrap(err, "failed to record goal progress")
	}

	return &usecase.GoalWithProgress{Goal: goal, Progress: goal.Progress()}, nil
}

// DeleteGoal removes a goal, enforcing the org boundary.
func (srv *goalService) DeleteGoal(ctx context.Context, orgID, goalID string) error {
	if _, err := srv.findOrgGoal(ctx, orgID, goalID); err != nil {
		return err
	}

	if err := srv.goalRepo.DeleteGoal(ctx, goalID); err != nil {
		return errors.Wrap(err, "failed to delete goal")
	}

	return nil
}
