package usecase

import (
	"context"

	"canopy/internal/domain/entity"
)

// SaveGoalInput defines the data required to create or update a goal.
type SaveGoalInput struct {
	Label    string  `json:"label"`
	Unit     string  `json:"unit,omitempty"`
	Baseline float64 `json:"baseline"`
	Target   float64 `json:"target"`
	Current  float64 `json:"current"`
	DueAt    string  `json:"due_at,omitempty"` // RFC3339, empty for no deadline
}

// GoalWithProgress pairs a goal with its computed completion.
type GoalWithProgress struct {
	Goal     *entity.GoalMetric `json:"goal"`
	Progress float64            `json:"progress"`
}

// GoalUsecase defines the interface for goal tracking operations.
type GoalUsecase interface {
	// CreateGoal adds a goal to the org.
	CreateGoal(ctx context.Context, orgID string, input SaveGoalInput) (*entity.GoalMetric, error)

	// GetGoal retrieves one goal with progress, enforcing the org boundary.
	GetGoal(ctx context.Context, orgID, goalID string) (*GoalWithProgress, error)

	// ListGoals retrieves the org's goals with progress.
	ListGoals(ctx context.Context, orgID string) ([]*GoalWithProgress, error)

	// UpdateGoal replaces a goal, enforcing the org boundary.
	UpdateGoal(ctx context.Context, orgID, goalID string, input SaveGoalInput) (*entity.GoalMetric, error)

	// RecordProgress sets the goal's current value.
	RecordProgress(ctx context.Context, orgID, goalID string, current float64) (*GoalWithProgress, error)

	// DeleteGoal removes a goal, enforcing the org boundary.
	DeleteGoal(ctx context.Context, orgID, goalID string) error
}
