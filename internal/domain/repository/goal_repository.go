package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// ErrGoalNotFound is returned when a goal document does not exist.
var ErrGoalNotFound = errors.New("goal not found")

// GoalRepository defines goal metric document operations.
type GoalRepository interface {
	// CreateGoal persists a new goal document.
	CreateGoal(ctx context.Context, goal *entity.GoalMetric) error

	// FindGoalByID retrieves a goal by document ID.
	FindGoalByID(ctx context.Context, id string) (*entity.GoalMetric, error)

	// ListGoals retrieves all goals for an org.
	ListGoals(ctx context.Context, orgID string) ([]*entity.GoalMetric, error)

	// UpdateGoal overwrites an existing goal document.
	UpdateGoal(ctx context.Context, goal *entity.GoalMetric) error

	// DeleteGoal removes a goal document.
	DeleteGoal(ctx context.Context, id string) error
}
