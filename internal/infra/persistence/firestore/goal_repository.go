package firestore

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// goalRepository implements repository.GoalRepository.
type goalRepository struct {
	client *firestore.Client
}

// NewGoalRepository is the constructor for goalRepository.
func NewGoalRepository(client *firestore.Client) repository.GoalRepository {
	return &goalRepository{client: client}
}

// CreateGoal persists a new goal document.
func (repo *goalRepository) CreateGoal(ctx context.Context, goal *entity.GoalMetric) error {
	if _, err := repo.client.Collection(collGoals).Doc(goal.ID).Set(ctx, goal); err != nil {
		return errors.Wrap(err, "failed to create goal")
	}

	return nil
}

// FindGoalByID retrieves a goal by document ID.
func (repo *goalRepository) FindGoalByID(ctx context.Context, id string) (*entity.GoalMetric, error) {
	snap, err := repo.client.Collection(collGoals).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrGoalNotFound
		}

		return nil, errors.Wrap(err, "failed to find goal by ID")
	}

	var goal entity.GoalMetric
	if err := snap.DataTo(&goal); err != nil {
		return nil, errors.Wrap(err, "failed to decode goal")
	}

	return &goal, nil
}

// ListGoals retrieves all goals for an org.
func (repo *goalRepository) ListGoals(ctx context.Context, orgID string) ([]*entity.GoalMetric, error) {
	iter := repo.client.Collection(collGoals).
		Where("orgId", "==", orgID).
		Documents(ctx)
	defer iter.Stop()

	var goals []*entity.GoalMetric
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list goals")
		}

		var goal entity.GoalMetric
		if err := snap.DataTo(&goal); err != nil {
			return nil, errors.Wrap(err, "failed to decode goal")
		}
		goals = append(goals, &goal)
	}

	return goals, nil
}

// UpdateGoal overwrites an existing goal document.
func (repo *goalRepository) UpdateGoal(ctx context.Context, goal *entity.GoalMetric) error {
	if _, err := repo.client.Collection(collGoals).Doc(goal.ID).Set(ctx, goal); err != nil {
		return errors.Wrap(err, "failed to update goal")
	}

	return nil
}

// DeleteGoal removes a goal document.
func (repo *goalRepository) DeleteGoal(ctx context.Context, id string) error {
	if _, err := repo.client.Collection(collGoals).Doc(id).Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to delete goal")
	}

	return nil
}
