package firestore

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// playbookRepository implements repository.PlaybookRepository.
type playbookRepository struct {
	client *firestore.Client
}

// NewPlaybookRepository is the constructor for playbookRepository.
func NewPlaybookRepository(client *firestore.Client) repository.PlaybookRepository {
	return &playbookRepository{client: client}
}

// CreatePlaybook persists a new playbook document.
func (repo *playbookRepository) CreatePlaybook(ctx context.Context, playbook *entity.Playbook) error {
	if _, err := repo.client.Collection(collPlaybooks).Doc(playbook.ID).Set(ctx, playbook); err != nil {
		return errors.Wrap(err, "failed to create playbook")
	}

	return nil
}

// FindPlaybookByID retrieves a playbook by document ID.
func (repo *playbookRepository) FindPlaybookByID(ctx context.Context, id string) (*entity.Playbook, error) {
	snap, err := repo.client.Collection(collPlaybooks).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrPlaybookNotFound
		}

		return nil, errors.Wrap(err, "failed to find playbook by ID")
	}

	var playbook entity.Playbook
	if err := snap.DataTo(&playbook); err != nil {
		return nil, errors.Wrap(err, "failed to decode playbook")
	}

	return &playbook, nil
}

// ListPlaybooks retrieves all playbooks for an org.
func (repo *playbookRepository) ListPlaybooks(ctx context.Context, orgID string) ([]*entity.Playbook, error) {
	iter := repo.client.Collection(collPlaybooks).
		Where("orgId", "==", orgID).
		Documents(ctx)
	defer iter.Stop()

	var playbooks []*entity.Playbook
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list playbooks")
		}

		var playbook entity.Playbook
		if err := snap.DataTo(&playbook); err != nil {
			return nil, errors.Wrap(err, "failed to decode playbook")
		}
		playbooks = append(playbooks, &playbook)
	}

	return playbooks, nil
}

// UpdatePlaybook overwrites an existing playbook document.
func (repo *playbookRepository) UpdatePlaybook(ctx context.Context, playbook *entity.Playbook) error {
	if _, err := repo.client.Collection(collPlaybooks).Doc(playbook.ID).Set(ctx, playbook); err != nil {
		return errors.Wrap(err, "failed to update playbook")
	}

	return nil
}

// DeletePlaybook removes a playbook document.
func (repo *playbookRepository) DeletePlaybook(ctx context.Context, id string) error {
	if _, err := repo.client.Collection(collPlaybooks).Doc(id).Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to delete playbook")
	}

	return nil
}

// RecordRun persists the outcome of one execution and stamps the
// playbook's lastRunAt.
func (repo *playbookRepository) RecordRun(ctx context.Context, run *entity.PlaybookRun) error {
	if _, err := repo.client.Collection(collPlaybookRuns).Doc(run.ID).Set(ctx, run); err != nil {
		return errors.Wrap(err, "failed to record playbook run")
	}

	_, err := repo.client.Collection(collPlaybooks).Doc(run.PlaybookID).Update(ctx, []firestore.Update{
		{Path: "lastRunAt", Value: run.FinishedAt},
	})
	if err != nil {
		if notFound(err) {
			return repository.ErrPlaybookNotFound
		}

		return errors.Wrap(err, "failed to stamp playbook last run")
	}

	return nil
}
