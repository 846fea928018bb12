package firestore

import (
	"context"
	"fmt"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// intelRepository implements repository.IntelRepository.
type intelRepository struct {
	client *firestore.Client
}

// NewIntelRepository is the constructor for intelRepository.
func NewIntelRepository(client *firestore.Client) repository.IntelRepository {
	return &intelRepository{client: client}
}

// SaveSnapshot persists a competitor pricing snapshot.
func (repo *intelRepository) SaveSnapshot(ctx context.Context, snapshot *entity.CompetitorSnapshot) error {
	if _, err := repo.client.Collection(collIntel).Doc(snapshot.ID).Set(ctx, snapshot); err != nil {
		return errors.Wrap(err, "failed to save competitor snapshot")
	}

	return nil
}

// ListSnapshots retrieves an org's snapshots, newest first.
func (repo *intelRepository) ListSnapshots(ctx context.Context, orgID string, limit int) ([]*entity.CompetitorSnapshot, error) {
	query := repo.client.Collection(collIntel).
		Where("orgId", "==", orgID).
		OrderBy("capturedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var snapshots []*entity.CompetitorSnapshot
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list competitor snapshots")
		}

		var snapshot entity.CompetitorSnapshot
		if err := snap.DataTo(&snapshot); err != nil {
			return nil, errors.Wrap(err, "failed to decode competitor snapshot")
		}
		snapshots = append(snapshots, &snapshot)
	}

	return snapshots, nil
}

// SaveChurnScores persists the nightly churn scores in one batch. Each
// score is keyed by org and scoring date so reruns overwrite.
func (repo *intelRepository) SaveChurnScores(ctx context.Context, scores []*entity.ChurnScore) error {
	writer := repo.client.BulkWriter(ctx)
	for _, score := range scores {
		docID := fmt.Sprintf("%s_%s", score.OrgID, score.ScoredAt.UTC().Format("2006-01-02"))
		if _, err := writer.Set(repo.client.Collection(collChurn).Doc(docID), score); err != nil {
			return errors.Wrap(err, "failed to queue churn score")
		}
	}
	writer.End()

	return nil
}
