package firestore

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// packagingRepository implements repository.PackagingRepository.
type packagingRepository struct {
	client *firestore.Client
}

// NewPackagingRepository is the constructor for packagingRepository.
func NewPackagingRepository(client *firestore.Client) repository.PackagingRepository {
	return &packagingRepository{client: client}
}

// CreateAnalysis persists a new analysis record.
func (repo *packagingRepository) CreateAnalysis(ctx context.Context, analysis *entity.PackagingAnalysis) error {
	if _, err := repo.client.Collection(collPackaging).Doc(analysis.ID).Set(ctx, analysis); err != nil {
		return errors.Wrap(err, "failed to create packaging analysis")
	}

	return nil
}

// FindAnalysisByID retrieves an analysis by document ID.
func (repo *packagingRepository) FindAnalysisByID(ctx context.Context, id string) (*entity.PackagingAnalysis, error) {
	snap, err := repo.client.Collection(collPackaging).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrAnalysisNotFound
		}

		return nil, errors.Wrap(err, "failed to find packaging analysis")
	}

	var analysis entity.PackagingAnalysis
	if err := snap.DataTo(&analysis); err != nil {
		return nil, errors.Wrap(err, "failed to decode packaging analysis")
	}

	return &analysis, nil
}

// ListAnalyses retrieves all analyses for an org, newest first.
func (repo *packagingRepository) ListAnalyses(ctx context.Context, orgID string) ([]*entity.PackagingAnalysis, error) {
	iter := repo.client.Collection(collPackaging).
		Where("orgId", "==", orgID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var analyses []*entity.PackagingAnalysis
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list packaging analyses")
		}

		var analysis entity.PackagingAnalysis
		if err := snap.DataTo(&analysis); err != nil {
			return nil, errors.Wrap(err, "failed to decode packaging analysis")
		}
		analyses = append(analyses, &analysis)
	}

	return analyses, nil
}

// UpdateAnalysis overwrites an existing analysis record.
func (repo *packagingRepository) UpdateAnalysis(ctx context.Context, analysis *entity.PackagingAnalysis) error {
	if _, err := repo.client.Collection(collPackaging).Doc(analysis.ID).Set(ctx, analysis); err != nil {
		return errors.Wrap(err, "failed to update packaging analysis")
	}

	return nil
}
