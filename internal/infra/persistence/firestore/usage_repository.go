package firestore

import (
	"context"
	"time"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// usageRepository implements repository.UsageRepository.
type usageRepository struct {
	client *firestore.Client
}

// NewUsageRepository is the constructor for usageRepository.
func NewUsageRepository(client *firestore.Client) repository.UsageRepository {
	return &usageRepository{client: client}
}

// FindUsage retrieves the counters for an org and period.
func (repo *usageRepository) FindUsage(ctx context.Context, orgID, period string) (*entity.UsageRecord, error) {
	docID := entity.UsageDocID(orgID, period)
	snap, err := repo.client.Collection(collUsage).Doc(docID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrUsageNotFound
		}

		return nil, errors.Wrap(err, "failed to find usage record")
	}

	var record entity.UsageRecord
	if err := snap.DataTo(&record); err != nil {
		return nil, errors.Wrap(err, "failed to decode usage record")
	}

	return &record, nil
}

// IncrementUsage transactionally adds n to a metric's counter, creating
// the period document on first write. Returns the value after the
// increment.
func (repo *usageRepository) IncrementUsage(ctx context.Context, orgID, period string, metric entity.UsageMetric, n int64) (int64, error) {
	ref := repo.client.Collection(collUsage).Doc(entity.UsageDocID(orgID, period))

	var updated int64
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		record := entity.UsageRecord{
			OrgID:    orgID,
			Period:   period,
			Counters: map[entity.UsageMetric]int64{},
		}

		snap, err := tx.Get(ref)
		if err != nil && !notFound(err) {
			return err
		}
		if err == nil {
			if err := snap.DataTo(&record); err != nil {
				return err
			}
			if record.Counters == nil {
				record.Counters = map[entity.UsageMetric]int64{}
			}
		}

		record.Counters[metric] += n
		record.UpdatedAt = time.Now().UTC()
		updated = record.Counters[metric]

		return tx.Set(ref, &record)
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to increment usage counter")
	}

	return updated, nil
}
