package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// ErrUsageNotFound is returned when a period's usage document does not
// exist. Callers treat it as zero counters, never as a failure.
var ErrUsageNotFound = errors.New("usage record not found")

// UsageRepository defines the per-period counter operations.
type UsageRepository interface {
	// FindUsage retrieves the counters for an org and period.
	FindUsage(ctx context.Context, orgID, period string) (*entity.UsageRecord, error)

	// IncrementUsage transactionally adds n to a metric's counter,
	// creating the period document on first write. Returns the counter
	// value after the increment.
	IncrementUsage(ctx context.Context, orgID, period string, metric entity.UsageMetric, n int64) (int64, error)
}
