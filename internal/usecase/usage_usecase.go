// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"canopy/internal/domain/entity"
)

// RecordUsageOutput returns the counter state after an increment.
type RecordUsageOutput struct {
	Metric entity.UsageMetric `json:"metric"`
	Used   int64              `json:"used"`
	Limit  int64              `json:"limit"`
	// CrossedLimit is true when this increment pushed the counter over
	// the tier allocation.
	CrossedLimit bool `json:"crossed_limit"`
}

// UsageUsecase defines the interface for usage metering operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UsageUsecase interface {
	// GetUsageWithLimits computes the full metering report for the
	// org's current billing period.
	GetUsageWithLimits(ctx context.Context, orgID string) (*entity.UsageSummary, error)

	// RecordUsage increments a metric counter for the current period.
	RecordUsage(ctx context.Context, orgID string, metric entity.UsageMetric, n int64) (*RecordUsageOutput, error)
}
