// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"canopy/config"
	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/infra/metrics"
	"canopy/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// usageService implements the UsageUsecase interface.
type usageService struct {
	orgRepo         repository.OrgRepository
	tierRepo        repository.TierRepository
	usageRepo       repository.UsageRepository
	publisher       service.EventPublisher
	emailSender     service.EmailSender
	atRiskThreshold float64
	logger          *slog.Logger
	now             func() time.Time
}

// UsageServiceParams holds dependencies for UsageService, injected by Fx.
type UsageServiceParams struct {
	fx.In

	OrgRepo   repository.OrgRepository
	TierRepo  repository.TierRepository
	UsageRepo   repository.UsageRepository
	Publisher   service.EventPublisher
	EmailSender service.EmailSender
	Config      *config.Config
	Logger      *slog.Logger
}

// NewUsageService is the constructor for usageService. It receives all dependencies as interfaces.
func NewUsageService(params UsageServiceParams) usecase.UsageUsecase {
	threshold := 80.0
	if params.Config != nil && params.Config.Billing != nil && params.Config.Billing.AtRiskThreshold > 0 {
		threshold = params.Config.Billing.AtRiskThreshold
	}

	return &usageService{
		orgRepo:         params.OrgRepo,
		tierRepo:        params.TierRepo,
		usageRepo:       params.UsageRepo,
		publisher:       params.Publisher,
		emailSender:     params.EmailSender,
		atRiskThreshold: threshold,
		logger:          params.Logger,
		now:             time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *usageService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// resolveTier loads the org's tier, falling back to the base tier when
// the org has none configured or the tier document is missing.
func (srv *usageService) resolveTier(ctx context.Context, org *entity.Org) *entity.Tier {
	if org.TierID == "" {
		return entity.BaseTier()
	}

	tier, err := srv.tierRepo.FindTierByID(ctx, org.TierID)
	if err != nil {
		srv.log(ctx).Warn("Tier lookup failed, using base tier",
			slog.String("org_id", org.ID),
			slog.String("tier_id", org.TierID),
			slog.Any("error", err),
		)

		return entity.BaseTier()
	}

	return tier
}

// GetUsageWithLimits computes the full metering report for the org's
// current billing period.
func (srv *usageService) GetUsageWithLimits(ctx context.Context, orgID string) (*entity.UsageSummary, error) {
	org, err := srv.orgRepo.FindOrgByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrOrgNotFound) {
			return nil, domainerrors.ErrOrgNotFound
		}

		return nil, errors.Wrap(err, "failed to load org for usage report")
	}

	tier := srv.resolveTier(ctx, org)
	period := entity.PeriodOf(srv.now())

	record, err := srv.usageRepo.FindUsage(ctx, orgID, period)
	if err != nil && !errors.Is(err, repository.ErrUsageNotFound) {
		return nil, errors.Wrap(err, "failed to load usage record")
	}

	counters := map[entity.UsageMetric]int64{}
	if record != nil {
		counters = record.Counters
	}

	summary := &entity.UsageSummary{
		OrgID:             orgID,
		Period:            period,
		TierID:            tier.ID,
		TierName:          tier.Name,
		MonthlyPriceCents: tier.MonthlyPriceCents,
	}

	for _, metric := range entity.AllMetrics {
		used := counters[metric]
		limit := tier.Limits[metric]

		var percent float64
		if limit > 0 {
			percent = float64(used) / float64(limit) * 100
		}

		overageUnits := used - limit
		if overageUnits < 0 {
			overageUnits = 0
		}
		overageCents := overageUnits * tier.OverageRates[metric]

		summary.Metrics = append(summary.Metrics, entity.MetricUsage{
			Metric:         metric,
			Used:           used,
			Limit:          limit,
			PercentOfLimit: percent,
			AtRisk:         percent >= srv.atRiskThreshold,
			OverLimit:      used > limit,
			OverageUnits:   overageUnits,
			OverageCents:   overageCents,
		})
		summary.OverageCents += overageCents
	}

	summary.ProjectedBillCents = summary.MonthlyPriceCents + summary.OverageCents

	return summary, nil
}

// RecordUsage increments a metric counter for the current period.
func (srv *usageService) RecordUsage(ctx context.Context, orgID string, metric entity.UsageMetric, n int64) (*usecase.RecordUsageOutput, error) {
	if !entity.KnownMetric(metric) {
		return nil, domainerrors.ErrUnknownMetric.WrapMessage("unknown usage metric: " + string(metric))
	}
	if n <= 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("usage increment must be positive")
	}

	org, err := srv.orgRepo.FindOrgByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrOrgNotFound) {
			return nil, domainerrors.ErrOrgNotFound
		}

		return nil, errors.Wrap(err, "failed to load org for usage increment")
	}

	tier := srv.resolveTier(ctx, org)
	period := entity.PeriodOf(srv.now())

	used, err := srv.usageRepo.IncrementUsage(ctx, orgID, period, metric, n)
	if err != nil {
		return nil, errors.Wrap(err, "failed to increment usage counter")
	}

	limit := tier.Limits[metric]
	crossed := used > limit && used-n <= limit

	if limit > 0 && !crossed {
		before := float64(used-n) / float64(limit) * 100
		after := float64(used) / float64(limit) * 100
		if after >= srv.atRiskThreshold && before < srv.atRiskThreshold {
			srv.sendAtRiskWarning(ctx, org, metric, used, limit, period)
		}
	}

	if crossed {
		overageCents := (used - limit) * tier.OverageRates[metric]
		metrics.OverageCentsTotal.WithLabelValues(string(metric)).Add(float64(overageCents))

		srv.log(ctx).Warn("Usage crossed tier limit",
			slog.String("org_id", orgID),
			slog.String("metric", string(metric)),
			slog.Int64("used", used),
			slog.Int64("limit", limit),
		)

		event := &service.PlatformEvent{
			RequestID: deliverycontext.GetRequestIDFromContext(ctx),
			Event:     service.EventUsageOverage,
			OrgID:     orgID,
			Subject:   string(metric),
			Payload: map[string]string{
				"period": period,
			},
		}
		if err := srv.publisher.PublishEvent(ctx, event); err != nil {
			srv.log(ctx).Error("Failed to publish overage event",
				slog.String("org_id", orgID),
				slog.Any("error", err),
			)
		}
	}

	return &usecase.RecordUsageOutput{
		Metric:       metric,
		Used:         used,
		Limit:        limit,
		CrossedLimit: crossed,
	}, nil
}

// sendAtRiskWarning emails the org contact when a metric first enters the
// at-risk band for the period. Failures are logged, never returned.
func (srv *usageService) sendAtRiskWarning(ctx context.Context, org *entity.Org, metric entity.UsageMetric, used, limit int64, period string) {
	if org.ContactEmail == "" {
		return
	}

	msg := &service.EmailMessage{
		To:     org.ContactEmail,
		ToName: org.Name,
		Subject: fmt.Sprintf("Heads up: %s usage at %d%% of your plan",
			metric, used*100/limit),
		TextBody: fmt.Sprintf(
			"Your %s usage for %s is %d of %d included in your plan. Overage rates apply past the limit.",
			metric, period, used, limit),
	}
	if err := srv.emailSender.Send(ctx, msg); err != nil {
		srv.log(ctx).Error("Failed to send usage warning",
			slog.String("org_id", org.ID),
			slog.String("metric", string(metric)),
			slog.Any("error", err),
		)
	}
}
