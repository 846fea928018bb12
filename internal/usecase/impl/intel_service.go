package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"canopy/config"
	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// churnAtRiskThreshold is the score at which an org lands in the
// operator digest.
const churnAtRiskThreshold = 0.8

// intelService implements the IntelUsecase interface.
type intelService struct {
	orgRepo       repository.OrgRepository
	orderRepo     repository.OrderRepository
	retailerRepo  repository.RetailerRepository
	intelRepo     repository.IntelRepository
	catalogClient service.CatalogClient
	emailSender   service.EmailSender
	usage         usecase.UsageUsecase
	operatorEmail string
	logger        *slog.Logger
	now           func() time.Time
}

// IntelServiceParams holds dependencies for IntelService, injected by Fx.
type IntelServiceParams struct {
	fx.In

	OrgRepo       repository.OrgRepository
	OrderRepo     repository.OrderRepository
	RetailerRepo  repository.RetailerRepository
	IntelRepo     repository.IntelRepository
	CatalogClient service.CatalogClient
	EmailSender   service.EmailSender
	Usage         usecase.UsageUsecase
	Config        *config.Config
	Logger        *slog.Logger
}

// NewIntelService is the constructor for intelService. It receives all dependencies as interfaces.
func NewIntelService(params IntelServiceParams) usecase.IntelUsecase {
	operator := ""
	if params.Config != nil && params.Config.Email != nil {
		operator = params.Config.Email.Operator
	}

	return &intelService{
		orgRepo:       params.OrgRepo,
		orderRepo:     params.OrderRepo,
		retailerRepo:  params.RetailerRepo,
		intelRepo:     params.IntelRepo,
		catalogClient: params.CatalogClient,
		emailSender:   params.EmailSender,
		usage:         params.Usage,
		operatorEmail: operator,
		logger:        params.Logger,
		now:           time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *intelService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SnapshotCompetitors pulls competitor pricing from the catalog proxy
// for the org's tracked retailers.
func (srv *intelService) SnapshotCompetitors(ctx context.Context, orgID string) (*entity.CompetitorSnapshot, error) {
	retailers, err := srv.retailerRepo.ListRetailers(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list retailers")
	}

	var tracked []*entity.Retailer
	for _, retailer := range retailers {
		if retailer.CannMenusKey != "" {
			tracked = append(tracked, retailer)
		}
	}
	if len(tracked) == 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("no retailers with a catalog key to snapshot")
	}

	if _, err := srv.usage.RecordUsage(ctx, orgID, entity.MetricCompetitors, 1); err != nil {
		return nil, errors.Wrap(err, "failed to record competitor usage")
	}

	// Aggregate shelf prices per category across every tracked menu.
	type bucket struct {
		min, max, sum int64
		n             int
	}
	buckets := map[string]*bucket{}
	var keys []string

	for _, retailer := range tracked {
		menu, err := srv.catalogClient.GetRetailerMenu(ctx, retailer.CannMenusKey)
		if err != nil {
			srv.log(ctx).Warn("Competitor menu fetch failed",
				slog.String("retailer_key", retailer.CannMenusKey),
				slog.Any("error", err),
			)

			continue
		}
		keys = append(keys, retailer.CannMenusKey)

		for _, product := range menu {
			b, ok := buckets[product.Category]
			if !ok {
				b = &bucket{min: product.PriceCents, max: product.PriceCents}
				buckets[product.Category] = b
			}
			if product.PriceCents < b.min {
				b.min = product.PriceCents
			}
			if product.PriceCents > b.max {
				b.max = product.PriceCents
			}
			b.sum += product.PriceCents
			b.n++
		}
	}

	if len(buckets) == 0 {
		return nil, errors.New("no competitor pricing available")
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	snapshot := &entity.CompetitorSnapshot{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		RetailerKey: strings.Join(keys, ","),
		CapturedAt:  srv.now().UTC(),
	}
	for _, category := range categories {
		b := buckets[category]
		snapshot.Categories = append(snapshot.Categories, entity.CategoryPricing{
			Category: category,
			MinCents: b.min,
			AvgCents: b.sum / int64(b.n),
			MaxCents: b.max,
			Samples:  b.n,
		})
	}

	if err := srv.intelRepo.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to save competitor snapshot")
	}

	return snapshot, nil
}

// ListSnapshots retrieves the org's snapshots, newest first.
func (srv *intelService) ListSnapshots(ctx context.Context, orgID string, limit int) ([]*entity.CompetitorSnapshot, error) {
	snapshots, err := srv.intelRepo.ListSnapshots(ctx, orgID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list competitor snapshots")
	}

	return snapshots, nil
}

// PredictChurn scores every active org and emails the operator a
// digest of at-risk tenants.
func (srv *intelService) PredictChurn(ctx context.Context) (*usecase.ChurnReport, error) {
	orgs, err := srv.orgRepo.ListActiveOrgs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active orgs")
	}

	now := srv.now().UTC()
	report := &usecase.ChurnReport{RunTime: now.Format(time.RFC3339)}
	var scores []*entity.ChurnScore

	for _, org := range orgs {
		score, err := srv.scoreOrg(ctx, org, now)
		if err != nil {
			srv.log(ctx).Error("Churn scoring failed",
				slog.String("org_id", org.ID),
				slog.Any("error", err),
			)

			continue
		}

		scores = append(scores, score)
		report.Scored++
		if score.AtRisk {
			report.AtRisk = append(report.AtRisk, score)
		}
	}

	if len(scores) > 0 {
		if err := srv.intelRepo.SaveChurnScores(ctx, scores); err != nil {
			return nil, errors.Wrap(err, "failed to save churn scores")
		}
	}

	if len(report.AtRisk) > 0 {
		srv.sendDigest(ctx, report)
	}

	srv.log(ctx).Info("Churn prediction finished",
		slog.Int("scored", report.Scored),
		slog.Int("at_risk", len(report.AtRisk)),
	)

	return report, nil
}

// scoreOrg computes a churn risk in [0,1] from order recency and the
// current period's usage trend.
func (srv *intelService) scoreOrg(ctx context.Context, org *entity.Org, now time.Time) (*entity.ChurnScore, error) {
	score := &entity.ChurnScore{OrgID: org.ID, ScoredAt: now}

	lastOrder, err := srv.orderRepo.FindLatestOrderTime(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	// Order recency drives up to 0.7 of the score: no orders in 60
	// days is fully stale.
	var recency float64
	if lastOrder.IsZero() {
		recency = 1
		score.Reasons = append(score.Reasons, "no orders on record")
	} else {
		days := now.Sub(lastOrder).Hours() / 24
		recency = days / 60
		if recency > 1 {
			recency = 1
		}
		if days >= 14 {
			score.Reasons = append(score.Reasons, fmt.Sprintf("last order %.0f days ago", days))
		}
	}

	// Low platform usage drives the remaining 0.3.
	summary, err := srv.usage.GetUsageWithLimits(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	var used int64
	for _, metric := range summary.Metrics {
		used += metric.Used
	}
	var idle float64
	if used == 0 {
		idle = 1
		score.Reasons = append(score.Reasons, "no platform usage this period")
	}

	score.Score = 0.7*recency + 0.3*idle
	score.AtRisk = score.Score >= churnAtRiskThreshold

	return score, nil
}

func (srv *intelService) sendDigest(ctx context.Context, report *usecase.ChurnReport) {
	if srv.operatorEmail == "" {
		srv.log(ctx).Warn("No operator email configured, skipping churn digest")

		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d orgs are at churn risk:\n\n", len(report.AtRisk), report.Scored)
	for _, score := range report.AtRisk {
		fmt.Fprintf(&b, "- org %s score %.2f (%s)\n",
			score.OrgID, score.Score, strings.Join(score.Reasons, "; "))
	}

	msg := &service.EmailMessage{
		To:       srv.operatorEmail,
		Subject:  "Churn risk digest",
		TextBody: b.String(),
	}
	if err := srv.emailSender.Send(ctx, msg); err != nil {
		srv.log(ctx).Error("Failed to send churn digest", slog.Any("error", err))
	}
}
