package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/infra/metrics"
	"canopy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

// playbookSource is the YAML document authors write.
type playbookSource struct {
	Trigger entity.PlaybookTrigger `yaml:"trigger"`
	Steps   []entity.PlaybookStep  `yaml:"steps"`
}

// knownStepTypes lists the step types the executor understands.
var knownStepTypes = map[string]bool{
	entity.StepSendEmail:   true,
	entity.StepRecordGoal:  true,
	entity.StepAdjustPrice: true,
	entity.StepNotify:      true,
}

// playbookService implements the PlaybookUsecase interface.
type playbookService struct {
	playbookRepo repository.PlaybookRepository
	productRepo  repository.ProductRepository
	goalRepo     repository.GoalRepository
	emailSender  service.EmailSender
	agent        service.AgentClient
	usage        usecase.UsageUsecase
	logger       *slog.Logger
	now          func() time.Time
}

// PlaybookServiceParams holds dependencies for PlaybookService, injected by Fx.
type PlaybookServiceParams struct {
	fx.In

	PlaybookRepo repository.PlaybookRepository
	ProductRepo  repository.ProductRepository
	GoalRepo     repository.GoalRepository
	EmailSender  service.EmailSender
	Agent        service.AgentClient
	Usage        usecase.UsageUsecase
	Logger       *slog.Logger
}

// NewPlaybookService is the constructor for playbookService. It receives all dependencies as interfaces.
func NewPlaybookService(params PlaybookServiceParams) usecase.PlaybookUsecase {
	return &playbookService{
		playbookRepo: params.PlaybookRepo,
		productRepo:  params.ProductRepo,
		goalRepo:     params.GoalRepo,
		emailSender:  params.EmailSender,
		agent:        params.Agent,
		usage:        params.Usage,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *playbookService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// parseSource validates the YAML source and returns its parsed form.
func parseSource(source string) (*playbookSource, error) {
	var parsed playbookSource
	if err := yaml.Unmarshal([]byte(source), &parsed); err != nil {
		return nil, domainerrors.ErrPlaybookInvalid.WrapMessage("yaml: " + err.Error())
	}

	if parsed.Trigger.Event == "" {
		return nil, domainerrors.ErrPlaybookInvalid.WrapMessage("trigger event is required")
	}
	if len(parsed.Steps) == 0 {
		return nil, domainerrors.ErrPlaybookInvalid.WrapMessage("at least one step is required")
	}
	for i, step := range parsed.Steps {
		if !knownStepTypes[step.Type] {
			return nil, domainerrors.ErrPlaybookInvalid.WrapMessage(
				fmt.Sprintf("step %d has unknown type %q", i, step.Type))
		}
	}

	return &parsed, nil
}

// CreatePlaybook parses and validates the YAML source.
func (srv *playbookService) CreatePlaybook(ctx context.Context, orgID string, input usecase.SavePlaybookInput) (*entity.Playbook, error) {
	parsed, err := parseSource(input.Source)
	if err != nil {
		return nil, err
	}

	now := srv.now().UTC()
	playbook := &entity.Playbook{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Name:      input.Name,
		Source:    input.Source,
		Trigger:   parsed.Trigger,
		Steps:     parsed.Steps,
		Enabled:   input.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := srv.playbookRepo.CreatePlaybook(ctx, playbook); err != nil {
		return nil, errors.Wrap(err, "failed to create playbook")
	}

	srv.log(ctx).Info("Playbook created",
		slog.String("playbook_id", playbook.ID),
		slog.String("trigger", playbook.Trigger.Event),
	)

	return playbook, nil
}

// GetPlaybook retrieves one playbook, enforcing the org boundary.
func (srv *playbookService) GetPlaybook(ctx context.Context, orgID, playbookID string) (*entity.Playbook, error) {
	playbook, err := srv.playbookRepo.FindPlaybookByID(ctx, playbookID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaybookNotFound) {
			return nil, domainerrors.ErrPlaybookNotFound
		}

		return nil, errors.Wrap(err, "failed to load playbook")
	}
	if playbook.OrgID != orgID {
		return nil, domainerrors.ErrTenantMismatch
	}

	return playbook, nil
}

// ListPlaybooks retrieves the org's playbooks.
func (srv *playbookService) ListPlaybooks(ctx context.Context, orgID string) ([]*entity.Playbook, error) {
	playbooks, err := srv.playbookRepo.ListPlaybooks(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playbooks")
	}

	return playbooks, nil
}

// UpdatePlaybook re-parses the YAML source and replaces the playbook.
func (srv *playbookService) UpdatePlaybook(ctx context.Context, orgID, playbookID string, input usecase.SavePlaybookInput) (*entity.Playbook, error) {
	playbook, err := srv.GetPlaybook(ctx, orgID, playbookID)
	if err != nil {
		return nil, err
	}

	parsed, err := parseSource(input.Source)
	if err != nil {
		return nil, err
	}

	playbook.Name = input.Name
	playbook.Source = input.Source
	playbook.Trigger = parsed.Trigger
	playbook.Steps = parsed.Steps
	playbook.Enabled = input.Enabled
	playbook.UpdatedAt = srv.now().UTC()

	if err := srv.playbookRepo.UpdatePlaybook(ctx, playbook); err != nil {
		return nil, errors.Wrap(err, "failed to update playbook")
	}

	return playbook, nil
}

// DeletePlaybook removes a playbook, enforcing the org boundary.
func (srv *playbookService) DeletePlaybook(ctx context.Context, orgID, playbookID string) error {
	if _, err := srv.GetPlaybook(ctx, orgID, playbookID); err != nil {
		return err
	}

	if err := srv.playbookRepo.DeletePlaybook(ctx, playbookID); err != nil {
		return errors.Wrap(err, "failed to delete playbook")
	}

	return nil
}

// Execute runs the playbook's steps in order against the payload.
func (srv *playbookService) Execute(ctx context.Context, orgID, playbookID string, payload map[string]string) (*entity.PlaybookRun, error) {
	playbook, err := srv.GetPlaybook(ctx, orgID, playbookID)
	if err != nil {
		return nil, err
	}
	if !playbook.Enabled {
		return nil, domainerrors.ErrPlaybookDisabled
	}

	if _, err := srv.usage.RecordUsage(ctx, orgID, entity.MetricAISessions, 1); err != nil {
		return nil, errors.Wrap(err, "failed to record playbook usage")
	}

	run := &entity.PlaybookRun{
		ID:         uuid.NewString(),
		PlaybookID: playbook.ID,
		OrgID:      orgID,
		Succeeded:  true,
		StartedAt:  srv.now().UTC(),
	}

	for _, step := range playbook.Steps {
		result := entity.StepResult{Step: step.Name, Type: step.Type, OK: true}

		if err := srv.runStep(ctx, orgID, step, payload); err != nil {
			result.OK = false
			result.Detail = err.Error()
			run.Results = append(run.Results, result)
			run.Succeeded = false

			srv.log(ctx).Warn("Playbook step failed, aborting run",
				slog.String("playbook_id", playbook.ID),
				slog.String("step_type", step.Type),
				slog.Any("error", err),
			)

			break
		}

		run.Results = append(run.Results, result)
	}

	run.FinishedAt = srv.now().UTC()

	outcome := "success"
	if !run.Succeeded {
		outcome = "failure"
	}
	metrics.PlaybookRunsTotal.WithLabelValues(outcome).Inc()

	if err := srv.playbookRepo.RecordRun(ctx, run); err != nil {
		srv.log(ctx).Error("Failed to record playbook run",
			slog.String("playbook_id", playbook.ID),
			slog.Any("error", err),
		)
	}

	return run, nil
}

// runStep dispatches one step to its executor.
func (srv *playbookService) runStep(ctx context.Context, orgID string, step entity.PlaybookStep, payload map[string]string) error {
	switch step.Type {
	case entity.StepSendEmail:
		return srv.stepSendEmail(ctx, step)
	case entity.StepRecordGoal:
		return srv.stepRecordGoal(ctx, orgID, step)
	case entity.StepAdjustPrice:
		return srv.stepAdjustPrice(ctx, orgID, step)
	case entity.StepNotify:
		return srv.stepNotify(ctx, step, payload)
	default:
		return errors.Errorf("unknown step type: %s", step.Type)
	}
}

func (srv *playbookService) stepSendEmail(ctx context.Context, step entity.PlaybookStep) error {
	to := step.Params["to"]
	if to == "" {
		return errors.New("send_email step requires a to param")
	}

	return srv.emailSender.Send(ctx, &service.EmailMessage{
		To:       to,
		Subject:  step.Params["subject"],
		TextBody: step.Params["body"],
	})
}

func (srv *playbookService) stepRecordGoal(ctx context.Context, orgID string, step entity.PlaybookStep) error {
	goalID := step.Params["goal_id"]
	if goalID == "" {
		return errors.New("record_goal step requires a goal_id param")
	}
	current, err := strconv.ParseFloat(step.Params["current"], 64)
	if err != nil {
		return errors.New("record_goal step requires a numeric current param")
	}

	goal, err := srv.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return errors.Wrap(err, "failed to load goal")
	}
	if goal.OrgID != orgID {
		return domainerrors.ErrTenantMismatch
	}

	goal.Current = current
	goal.UpdatedAt = srv.now().UTC()

	return srv.goalRepo.UpdateGoal(ctx, goal)
}

func (srv *playbookService) stepAdjustPrice(ctx context.Context, orgID string, step entity.PlaybookStep) error {
	productID := step.Params["product_id"]
	if productID == "" {
		return errors.New("adjust_price step requires a product_id param")
	}
	price, err := strconv.ParseInt(step.Params["price_cents"], 10, 64)
	if err != nil || price < 0 {
		return errors.New("adjust_price step requires a non-negative price_cents param")
	}

	product, err := srv.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "failed to load product")
	}
	if product.OrgID != orgID {
		return domainerrors.ErrTenantMismatch
	}

	product.PriceCents = price
	product.UpdatedAt = srv.now().UTC()

	return srv.productRepo.UpdateProduct(ctx, product)
}

func (srv *playbookService) stepNotify(ctx context.Context, step entity.PlaybookStep, payload map[string]string) error {
	prompt := step.Params["prompt"]
	if prompt == "" {
		prompt = "Summarize this platform event for an operator."
	}

	detail := fmt.Sprintf("event payload: %v", payload)
	summary, err := srv.agent.Complete(ctx, prompt, detail)
	if err != nil {
		return errors.Wrap(err, "notify step completion failed")
	}

	srv.log(ctx).Info("Playbook notification",
		slog.String("summary", summary),
	)

	return nil
}

// HandleEvent executes every enabled playbook whose trigger matches
// the event name and filters.
func (srv *playbookService) HandleEvent(ctx context.Context, orgID, event string, payload map[string]string) error {
	playbooks, err := srv.playbookRepo.ListPlaybooks(ctx, orgID)
	if err != nil {
		return errors.Wrap(err, "failed to list playbooks for event")
	}

	for _, playbook := range playbooks {
		if !playbook.Enabled || playbook.Trigger.Event != event {
			continue
		}
		if !filtersMatch(playbook.Trigger.Filters, payload) {
			continue
		}

		if _, err := srv.Execute(ctx, orgID, playbook.ID, payload); err != nil {
			srv.log(ctx).Error("Triggered playbook failed",
				slog.String("playbook_id", playbook.ID),
				slog.String("event", event),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

// filtersMatch reports whether every trigger filter equals the payload
// value for its key.
func filtersMatch(filters, payload map[string]string) bool {
	for key, want := range filters {
		if payload[key] != want {
			return false
		}
	}

	return true
}
