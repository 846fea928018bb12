package usecase

import (
	"context"

	"canopy/internal/domain/entity"
)

// SavePlaybookInput defines the data required to create or update a
// playbook from its YAML source.
type SavePlaybookInput struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	Enabled bool   `json:"enabled"`
}

// PlaybookUsecase defines the interface for playbook management and
// execution.
type PlaybookUsecase interface {
	// CreatePlaybook parses and validates the YAML source, rejecting
	// bad syntax, unknown step types, and missing triggers.
	CreatePlaybook(ctx context.Context, orgID string, input SavePlaybookInput) (*entity.Playbook, error)

	// GetPlaybook retrieves one playbook, enforcing the org boundary.
	GetPlaybook(ctx context.Context, orgID, playbookID string) (*entity.Playbook, error)

	// ListPlaybooks retrieves the org's playbooks.
	ListPlaybooks(ctx context.Context, orgID string) ([]*entity.Playbook, error)

	// UpdatePlaybook re-parses the YAML source and replaces the playbook.
	UpdatePlaybook(ctx context.Context, orgID, playbookID string, input SavePlaybookInput) (*entity.Playbook, error)

	// DeletePlaybook removes a playbook, enforcing the org boundary.
	DeletePlaybook(ctx context.Context, orgID, playbookID string) error

	// Execute runs the playbook's steps in order against the payload.
	// A step error aborts the remaining steps and marks the run failed.
	// Each run consumes one ai_sessions usage unit.
	Execute(ctx context.Context, orgID, playbookID string, payload map[string]string) (*entity.PlaybookRun, error)

	// HandleEvent executes every enabled playbook whose trigger matches
	// the event name and filters.
	HandleEvent(ctx context.Context, orgID, event string, payload map[string]string) error
}
