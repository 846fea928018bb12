package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// ErrPlaybookNotFound is returned when a playbook document does not exist.
var ErrPlaybookNotFound = errors.New("playbook not found")

// PlaybookRepository defines playbook document operations.
type PlaybookRepository interface {
	// CreatePlaybook persists a new playbook document.
	CreatePlaybook(ctx context.Context, playbook *entity.Playbook) error

	// FindPlaybookByID retrieves a playbook by document ID.
	FindPlaybookByID(ctx context.Context, id string) (*entity.Playbook, error)

	// ListPlaybooks retrieves all playbooks for an org.
	ListPlaybooks(ctx context.Context, orgID string) ([]*entity.Playbook, error)

	// UpdatePlaybook overwrites an existing playbook document.
	UpdatePlaybook(ctx context.Context, playbook *entity.Playbook) error

	// DeletePlaybook removes a playbook document.
	DeletePlaybook(ctx context.Context, id string) error

	// RecordRun persists the outcome of one execution and stamps the
	// playbook's lastRunAt.
	RecordRun(ctx context.Context, run *entity.PlaybookRun) error
}
