// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// Domain-specific errors for tenant persistence.
var (
	// ErrOrgNotFound is returned when an org document does not exist.
	ErrOrgNotFound = errors.New("org not found")
	// ErrTierNotFound is returned when a tier document does not exist.
	ErrTierNotFound = errors.New("tier not found")
)

// OrgRepository defines tenant-related document operations.
type OrgRepository interface {
	// CreateOrg persists a new org document.
	CreateOrg(ctx context.Context, org *entity.Org) error

	// FindOrgByID retrieves an org by its document ID.
	FindOrgByID(ctx context.Context, id string) (*entity.Org, error)

	// ListActiveOrgs retrieves every active org (used by scheduled jobs).
	ListActiveOrgs(ctx context.Context) ([]*entity.Org, error)

	// UpdateOrg overwrites an existing org document.
	UpdateOrg(ctx context.Context, org *entity.Org) error
}

// TierRepository defines subscription plan lookups.
type TierRepository interface {
	// FindTierByID retrieves a tier by its document ID.
	FindTierByID(ctx context.Context, id string) (*entity.Tier, error)
}
