package firestore

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// notFound reports whether a Firestore error means the document is absent.
func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// orgRepository implements repository.OrgRepository.
type orgRepository struct {
	client *firestore.Client
}

// NewOrgRepository is the constructor for orgRepository.
func NewOrgRepository(client *firestore.Client) repository.OrgRepository {
	return &orgRepository{client: client}
}

// CreateOrg persists a new org document.
func (repo *orgRepository) CreateOrg(ctx context.Context, org *entity.Org) error {
	if _, err := repo.client.Collection(collOrgs).Doc(org.ID).Set(ctx, org); err != nil {
		return errors.Wrap(err, "failed to create org")
	}

	return nil
}

// FindOrgByID retrieves an org by its document ID.
func (repo *orgRepository) FindOrgByID(ctx context.Context, id string) (*entity.Org, error) {
	snap, err := repo.client.Collection(collOrgs).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrOrgNotFound
		}

		return nil, errors.Wrap(err, "failed to find org by ID")
	}

	var org entity.Org
	if err := snap.DataTo(&org); err != nil {
		return nil, errors.Wrap(err, "failed to decode org")
	}

	return &org, nil
}

// ListActiveOrgs retrieves every active org.
func (repo *orgRepository) ListActiveOrgs(ctx context.Context) ([]*entity.Org, error) {
	iter := repo.client.Collection(collOrgs).
		Where("active", "==", true).
		Documents(ctx)
	defer iter.Stop()

	var orgs []*entity.Org
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list active orgs")
		}

		var org entity.Org
		if err := snap.DataTo(&org); err != nil {
			return nil, errors.Wrap(err, "failed to decode org")
		}
		orgs = append(orgs, &org)
	}

	return orgs, nil
}

// UpdateOrg overwrites an existing org document.
func (repo *orgRepository) UpdateOrg(ctx context.Context, org *entity.Org) error {
	if _, err := repo.client.Collection(collOrgs).Doc(org.ID).Set(ctx, org); err != nil {
		return errors.Wrap(err, "failed to update org")
	}

	return nil
}

// tierRepository implements repository.TierRepository.
type tierRepository struct {
	client *firestore.Client
}

// NewTierRepository is the constructor for tierRepository.
func NewTierRepository(client *firestore.Client) repository.TierRepository {
	return &tierRepository{client: client}
}

// FindTierByID retrieves a tier by its document ID.
func (repo *tierRepository) FindTierByID(ctx context.Context, id string) (*entity.Tier, error) {
	snap, err := repo.client.Collection(collTiers).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrTierNotFound
		}

		return nil, errors.Wrap(err, "failed to find tier by ID")
	}

	var tier entity.Tier
	if err := snap.DataTo(&tier); err != nil {
		return nil, errors.Wrap(err, "failed to decode tier")
	}

	return &tier, nil
}
