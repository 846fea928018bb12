package firestore

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// userRepository implements repository.UserRepository.
type userRepository struct {
	client *firestore.Client
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(client *firestore.Client) repository.UserRepository {
	return &userRepository{client: client}
}

// CreateUser persists a new user document after checking the email is free.
func (repo *userRepository) CreateUser(ctx context.Context, user *entity.User) error {
	existing, err := repo.FindUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if existing != nil {
		return repository.ErrDuplicateUser
	}

	if _, err := repo.client.Collection(collUsers).Doc(user.ID).Set(ctx, user); err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	return nil
}

// FindUserByID retrieves a user by document ID.
func (repo *userRepository) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	snap, err := repo.client.Collection(collUsers).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by ID")
	}

	var user entity.User
	if err := snap.DataTo(&user); err != nil {
		return nil, errors.Wrap(err, "failed to decode user")
	}

	return &user, nil
}

// FindUserByEmail retrieves a user by email.
func (repo *userRepository) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email", email)
}

// FindUserByGoogleSub retrieves a user by Google subject claim.
func (repo *userRepository) FindUserByGoogleSub(ctx context.Context, sub string) (*entity.User, error) {
	return repo.findOne(ctx, "googleSub", sub)
}

func (repo *userRepository) findOne(ctx context.Context, field, value string) (*entity.User, error) {
	iter := repo.client.Collection(collUsers).
		Where(field, "==", value).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find user by %s", field)
	}

	var user entity.User
	if err := snap.DataTo(&user); err != nil {
		return nil, errors.Wrap(err, "failed to decode user")
	}

	return &user, nil
}

// UpdateUser overwrites an existing user document.
func (repo *userRepository) UpdateUser(ctx context.Context, user *entity.User) error {
	if _, err := repo.client.Collection(collUsers).Doc(user.ID).Set(ctx, user); err != nil {
		return errors.Wrap(err, "failed to update user")
	}

	return nil
}
