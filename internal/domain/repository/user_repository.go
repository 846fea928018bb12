package repository

import (
	"context"

	"canopy/internal/domain/entity"
	"canopy/internal/errors"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when a user document does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when creating a user whose email is taken.
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository defines dashboard account operations.
type UserRepository interface {
	// CreateUser persists a new user; fails with ErrDuplicateUser when
	// the email is already registered.
	CreateUser(ctx context.Context, user *entity.User) error

	// FindUserByID retrieves a user by document ID.
	FindUserByID(ctx context.Context, id string) (*entity.User, error)

	// FindUserByEmail retrieves a user by email.
	FindUserByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindUserByGoogleSub retrieves a user by Google subject claim.
	FindUserByGoogleSub(ctx context.Context, sub string) (*entity.User, error)

	// UpdateUser overwrites an existing user document.
	UpdateUser(ctx context.Context, user *entity.User) error
}
