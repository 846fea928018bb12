package usecase

import (
	"context"

	"canopy/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new org and
// its first admin user.
type RegisterInput struct {
	OrgName  string         `json:"org_name"`
	OrgType  entity.OrgType `json:"org_type"`
	State    string         `json:"state"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginInput carries a Google ID token.
type GoogleLoginInput struct {
	IDToken string `json:"id_token"`
}

// --- Output DTOs ---

// RegisterOutput returns the newly created org and admin user.
type RegisterOutput struct {
	Org  *entity.Org  `json:"org"`
	User *entity.User `json:"user"`
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *entity.User `json:"user"`
}

// UserUsecase defines the interface for dashboard account operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	GoogleLogin(ctx context.Context, input GoogleLoginInput) (*LoginOutput, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginOutput, error)
}
