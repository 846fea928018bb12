package service

import "context"

// OAuthUser represents user information from OAuth providers.
type OAuthUser struct {
	ID            string // Provider-specific user ID (e.g., Google's 'sub' claim)
	Email         string
	Name          string
	EmailVerified bool
}

// OAuthAuthService defines the interface for OAuth authentication
// operations, specifically ID token verification for Google Sign-In.
type OAuthAuthService interface {
	// VerifyIDToken verifies an OAuth ID token and returns user information.
	VerifyIDToken(ctx context.Context, idToken string) (*OAuthUser, error)
}
