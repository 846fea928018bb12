// Package google verifies Google Sign-In ID tokens for dashboard login.
package google

import (
	"context"
	"log/slog"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"
)

// AuthServiceImpl implements service.OAuthAuthService for Google ID tokens.
type AuthServiceImpl struct {
	clientID string
	logger   *slog.Logger
}

// NewAuthService creates a new Google AuthService.
func NewAuthService(cfg *config.Config, logger *slog.Logger) service.OAuthAuthService {
	clientID := ""
	if cfg.GoogleOAuth != nil {
		clientID = cfg.GoogleOAuth.ClientID
	}

	return &AuthServiceImpl{
		clientID: clientID,
		logger:   logger,
	}
}

// VerifyIDToken validates the token signature and audience against
// Google's public keys and returns the normalized user.
func (s *AuthServiceImpl) VerifyIDToken(ctx context.Context, token string) (*service.OAuthUser, error) {
	if s.clientID == "" {
		return nil, errors.New("google sign-in is not configured")
	}

	payload, err := idtoken.Validate(ctx, token, s.clientID)
	if err != nil {
		s.logger.Warn("Google ID token rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "invalid ID token")
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)

	return &service.OAuthUser{
		ID:            payload.Subject,
		Email:         email,
		Name:          name,
		EmailVerified: verified,
	}, nil
}
