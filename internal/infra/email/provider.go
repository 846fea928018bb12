// Package email provides transactional email delivery behind the
// EmailSender interface.
package email

import (
	"context"
	"log/slog"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Provider names accepted in the email config block.
const (
	ProviderMailjet  = "mailjet"
	ProviderSendGrid = "sendgrid"
	ProviderNoop     = "noop"
)

// noopSender is a no-op implementation for environments without an
// email provider (local development, tests).
type noopSender struct {
	logger *slog.Logger
}

func (s *noopSender) Send(_ context.Context, msg *service.EmailMessage) error {
	s.logger.Debug("[NoopEmail] Email delivery disabled, skipping",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}

// SenderParams holds dependencies for EmailSender, injected by Fx
type SenderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewEmailSender creates an EmailSender based on configuration
func NewEmailSender(params SenderParams) (service.EmailSender, error) {
	cfg := params.Config.Email
	logger := params.Logger

	// If email is not configured, return a no-op sender
	if cfg == nil || cfg.Provider == "" || cfg.Provider == ProviderNoop {
		logger.Info("Email not configured, using no-op sender")

		return &noopSender{logger: logger}, nil
	}

	switch cfg.Provider {
	case ProviderMailjet:
		if cfg.Mailjet == nil || cfg.Mailjet.APIKey == "" {
			return nil, errors.New("mailjet credentials are required for mailjet provider")
		}
		logger.Info("Using Mailjet email sender",
			slog.String("from", cfg.FromEmail),
		)

		return NewMailjetSender(cfg, logger), nil

	case ProviderSendGrid:
		if cfg.SendGrid == nil || cfg.SendGrid.APIKey == "" {
			return nil, errors.New("sendgrid API key is required for sendgrid provider")
		}
		logger.Info("Using SendGrid email sender",
			slog.String("from", cfg.FromEmail),
		)

		return NewSendGridSender(cfg, logger), nil

	default:
		return nil, errors.Errorf("unknown email provider: %s", cfg.Provider)
	}
}

// Module provides the email FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEmailSender),
)
