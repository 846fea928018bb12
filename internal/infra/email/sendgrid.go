package email

import (
	"context"
	"log/slog"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendGridSender implements EmailSender using the SendGrid v3 Mail API
type sendGridSender struct {
	client *sendgrid.Client
	cfg    *config.EmailConfig
	logger *slog.Logger
}

// NewSendGridSender creates a new SendGrid email sender
func NewSendGridSender(cfg *config.EmailConfig, logger *slog.Logger) service.EmailSender {
	return &sendGridSender{
		client: sendgrid.NewSendClient(cfg.SendGrid.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

// Send delivers a single message through SendGrid
func (s *sendGridSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.TextBody, msg.HTMLBody)

	res, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return errors.Wrap(err, "failed to send email via sendgrid")
	}

	if res.StatusCode >= 300 {
		return errors.Errorf("sendgrid rejected message: status %d", res.StatusCode)
	}

	s.logger.Info("[SendGrid] Email sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}
