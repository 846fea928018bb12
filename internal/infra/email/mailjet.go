package email

import (
	"context"
	"log/slog"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/pkg/errors"
)

// mailjetSender implements EmailSender using the Mailjet v3.1 Send API
type mailjetSender struct {
	client *mailjet.Client
	cfg    *config.EmailConfig
	logger *slog.Logger
}

// NewMailjetSender creates a new Mailjet email sender
func NewMailjetSender(cfg *config.EmailConfig, logger *slog.Logger) service.EmailSender {
	return &mailjetSender{
		client: mailjet.NewMailjetClient(cfg.Mailjet.APIKey, cfg.Mailjet.SecretKey),
		cfg:    cfg,
		logger: logger,
	}
}

// Send delivers a single message through Mailjet
func (s *mailjetSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	messages := mailjet.MessagesV31{
		Info: []mailjet.InfoMessagesV31{
			{
				From: &mailjet.RecipientV31{
					Email: s.cfg.FromEmail,
					Name:  s.cfg.FromName,
				},
				To: &mailjet.RecipientsV31{
					{
						Email: msg.To,
						Name:  msg.ToName,
					},
				},
				Subject:  msg.Subject,
				TextPart: msg.TextBody,
				HTMLPart: msg.HTMLBody,
			},
		},
	}

	res, err := s.client.SendMailV31(&messages, mailjet.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "failed to send email via mailjet")
	}

	for _, result := range res.ResultsV31 {
		if result.Status != "success" {
			return errors.Errorf("mailjet rejected message: %s", result.Status)
		}
	}

	s.logger.Info("[Mailjet] Email sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}
