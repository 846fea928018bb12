package service

import "context"

// EmailMessage is one transactional email.
type EmailMessage struct {
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender defines the interface for transactional email delivery.
type EmailSender interface {
	// Send delivers a single message through the configured provider.
	Send(ctx context.Context, msg *EmailMessage) error
}
