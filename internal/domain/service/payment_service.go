package service

import (
	"context"
	"net/http"
)

// PaymentStatus is the normalized state reported by gateway webhooks.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentIntent is the gateway's handle for a pending charge.
type PaymentIntent struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
	// ClientSecret (or redirect URL for hosted flows) is handed to the
	// storefront to complete the charge.
	ClientSecret string `json:"client_secret"`
}

// PaymentEvent is a normalized webhook delivery.
type PaymentEvent struct {
	Provider   string
	EventID    string
	ExternalID string
	OrderID    string
	Status     PaymentStatus
}

// GatewayRegistry resolves configured payment gateways. Checkout
// charges through the primary provider; webhook handlers route
// deliveries by provider name.
type GatewayRegistry interface {
	// Primary returns the gateway checkout charges through.
	Primary() (PaymentGateway, error)

	// ByProvider returns the gateway for a webhook path segment.
	ByProvider(name string) (PaymentGateway, error)
}

// PaymentGateway defines the interface every payment adapter implements.
type PaymentGateway interface {
	// Provider returns the gateway name (stripe, aeropay, smokeypay).
	Provider() string

	// CreatePayment registers a charge for the given order and amount.
	CreatePayment(ctx context.Context, orderID string, amountCents int64, currency string) (*PaymentIntent, error)

	// VerifyWebhook authenticates a webhook delivery and normalizes it.
	// Implementations must reject bodies whose signature does not match.
	VerifyWebhook(req *http.Request, body []byte) (*PaymentEvent, error)
}
