package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// stripeGateway implements PaymentGateway on the Stripe API
type stripeGateway struct {
	api    *client.API
	cfg    *config.StripeConfig
	logger *slog.Logger
}

// NewStripeGateway creates a new Stripe payment gateway
func NewStripeGateway(cfg *config.StripeConfig, logger *slog.Logger) service.PaymentGateway {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)

	return &stripeGateway{
		api:    api,
		cfg:    cfg,
		logger: logger,
	}
}

// Provider returns the gateway name
func (g *stripeGateway) Provider() string {
	return ProviderStripe
}

// CreatePayment registers a PaymentIntent for the given order and amount
func (g *stripeGateway) CreatePayment(ctx context.Context, orderID string, amountCents int64, currency string) (*service.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("order_id", orderID)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stripe payment intent")
	}

	g.logger.Info("[Stripe] Payment intent created",
		slog.String("order_id", orderID),
		slog.String("intent_id", intent.ID),
	)

	return &service.PaymentIntent{
		Provider:     ProviderStripe,
		ExternalID:   intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// VerifyWebhook authenticates a Stripe webhook delivery and normalizes it
func (g *stripeGateway) VerifyWebhook(req *http.Request, body []byte) (*service.PaymentEvent, error) {
	event, err := webhook.ConstructEvent(body, req.Header.Get("Stripe-Signature"), g.cfg.WebhookSecret)
	if err != nil {
		return nil, errors.Wrap(err, "stripe webhook signature verification failed")
	}

	var status service.PaymentStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = service.PaymentSucceeded
	case "payment_intent.payment_failed":
		status = service.PaymentFailed
	case "charge.refunded":
		status = service.PaymentRefunded
	default:
		return nil, errors.Errorf("unhandled stripe event type: %s", event.Type)
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, errors.Wrap(err, "failed to decode stripe event payload")
	}

	return &service.PaymentEvent{
		Provider:   ProviderStripe,
		EventID:    event.ID,
		ExternalID: intent.ID,
		OrderID:    intent.Metadata["order_id"],
		Status:     status,
	}, nil
}
