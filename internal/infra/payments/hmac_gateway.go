package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
)

// hmacGateway implements PaymentGateway for the cannabis-friendly REST
// processors (Aeropay, SmokeyPay). Both expose the same shape: a JSON
// payments endpoint authenticated with a bearer key, and webhooks
// signed with an HMAC-SHA256 hex digest of the raw body.
type hmacGateway struct {
	provider   string
	cfg        *config.HMACGatewayConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHMACGateway creates a gateway for one HMAC-signed processor
func NewHMACGateway(provider string, cfg *config.HMACGatewayConfig, logger *slog.Logger) service.PaymentGateway {
	return &hmacGateway{
		provider: provider,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Provider returns the gateway name
func (g *hmacGateway) Provider() string {
	return g.provider
}

// createPaymentRequest is the body sent to the payments endpoint.
type createPaymentRequest struct {
	OrderID     string `json:"order_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// createPaymentResponse is the processor's handle for the charge.
type createPaymentResponse struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// CreatePayment registers a charge with the processor
func (g *hmacGateway) CreatePayment(ctx context.Context, orderID string, amountCents int64, currency string) (*service.PaymentIntent, error) {
	payload, err := json.Marshal(createPaymentRequest{
		OrderID:     orderID,
		AmountCents: amountCents,
		Currency:    currency,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	url := g.cfg.BaseURL + "/v1/payments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reach %s", g.provider)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("%s returned status %d", g.provider, resp.StatusCode)
	}

	var created createPaymentResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s response", g.provider)
	}

	g.logger.Info("Payment created",
		slog.String("provider", g.provider),
		slog.String("order_id", orderID),
		slog.String("payment_id", created.ID),
	)

	return &service.PaymentIntent{
		Provider:     g.provider,
		ExternalID:   created.ID,
		ClientSecret: created.RedirectURL,
	}, nil
}

// webhookPayload is the body both processors deliver.
type webhookPayload struct {
	EventID   string `json:"event_id"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
}

// SignatureHeader returns the header carrying the webhook digest.
func (g *hmacGateway) SignatureHeader() string {
	return fmt.Sprintf("X-%s-Signature", headerCase(g.provider))
}

// headerCase capitalizes the provider name the way the processors
// spell their headers (Aeropay, Smokeypay).
func headerCase(provider string) string {
	if provider == "" {
		return provider
	}

	return string(provider[0]-'a'+'A') + provider[1:]
}

// VerifyWebhook authenticates a webhook delivery and normalizes it
func (g *hmacGateway) VerifyWebhook(req *http.Request, body []byte) (*service.PaymentEvent, error) {
	signature := req.Header.Get(g.SignatureHeader())
	if signature == "" {
		return nil, errors.Errorf("%s webhook is missing signature header", g.provider)
	}

	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, errors.Errorf("%s webhook signature mismatch", g.provider)
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s webhook", g.provider)
	}

	var status service.PaymentStatus
	switch payload.Status {
	case "completed":
		status = service.PaymentSucceeded
	case "failed", "declined":
		status = service.PaymentFailed
	case "refunded":
		status = service.PaymentRefunded
	default:
		return nil, errors.Errorf("unhandled %s webhook status: %s", g.provider, payload.Status)
	}

	return &service.PaymentEvent{
		Provider:   g.provider,
		EventID:    payload.EventID,
		ExternalID: payload.PaymentID,
		OrderID:    payload.OrderID,
		Status:     status,
	}, nil
}
