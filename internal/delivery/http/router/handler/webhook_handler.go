package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"canopy/internal/delivery/http/response"
	"canopy/internal/domain/service"
	"canopy/internal/infra/metrics"
	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// webhookDedupeWindow bounds how long a processed delivery blocks its
// replays. Gateways stop retrying well within a day.
const webhookDedupeWindow = 24 * time.Hour

// WebhookHandler receives payment gateway callbacks presented on
// /webhooks/:provider. Deliveries are verified against the gateway's
// signing secret and deduplicated by event ID before they touch an
// order.
type WebhookHandler struct {
	registry    service.GatewayRegistry
	idempotency service.IdempotencyStore
	checkoutUC  usecase.CheckoutUsecase
	logger      *slog.Logger
}

// NewWebhookHandler is the constructor for WebhookHandler, injected by Fx.
func NewWebhookHandler(registry service.GatewayRegistry, idempotency service.IdempotencyStore, checkoutUC usecase.CheckoutUsecase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		registry:    registry,
		idempotency: idempotency,
		checkoutUC:  checkoutUC,
		logger:      logger,
	}
}

// HandleWebhook verifies, deduplicates, and applies a gateway delivery.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	provider := c.Param("provider")

	gateway, err := h.registry.ByProvider(provider)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues(provider, "rejected").Inc()

		return response.NotFound(c, "UNKNOWN_PROVIDER", "Unknown payment provider")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues(provider, "rejected").Inc()

		return response.BadRequest(c, "INVALID_BODY", "Failed to read webhook body")
	}

	event, err := gateway.VerifyWebhook(c.Request(), body)
	if err != nil {
		h.logger.Warn("Webhook signature verification failed",
			slog.String("provider", provider),
			slog.Any("error", err),
		)
		metrics.WebhooksTotal.WithLabelValues(provider, "rejected").Inc()

		return response.BadRequest(c, "INVALID_SIGNATURE", "Webhook verification failed")
	}

	fresh, err := h.idempotency.Claim(ctx, provider+":"+event.EventID, webhookDedupeWindow)
	if err != nil {
		return errors.WithStack(err)
	}
	if !fresh {
		h.logger.Info("Duplicate webhook delivery ignored",
			slog.String("provider", provider),
			slog.String("event_id", event.EventID),
		)
		metrics.WebhooksTotal.WithLabelValues(provider, "duplicate").Inc()

		return response.Success(c, http.StatusOK, nil, "Already processed")
	}

	if err := h.checkoutUC.ConfirmPayment(ctx, event); err != nil {
		return errors.WithStack(err)
	}

	metrics.WebhooksTotal.WithLabelValues(provider, "processed").Inc()

	return response.Success(c, http.StatusOK, nil, "Webhook processed")
}
