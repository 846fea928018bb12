// Package payments provides the payment gateway adapters behind the
// PaymentGateway interface.
package payments

import (
	"log/slog"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Provider names accepted in the payments config block.
const (
	ProviderStripe    = "stripe"
	ProviderAeropay   = "aeropay"
	ProviderSmokeyPay = "smokeypay"
)

// Gateways holds every configured gateway. Checkout charges through
// the primary provider; webhooks route deliveries to any of them.
type Gateways struct {
	primary string
	byName  map[string]service.PaymentGateway
}

// Primary returns the gateway checkout charges through.
func (g *Gateways) Primary() (service.PaymentGateway, error) {
	gw, ok := g.byName[g.primary]
	if !ok {
		return nil, errors.Errorf("primary payment provider %s is not configured", g.primary)
	}

	return gw, nil
}

// ByProvider returns the gateway for a webhook path segment.
func (g *Gateways) ByProvider(name string) (service.PaymentGateway, error) {
	gw, ok := g.byName[name]
	if !ok {
		return nil, errors.Errorf("unknown payment provider: %s", name)
	}

	return gw, nil
}

// GatewayParams holds dependencies for Gateways, injected by Fx
type GatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewGateways wires every gateway that has credentials configured
func NewGateways(params GatewayParams) (service.GatewayRegistry, error) {
	cfg := params.Config.Payments
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		return nil, errors.New("payments config is required")
	}

	gateways := &Gateways{
		primary: cfg.Provider,
		byName:  map[string]service.PaymentGateway{},
	}

	if cfg.Stripe != nil && cfg.Stripe.APIKey != "" {
		gateways.byName[ProviderStripe] = NewStripeGateway(cfg.Stripe, logger)
	}
	if cfg.Aeropay != nil && cfg.Aeropay.APIKey != "" {
		gateways.byName[ProviderAeropay] = NewHMACGateway(ProviderAeropay, cfg.Aeropay, logger)
	}
	if cfg.SmokeyPay != nil && cfg.SmokeyPay.APIKey != "" {
		gateways.byName[ProviderSmokeyPay] = NewHMACGateway(ProviderSmokeyPay, cfg.SmokeyPay, logger)
	}

	if _, ok := gateways.byName[cfg.Provider]; !ok {
		return nil, errors.Errorf("primary payment provider %s has no credentials", cfg.Provider)
	}

	logger.Info("Payment gateways initialized",
		slog.String("primary", cfg.Provider),
		slog.Int("configured", len(gateways.byName)),
	)

	return gateways, nil
}

// Module provides the payments FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewGateways),
)
