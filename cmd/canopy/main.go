package main

import (
	"context"
	"log/slog"
	"os"

	"canopy/config"
	"canopy/internal/delivery"
	"canopy/internal/delivery/http"
	httpmiddleware "canopy/internal/delivery/http/middleware"
	"canopy/internal/delivery/http/router/handler"
	"canopy/internal/delivery/worker"
	workerhandler "canopy/internal/delivery/worker/handler"
	"canopy/internal/domain/service"
	"canopy/internal/infra/agent"
	"canopy/internal/infra/auth"
	"canopy/internal/infra/auth/google"
	"canopy/internal/infra/blob"
	"canopy/internal/infra/cache"
	"canopy/internal/infra/catalog/cannmenus"
	"canopy/internal/infra/email"
	"canopy/internal/infra/idempotency"
	logs "canopy/internal/infra/log"
	"canopy/internal/infra/payments"
	"canopy/internal/infra/persistence/firestore"
	"canopy/internal/infra/pubsub"
	"canopy/internal/infra/qrcode"
	"canopy/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			firestore.New,
			newToolCache,
		),
		email.Module,
		payments.Module,
		pubsub.Module,
		blob.Module,
		agent.Module,
		idempotency.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			firestore.NewOrgRepository,
			firestore.NewTierRepository,
			firestore.NewUsageRepository,
			firestore.NewUserRepository,
			firestore.NewProductRepository,
			firestore.NewRetailerRepository,
			firestore.NewCouponRepository,
			firestore.NewOrderRepository,
			firestore.NewPlaybookRepository,
			firestore.NewGoalRepository,
			firestore.NewLoyaltyRepository,
			firestore.NewPackagingRepository,
			firestore.NewIntelRepository,
			firestore.NewCatalogCacheRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			google.NewAuthService,
			cannmenus.NewClient,
			newQRCodeService,
		),
	)
}

// newToolCache creates the in-process memoization cache with the
// configured default TTL.
func newToolCache(cfg *config.Config) *cache.ToolCache {
	return cache.New(cfg.ToolCache.DefaultTTL)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUsageService,
			impl.NewUserService,
			impl.NewCatalogService,
			impl.NewCheckoutService,
			impl.NewPlaybookService,
			impl.NewGoalService,
			impl.NewLoyaltyService,
			impl.NewPackagingService,
			impl.NewIntelService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			httpmiddleware.NewAuthMiddleware,
			httpmiddleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewCatalogHandler,
			handler.NewStorefrontHandler,
			handler.NewOrderHandler,
			handler.NewUsageHandler,
			handler.NewGoalHandler,
			handler.NewLoyaltyHandler,
			handler.NewPlaybookHandler,
			handler.NewPackagingHandler,
			handler.NewIntelHandler,
			handler.NewWebhookHandler,
			workerhandler.NewEventHandler,
			workerhandler.NewCronHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
