package worker

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"canopy/config"
	"canopy/internal/delivery"
	deliverymiddleware "canopy/internal/delivery/middleware"
	"canopy/internal/delivery/worker/handler"
	workermiddleware "canopy/internal/delivery/worker/middleware"
	"canopy/internal/domain/lifecycle"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type workerServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// ServerParams holds dependencies for the jobs server
type ServerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Logger       *slog.Logger
	EventHandler *handler.EventHandler
	CronHandler  *handler.CronHandler
}

// NewServer creates the internal jobs server. It hosts the Pub/Sub
// push endpoint, the cron endpoints, and Prometheus metrics, and is
// never exposed to the public internet.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	e := echo.New()
	e.HideBanner = true

	// Set up middleware in correct order
	// 1. Recover middleware first (to catch panics early)
	e.Use(echomiddleware.Recover())

	// 2. Request ID middleware (must be before logger to include in logs)
	requestIDMiddleware := deliverymiddleware.NewRequestIDMiddleware(params.Logger)
	e.Use(requestIDMiddleware.Process)

	// 3. Logger middleware
	loggerMiddleware := deliverymiddleware.NewLoggerMiddleware(params.Logger, params.Cfg)
	e.Use(loggerMiddleware.Handle)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Pub/Sub push endpoint
	e.POST("/push", params.EventHandler.HandlePush)

	// Scheduled jobs, guarded by the shared cron secret
	jobs := e.Group("/jobs", workermiddleware.RequireCronSecret(params.Cfg.Jobs.Secret))
	{
		jobs.POST("/bundle-transition", params.CronHandler.BundleTransition)
		jobs.POST("/churn-prediction", params.CronHandler.ChurnPrediction)
	}

	srv := &workerServer{
		cfg:    params.Cfg,
		logger: params.Logger,
		server: e,
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve starts the jobs HTTP server
func (s *workerServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.Jobs.Port))
	s.logger.Info("Starting jobs server", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// stop gracefully shuts down the jobs server
func (s *workerServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down jobs server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
