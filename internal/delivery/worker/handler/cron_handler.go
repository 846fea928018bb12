package handler

import (
	"log/slog"
	"net/http"

	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CronHandler hosts the scheduled maintenance endpoints. Cloud
// Scheduler (or plain curl in development) hits these nightly.
type CronHandler struct {
	checkoutUC usecase.CheckoutUsecase
	intelUC    usecase.IntelUsecase
	logger     *slog.Logger
}

// NewCronHandler is the constructor for CronHandler, injected by Fx.
func NewCronHandler(checkoutUC usecase.CheckoutUsecase, intelUC usecase.IntelUsecase, logger *slog.Logger) *CronHandler {
	return &CronHandler{
		checkoutUC: checkoutUC,
		intelUC:    intelUC,
		logger:     logger,
	}
}

// BundleTransition is the nightly order backfill: stale pending orders
// are canceled and paid orders past the pickup window are fulfilled.
func (h *CronHandler) BundleTransition(c echo.Context) error {
	canceled, fulfilled, err := h.checkoutUC.ExpireStaleOrders(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	h.logger.Info("[Jobs] Order backfill completed",
		slog.Int("canceled", canceled),
		slog.Int("fulfilled", fulfilled),
	)

	return c.JSON(http.StatusOK, map[string]int{
		"canceled":  canceled,
		"fulfilled": fulfilled,
	})
}

// ChurnPrediction scores every active org and emails the operator a
// digest of at-risk tenants.
func (h *CronHandler) ChurnPrediction(c echo.Context) error {
	report, err := h.intelUC.PredictChurn(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	h.logger.Info("[Jobs] Churn prediction completed",
		slog.Int("scored", report.Scored),
		slog.Int("at_risk", len(report.AtRisk)),
	)

	return c.JSON(http.StatusOK, report)
}
