package handler

import (
	"log/slog"
	"net/http"

	"canopy/internal/delivery/http/middleware"
	"canopy/internal/delivery/http/response"
	"canopy/internal/domain/entity"
	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UsageHandler holds dependencies for usage metering handlers.
type UsageHandler struct {
	uc     usecase.UsageUsecase
	logger *slog.Logger
}

// NewUsageHandler is the constructor for UsageHandler, injected by Fx.
func NewUsageHandler(uc usecase.UsageUsecase, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		uc:     uc,
		logger: logger,
	}
}

// GetUsage returns the org's metering report for the current period.
func (h *UsageHandler) GetUsage(c echo.Context) error {
	summary, err := h.uc.GetUsageWithLimits(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary, "")
}

// recordUsageRequest names the metric to increment.
type recordUsageRequest struct {
	Metric entity.UsageMetric `json:"metric"`
	Count  int64              `json:"count"`
}

// RecordUsage increments a metric counter, e.g. when the dashboard
// sends an SMS blast through an external integration.
func (h *UsageHandler) RecordUsage(c echo.Context) error {
	var req recordUsageRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid usage input")
	}

	if req.Count == 0 {
		req.Count = 1
	}

	output, err := h.uc.RecordUsage(c.Request().Context(), middleware.OrgID(c), req.Metric, req.Count)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Usage recorded successfully")
}
