package handler

import (
	"log/slog"
	"net/http"

	"canopy/internal/delivery/http/middleware"
	"canopy/internal/delivery/http/response"
	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LoyaltyHandler holds dependencies for loyalty program settings handlers.
type LoyaltyHandler struct {
	uc     usecase.LoyaltyUsecase
	logger *slog.Logger
}

// NewLoyaltyHandler is the constructor for LoyaltyHandler, injected by Fx.
func NewLoyaltyHandler(uc usecase.LoyaltyUsecase, logger *slog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		uc:     uc,
		logger: logger,
	}
}

// GetSettings retrieves the org's loyalty program.
func (h *LoyaltyHandler) GetSettings(c echo.Context) error {
	settings, err := h.uc.GetLoyaltySettings(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, settings, "")
}

// SaveSettings validates and stores the org's loyalty program.
func (h *LoyaltyHandler) SaveSettings(c echo.Context) error {
	var input usecase.SaveLoyaltyInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid loyalty settings input")
	}

	settings, err := h.uc.SaveLoyaltySettings(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, settings, "Loyalty settings saved successfully")
}
