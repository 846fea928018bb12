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

// OrderHandler holds dependencies for dashboard order management.
type OrderHandler struct {
	uc     usecase.CheckoutUsecase
	logger *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(uc usecase.CheckoutUsecase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: logger,
	}
}

// ListOrders retrieves the org's orders, newest first.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.uc.ListOrders(c.Request().Context(), middleware.OrgID(c), queryInt(c, "limit", 50))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, orders, "")
}

// GetOrder retrieves one order.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.uc.GetOrder(c.Request().Context(), middleware.OrgID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, order, "")
}

// transitionRequest names the target order status.
type transitionRequest struct {
	Status entity.OrderStatus `json:"status"`
}

// TransitionOrder moves an order through its lifecycle, typically to
// fulfilled at pickup or canceled by staff.
func (h *OrderHandler) TransitionOrder(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid transition input")
	}

	order, err := h.uc.TransitionOrder(c.Request().Context(), middleware.OrgID(c), c.Param("id"), req.Status)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, order, "Order updated successfully")
}
