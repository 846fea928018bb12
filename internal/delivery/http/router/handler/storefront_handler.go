package handler

import (
	"log/slog"
	"net/http"

	"canopy/internal/delivery/http/response"
	"canopy/internal/domain/repository"
	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// StorefrontHandler holds dependencies for the public shopping surface.
// Routes here are keyed by the org ID in the path, not by a JWT.
type StorefrontHandler struct {
	catalogUC  usecase.CatalogUsecase
	checkoutUC usecase.CheckoutUsecase
	logger     *slog.Logger
}

// NewStorefrontHandler is the constructor for StorefrontHandler, injected by Fx.
func NewStorefrontHandler(catalogUC usecase.CatalogUsecase, checkoutUC usecase.CheckoutUsecase, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		catalogUC:  catalogUC,
		checkoutUC: checkoutUC,
		logger:     logger,
	}
}

// ListProducts returns the org's purchasable products.
func (h *StorefrontHandler) ListProducts(c echo.Context) error {
	filter := repository.ProductFilter{
		Category:   c.QueryParam("category"),
		ActiveOnly: true,
		Limit:      queryInt(c, "limit", 0),
	}

	products, err := h.catalogUC.ListProducts(c.Request().Context(), c.Param("orgID"), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, products, "")
}

// ListRetailers returns the org's pickup locations.
func (h *StorefrontHandler) ListRetailers(c echo.Context) error {
	retailers, err := h.catalogUC.ListRetailers(c.Request().Context(), c.Param("orgID"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, retailers, "")
}

// GetProduct returns one purchasable product.
func (h *StorefrontHandler) GetProduct(c echo.Context) error {
	product, err := h.catalogUC.GetProduct(c.Request().Context(), c.Param("orgID"), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product, "")
}

// PriceCart quotes a cart without creating an order.
func (h *StorefrontHandler) PriceCart(c echo.Context) error {
	var input usecase.PriceCartInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart input")
	}
	input.OrgID = c.Param("orgID")

	quote, err := h.checkoutUC.PriceCart(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, quote, "")
}

// Checkout places a pickup order and returns the payment intent.
func (h *StorefrontHandler) Checkout(c echo.Context) error {
	var input usecase.CheckoutInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid checkout input")
	}
	input.OrgID = c.Param("orgID")

	output, err := h.checkoutUC.Checkout(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Order placed successfully")
}

// GetOrder returns a customer's order status.
func (h *StorefrontHandler) GetOrder(c echo.Context) error {
	order, err := h.checkoutUC.GetOrder(c.Request().Context(), c.Param("orgID"), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, order, "")
}

// GetPickupQR renders the order's pickup code as a PNG.
func (h *StorefrontHandler) GetPickupQR(c echo.Context) error {
	// GetOrder first so the org boundary is enforced before rendering.
	order, err := h.checkoutUC.GetOrder(c.Request().Context(), c.Param("orgID"), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	png, err := h.checkoutUC.GetPickupQR(c.Request().Context(), order.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
