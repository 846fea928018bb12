package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"canopy/internal/delivery/http/middleware"
	"canopy/internal/delivery/http/response"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CatalogHandler holds dependencies for catalog management handlers.
type CatalogHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler, injected by Fx.
func NewCatalogHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: logger,
	}
}

// CreateProduct adds a product to the org's catalog.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var input usecase.CreateProductInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}

	product, err := h.uc.CreateProduct(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, product, "Product created successfully")
}

// GetProduct retrieves one product.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	product, err := h.uc.GetProduct(c.Request().Context(), middleware.OrgID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product, "")
}

// ListProducts retrieves the org's products.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	filter := repository.ProductFilter{
		Category:   c.QueryParam("category"),
		ActiveOnly: c.QueryParam("active") == "true",
		Limit:      queryInt(c, "limit", 0),
	}

	products, err := h.uc.ListProducts(c.Request().Context(), middleware.OrgID(c), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, products, "")
}

// UpdateProduct replaces a product.
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	var input usecase.UpdateProductInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}
	input.ID = c.Param("id")

	product, err := h.uc.UpdateProduct(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product, "Product updated successfully")
}

// DeleteProduct removes a product from the catalog.
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	if err := h.uc.DeleteProduct(c.Request().Context(), middleware.OrgID(c), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Product deleted successfully")
}

// CreateRetailer adds a retailer location to the org.
func (h *CatalogHandler) CreateRetailer(c echo.Context) error {
	var input usecase.CreateRetailerInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid retailer input")
	}

	retailer, err := h.uc.CreateRetailer(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, retailer, "Retailer created successfully")
}

// ListRetailers retrieves the org's retailers.
func (h *CatalogHandler) ListRetailers(c echo.Context) error {
	retailers, err := h.uc.ListRetailers(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, retailers, "")
}

// CreateCoupon adds a coupon to the org.
func (h *CatalogHandler) CreateCoupon(c echo.Context) error {
	var input usecase.CreateCouponInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid coupon input")
	}

	coupon, err := h.uc.CreateCoupon(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, coupon, "Coupon created successfully")
}

// ListCoupons retrieves the org's coupons.
func (h *CatalogHandler) ListCoupons(c echo.Context) error {
	coupons, err := h.uc.ListCoupons(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, coupons, "")
}

// SearchMarket proxies a catalog search through the CannMenus client.
func (h *CatalogHandler) SearchMarket(c echo.Context) error {
	search := service.CatalogSearch{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		State:    c.QueryParam("state"),
		Limit:    queryInt(c, "limit", 0),
	}

	products, err := h.uc.SearchMarket(c.Request().Context(), search)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, products, "")
}

// queryInt parses an integer query parameter, falling back on any
// missing or malformed value.
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return n
}
