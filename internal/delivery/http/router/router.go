// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"canopy/internal/delivery/http/middleware"
	"canopy/internal/delivery/http/router/handler"
	"canopy/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	CatalogHandler    *handler.CatalogHandler
	StorefrontHandler *handler.StorefrontHandler
	OrderHandler      *handler.OrderHandler
	UsageHandler      *handler.UsageHandler
	GoalHandler       *handler.GoalHandler
	LoyaltyHandler    *handler.LoyaltyHandler
	PlaybookHandler   *handler.PlaybookHandler
	PackagingHandler  *handler.PackagingHandler
	IntelHandler      *handler.IntelHandler
	WebhookHandler    *handler.WebhookHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	params RouterParams
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{params: params}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	p := r.params

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", p.AuthHandler.Register)
		authGroup.POST("/login", p.AuthHandler.Login)
		authGroup.POST("/google", p.AuthHandler.GoogleLogin)
		authGroup.POST("/refresh", p.AuthHandler.Refresh)
	}

	// Public storefront, keyed by org ID in the path
	storeGroup := e.Group("/store/:orgID")
	{
		storeGroup.GET("/products", p.StorefrontHandler.ListProducts)
		storeGroup.GET("/products/:id", p.StorefrontHandler.GetProduct)
		storeGroup.GET("/retailers", p.StorefrontHandler.ListRetailers)
		storeGroup.POST("/cart/price", p.StorefrontHandler.PriceCart)
		storeGroup.POST("/checkout", p.StorefrontHandler.Checkout)
		storeGroup.GET("/orders/:id", p.StorefrontHandler.GetOrder)
		storeGroup.GET("/orders/:id/qr", p.StorefrontHandler.GetPickupQR)
	}

	// Payment gateway callbacks, verified by signature rather than JWT
	e.POST("/webhooks/:provider", p.WebhookHandler.HandleWebhook)

	// Dashboard routes that require authentication
	dash := e.Group("/dashboard")
	dash.Use(p.AuthMiddleware.Authenticate)
	{
		dash.POST("/products", p.CatalogHandler.CreateProduct)
		dash.GET("/products", p.CatalogHandler.ListProducts)
		dash.GET("/products/:id", p.CatalogHandler.GetProduct)
		dash.PUT("/products/:id", p.CatalogHandler.UpdateProduct)
		dash.DELETE("/products/:id", p.CatalogHandler.DeleteProduct)

		dash.POST("/retailers", p.CatalogHandler.CreateRetailer)
		dash.GET("/retailers", p.CatalogHandler.ListRetailers)

		dash.POST("/coupons", p.CatalogHandler.CreateCoupon)
		dash.GET("/coupons", p.CatalogHandler.ListCoupons)

		dash.GET("/market/search", p.CatalogHandler.SearchMarket)

		dash.GET("/orders", p.OrderHandler.ListOrders)
		dash.GET("/orders/:id", p.OrderHandler.GetOrder)
		dash.POST("/orders/:id/transition", p.OrderHandler.TransitionOrder)

		dash.GET("/usage", p.UsageHandler.GetUsage)

		dash.POST("/goals", p.GoalHandler.CreateGoal)
		dash.GET("/goals", p.GoalHandler.ListGoals)
		dash.GET("/goals/:id", p.GoalHandler.GetGoal)
		dash.PUT("/goals/:id", p.GoalHandler.UpdateGoal)
		dash.POST("/goals/:id/progress", p.GoalHandler.RecordProgress)
		dash.DELETE("/goals/:id", p.GoalHandler.DeleteGoal)

		dash.GET("/loyalty", p.LoyaltyHandler.GetSettings)
		dash.PUT("/loyalty", p.LoyaltyHandler.SaveSettings)

		dash.POST("/playbooks", p.PlaybookHandler.CreatePlaybook)
		dash.GET("/playbooks", p.PlaybookHandler.ListPlaybooks)
		dash.GET("/playbooks/:id", p.PlaybookHandler.GetPlaybook)
		dash.PUT("/playbooks/:id", p.PlaybookHandler.UpdatePlaybook)
		dash.DELETE("/playbooks/:id", p.PlaybookHandler.DeletePlaybook)
		dash.POST("/playbooks/:id/execute", p.PlaybookHandler.Execute)

		dash.POST("/packaging", p.PackagingHandler.Submit)
		dash.GET("/packaging", p.PackagingHandler.ListAnalyses)
		dash.GET("/packaging/:id", p.PackagingHandler.GetAnalysis)

		dash.POST("/intel/competitors", p.IntelHandler.SnapshotCompetitors)
		dash.GET("/intel/competitors", p.IntelHandler.ListSnapshots)
	}

	// Billing-sensitive routes require the admin role on top of a
	// valid session.
	adminGroup := e.Group("/dashboard/admin")
	adminGroup.Use(p.AuthMiddleware.Authenticate)
	adminGroup.Use(p.AuthMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.POST("/usage", p.UsageHandler.RecordUsage)
	}
}
