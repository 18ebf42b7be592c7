// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cardledger/backend/internal/integration/entrypoint/controller"
	"github.com/cardledger/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine               *gin.Engine
	healthController     *controller.HealthController
	creditCardController *controller.CreditCardController
	ledgerController     *controller.LedgerController
	writeThrottle        *middleware.WriteThrottle
	authMiddleware       *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	creditCardController *controller.CreditCardController,
	ledgerController *controller.LedgerController,
	writeThrottle *middleware.WriteThrottle,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:     healthController,
		creditCardController: creditCardController,
		ledgerController:     ledgerController,
		writeThrottle:        writeThrottle,
		authMiddleware:       authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// API v1 group
	v1 := r.engine.Group("/api/v1")
	{
		// Card routes (require authentication)
		if r.creditCardController != nil && r.authMiddleware != nil {
			cards := v1.Group("/cards")
			cards.Use(r.authMiddleware.Authenticate())
			{
				cards.GET("", r.creditCardController.List)
				cards.POST("", r.writeThrottle.Middleware(), r.creditCardController.Create)
				cards.PATCH("/:id", r.writeThrottle.Middleware(), r.creditCardController.Update)
				cards.GET("/:id/statement", r.creditCardController.GetStatement)
				cards.GET("/:id/limit", r.creditCardController.GetAvailableLimit)
				cards.POST("/:id/purchases", r.writeThrottle.Middleware(), r.creditCardController.AllocatePurchase)
				cards.PATCH("/:id/invoices/:invoiceId", r.writeThrottle.Middleware(), r.creditCardController.PayInvoice)
			}

			// Purchase deletion is addressed by purchase ID alone, the
			// ownership check happens in the use case.
			purchases := v1.Group("/purchases")
			purchases.Use(r.authMiddleware.Authenticate())
			{
				purchases.DELETE("/:id", r.writeThrottle.Middleware(), r.creditCardController.DeletePurchase)
			}
		}

		// Ledger routes (require authentication)
		if r.ledgerController != nil && r.authMiddleware != nil {
			ledger := v1.Group("/ledger")
			ledger.Use(r.authMiddleware.Authenticate())
			{
				ledger.GET("", r.ledgerController.List)
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
