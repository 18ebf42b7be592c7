// Package dependency provides dependency injection for the application.
package dependency

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cardledger/backend/config"
	"github.com/cardledger/backend/internal/application/usecase/billing"
	"github.com/cardledger/backend/internal/application/usecase/card"
	"github.com/cardledger/backend/internal/infra/server/router"
	"github.com/cardledger/backend/internal/integration/adapters"
	"github.com/cardledger/backend/internal/integration/cache"
	"github.com/cardledger/backend/internal/integration/entrypoint/controller"
	"github.com/cardledger/backend/internal/integration/entrypoint/middleware"
	"github.com/cardledger/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Router *router.Router
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Injector {
	// Create repositories
	cardRepo := persistence.NewCreditCardRepository(db)
	invoiceRepo := persistence.NewInvoiceRepository(db)
	purchaseRepo := persistence.NewPurchaseRepository(db)
	ledgerRepo := persistence.NewLedgerRepository(db)
	txManager := persistence.NewTxManager(db)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)
	invalidator := cache.NewRedisInvalidator(redisClient)

	// Create billing use cases
	invoiceLifecycle := billing.NewInvoiceLifecycle(invoiceRepo)
	allocateUseCase := billing.NewAllocatePurchaseUseCase(cardRepo, invoiceRepo, purchaseRepo, invoiceLifecycle, txManager, invalidator)
	payInvoiceUseCase := billing.NewApplyInvoicePaymentUseCase(cardRepo, invoiceRepo, ledgerRepo, txManager, invalidator)
	deletePurchaseUseCase := billing.NewDeletePurchaseUseCase(cardRepo, invoiceRepo, purchaseRepo, invoiceLifecycle, txManager, invalidator)
	statementUseCase := billing.NewGetCardStatementUseCase(cardRepo, invoiceRepo, purchaseRepo)
	availableLimitUseCase := billing.NewGetAvailableLimitUseCase(cardRepo, invoiceRepo)
	listLedgerUseCase := billing.NewListLedgerUseCase(ledgerRepo)

	// Create card use cases
	createCardUseCase := card.NewCreateCardUseCase(cardRepo)
	listCardsUseCase := card.NewListCardsUseCase(cardRepo, invoiceRepo)
	updateCardUseCase := card.NewUpdateCardUseCase(cardRepo)

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	})

	creditCardController := controller.NewCreditCardController(
		createCardUseCase,
		listCardsUseCase,
		updateCardUseCase,
		statementUseCase,
		availableLimitUseCase,
		allocateUseCase,
		payInvoiceUseCase,
		deletePurchaseUseCase,
	)

	ledgerController := controller.NewLedgerController(listLedgerUseCase)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	var writeThrottle *middleware.WriteThrottle
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		writeThrottle = middleware.NewWriteThrottleWithConfig(1000, 1*time.Minute)
	} else {
		writeThrottle = middleware.NewWriteThrottle()
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	r := router.NewRouter(healthController, creditCardController, ledgerController, writeThrottle, authMiddleware)

	return &Injector{
		Config: cfg,
		DB:     db,
		Router: r,
	}
}
