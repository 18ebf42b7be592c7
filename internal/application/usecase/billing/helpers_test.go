package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/application/usecase/billing"
	"github.com/cardledger/backend/internal/domain/entity"
	"github.com/cardledger/backend/internal/integration/cache"
	"github.com/cardledger/backend/internal/integration/persistence"
	"github.com/cardledger/backend/internal/integration/persistence/model"
)

// testEnv wires the billing use cases against an in-memory SQLite store
// and an embedded Redis, the same composition the injector builds in
// production.
type testEnv struct {
	db           *gorm.DB
	cardRepo     adapter.CreditCardRepository
	invoiceRepo  adapter.InvoiceRepository
	purchaseRepo adapter.PurchaseRepository
	ledgerRepo   adapter.LedgerRepository
	txManager    adapter.TxManager
	invalidator  adapter.CacheInvalidator
	lifecycle    *billing.InvoiceLifecycle

	allocate  *billing.AllocatePurchaseUseCase
	pay       *billing.ApplyInvoicePaymentUseCase
	delete    *billing.DeletePurchaseUseCase
	statement *billing.GetCardStatementUseCase
	limit     *billing.GetAvailableLimitUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.CreditCardModel{},
		&model.InvoiceModel{},
		&model.PurchaseModel{},
		&model.LedgerEntryModel{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	redisServer := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	env := &testEnv{
		db:           db,
		cardRepo:     persistence.NewCreditCardRepository(db),
		invoiceRepo:  persistence.NewInvoiceRepository(db),
		purchaseRepo: persistence.NewPurchaseRepository(db),
		ledgerRepo:   persistence.NewLedgerRepository(db),
		txManager:    persistence.NewTxManager(db),
		invalidator:  cache.NewRedisInvalidator(redisClient),
	}

	env.lifecycle = billing.NewInvoiceLifecycle(env.invoiceRepo)
	env.allocate = billing.NewAllocatePurchaseUseCase(env.cardRepo, env.invoiceRepo, env.purchaseRepo, env.lifecycle, env.txManager, env.invalidator)
	env.pay = billing.NewApplyInvoicePaymentUseCase(env.cardRepo, env.invoiceRepo, env.ledgerRepo, env.txManager, env.invalidator)
	env.delete = billing.NewDeletePurchaseUseCase(env.cardRepo, env.invoiceRepo, env.purchaseRepo, env.lifecycle, env.txManager, env.invalidator)
	env.statement = billing.NewGetCardStatementUseCase(env.cardRepo, env.invoiceRepo, env.purchaseRepo)
	env.limit = billing.NewGetAvailableLimitUseCase(env.cardRepo, env.invoiceRepo)

	return env
}

// createCard persists a card for the given user and returns it.
func (e *testEnv) createCard(t *testing.T, userID uuid.UUID, limit string, closingDay, dueDay int) *entity.CreditCard {
	t.Helper()

	card := entity.NewCreditCard(userID, "Test Card", dec(limit), closingDay, dueDay)
	if err := e.cardRepo.Create(context.Background(), card); err != nil {
		t.Fatalf("failed to create card: %v", err)
	}
	return card
}

func (e *testEnv) countRows(t *testing.T, m any) int {
	t.Helper()

	var count int64
	if err := e.db.Model(m).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return int(count)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
