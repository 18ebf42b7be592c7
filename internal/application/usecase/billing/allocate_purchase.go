// Package billing contains the credit card billing-cycle use cases.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
	"github.com/cardledger/backend/internal/domain/valueobject"
)

// AllocatePurchaseInput represents the input for purchase allocation.
type AllocatePurchaseInput struct {
	CardID       uuid.UUID
	UserID       uuid.UUID
	Description  string
	Value        decimal.Decimal // Full purchase value before installment division
	Category     string
	Date         time.Time
	Installments int // Defaults to 1 when zero
}

// AllocatePurchaseOutput represents the output of purchase allocation.
type AllocatePurchaseOutput struct {
	Statement    *entity.CreditCardStatement
	CreatedCount int
}

// AllocatePurchaseUseCase turns one purchase into correctly-dated
// installment rows, each billed against the invoice of its own period,
// after enforcing the card's credit limit.
type AllocatePurchaseUseCase struct {
	cardRepo     adapter.CreditCardRepository
	invoiceRepo  adapter.InvoiceRepository
	purchaseRepo adapter.PurchaseRepository
	lifecycle    *InvoiceLifecycle
	txManager    adapter.TxManager
	invalidator  adapter.CacheInvalidator
}

// NewAllocatePurchaseUseCase creates a new AllocatePurchaseUseCase instance.
func NewAllocatePurchaseUseCase(
	cardRepo adapter.CreditCardRepository,
	invoiceRepo adapter.InvoiceRepository,
	purchaseRepo adapter.PurchaseRepository,
	lifecycle *InvoiceLifecycle,
	txManager adapter.TxManager,
	invalidator adapter.CacheInvalidator,
) *AllocatePurchaseUseCase {
	return &AllocatePurchaseUseCase{
		cardRepo:     cardRepo,
		invoiceRepo:  invoiceRepo,
		purchaseRepo: purchaseRepo,
		lifecycle:    lifecycle,
		txManager:    txManager,
		invalidator:  invalidator,
	}
}

// Execute performs the purchase allocation.
func (uc *AllocatePurchaseUseCase) Execute(ctx context.Context, input AllocatePurchaseInput) (*AllocatePurchaseOutput, error) {
	installments := input.Installments
	if installments == 0 {
		installments = 1
	}
	if installments < 1 {
		return nil, domainerror.NewBillingError(
			domainerror.ErrCodeInvalidInstallments,
			"installments must be at least 1",
			domainerror.ErrInvalidInstallments,
		)
	}

	if !input.Value.IsPositive() {
		return nil, domainerror.NewBillingError(
			domainerror.ErrCodeInvalidPurchaseValue,
			"purchase value must be positive",
			domainerror.ErrInvalidPurchaseValue,
		)
	}

	card, err := uc.cardRepo.FindByIDAndUser(ctx, input.CardID, input.UserID)
	if err != nil {
		return nil, cardLookupError(err)
	}

	// The limit check happens once, against the full purchase value and
	// before any mutation: the entire obligation is reserved at purchase
	// time even though it bills over N periods. Rejection leaves no
	// partial installment rows behind.
	outstanding, err := uc.invoiceRepo.FindOutstandingByCard(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding invoices: %w", err)
	}
	available := availableLimit(card, outstanding)
	if input.Value.GreaterThan(available) {
		return nil, domainerror.NewBillingError(
			domainerror.ErrCodeCreditLimitExceeded,
			fmt.Sprintf("purchase of %s exceeds available limit of %s", input.Value.StringFixed(2), available.StringFixed(2)),
			domainerror.ErrCreditLimitExceeded,
		)
	}

	values := splitInstallments(input.Value, installments)

	var parentID *uuid.UUID
	if installments > 1 {
		id := uuid.New()
		parentID = &id
	}

	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		for i := 0; i < installments; i++ {
			installmentDate := valueobject.AddMonths(input.Date, i)
			period := valueobject.ResolveInvoicePeriod(installmentDate, card.ClosingDay, card.DueDay)

			invoice, err := uc.lifecycle.FindOrCreate(ctx, card, period)
			if err != nil {
				return err
			}

			description := input.Description
			if installments > 1 {
				description = fmt.Sprintf("%s (%d/%d)", input.Description, i+1, installments)
			}

			purchase := entity.NewPurchase(
				invoice.ID,
				description,
				values[i],
				input.Value,
				input.Category,
				input.Date,
				installments,
				i+1,
				parentID,
			)
			if err := uc.purchaseRepo.Create(ctx, purchase); err != nil {
				return fmt.Errorf("failed to create purchase installment %d/%d: %w", i+1, installments, err)
			}

			if err := uc.invoiceRepo.IncrementTotal(ctx, invoice.ID, values[i]); err != nil {
				return fmt.Errorf("failed to increment invoice total: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Allocated purchase",
		"cardID", card.ID,
		"userID", input.UserID,
		"value", input.Value,
		"installments", installments,
	)

	uc.invalidateCardData(ctx, input.UserID)

	statement, err := loadStatement(ctx, uc.invoiceRepo, uc.purchaseRepo, card)
	if err != nil {
		return nil, err
	}

	return &AllocatePurchaseOutput{
		Statement:    statement,
		CreatedCount: installments,
	}, nil
}

// invalidateCardData fires the post-commit invalidation hook. A failed
// invalidation never rolls back a committed allocation.
func (uc *AllocatePurchaseUseCase) invalidateCardData(ctx context.Context, userID uuid.UUID) {
	if err := uc.invalidator.InvalidateCardData(ctx, userID); err != nil {
		slog.Warn("Failed to invalidate card data cache", "userID", userID, "error", err)
	}
}

// splitInstallments divides the total into n equal parts of two decimal
// places, allocating the rounding remainder to the first installment so
// the parts always sum back to the exact total (100/3 = 33.34, 33.33,
// 33.33).
func splitInstallments(total decimal.Decimal, n int) []decimal.Decimal {
	per := total.Div(decimal.NewFromInt(int64(n))).RoundBank(2)
	values := make([]decimal.Decimal, n)
	rest := total
	for i := 1; i < n; i++ {
		values[i] = per
		rest = rest.Sub(per)
	}
	values[0] = rest
	return values
}

// loadStatement assembles the card view returned to the route layer:
// the card with every invoice and its purchases.
func loadStatement(
	ctx context.Context,
	invoiceRepo adapter.InvoiceRepository,
	purchaseRepo adapter.PurchaseRepository,
	card *entity.CreditCard,
) (*entity.CreditCardStatement, error) {
	invoices, err := invoiceRepo.FindByCard(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	statement := &entity.CreditCardStatement{
		Card:     card,
		Invoices: make([]*entity.InvoiceWithPurchases, 0, len(invoices)),
	}
	for _, invoice := range invoices {
		purchases, err := purchaseRepo.FindByInvoice(ctx, invoice.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list purchases: %w", err)
		}
		statement.Invoices = append(statement.Invoices, &entity.InvoiceWithPurchases{
			Invoice:   invoice,
			Purchases: purchases,
		})
	}

	return statement, nil
}
