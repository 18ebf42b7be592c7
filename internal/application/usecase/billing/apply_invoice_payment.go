// Package billing contains the credit card billing-cycle use cases.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
)

// LedgerCategoryInvoicePayment is the ledger category assigned to
// invoice payment expenses.
const LedgerCategoryInvoicePayment = "Fatura Cartão"

// ApplyInvoicePaymentInput represents the input for invoice payment.
// Exactly one of Status ("paid") or PaidAmount drives the payment.
type ApplyInvoicePaymentInput struct {
	CardID     uuid.UUID
	InvoiceID  uuid.UUID
	UserID     uuid.UUID
	Status     *entity.InvoiceStatus
	PaidAmount *decimal.Decimal
}

// ApplyInvoicePaymentOutput represents the output of invoice payment.
type ApplyInvoicePaymentOutput struct {
	Invoice       *entity.Invoice
	PaymentAmount decimal.Decimal
}

// ApplyInvoicePaymentUseCase applies a full or partial payment to an
// invoice. Any positive payment amount also writes one expense entry in
// the user's ledger; that side effect is part of the payment, not an
// option the caller can suppress.
type ApplyInvoicePaymentUseCase struct {
	cardRepo    adapter.CreditCardRepository
	invoiceRepo adapter.InvoiceRepository
	ledgerRepo  adapter.LedgerRepository
	txManager   adapter.TxManager
	invalidator adapter.CacheInvalidator
	now         func() time.Time
}

// NewApplyInvoicePaymentUseCase creates a new ApplyInvoicePaymentUseCase instance.
func NewApplyInvoicePaymentUseCase(
	cardRepo adapter.CreditCardRepository,
	invoiceRepo adapter.InvoiceRepository,
	ledgerRepo adapter.LedgerRepository,
	txManager adapter.TxManager,
	invalidator adapter.CacheInvalidator,
) *ApplyInvoicePaymentUseCase {
	return &ApplyInvoicePaymentUseCase{
		cardRepo:    cardRepo,
		invoiceRepo: invoiceRepo,
		ledgerRepo:  ledgerRepo,
		txManager:   txManager,
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute performs the payment application.
func (uc *ApplyInvoicePaymentUseCase) Execute(ctx context.Context, input ApplyInvoicePaymentInput) (*ApplyInvoicePaymentOutput, error) {
	card, err := uc.cardRepo.FindByIDAndUser(ctx, input.CardID, input.UserID)
	if err != nil {
		return nil, cardLookupError(err)
	}

	invoice, err := uc.invoiceRepo.FindByID(ctx, input.InvoiceID)
	if err != nil {
		if errors.Is(err, domainerror.ErrInvoiceNotFound) {
			return nil, domainerror.NewBillingError(
				domainerror.ErrCodeInvoiceNotFound,
				"invoice not found",
				domainerror.ErrInvoiceNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}

	if invoice.CreditCardID != card.ID {
		return nil, domainerror.NewBillingError(
			domainerror.ErrCodeInvoiceNotOwned,
			"invoice does not belong to card",
			domainerror.ErrInvoiceNotOwnedByCard,
		)
	}

	paymentAmount, err := uc.applyPayment(invoice, input)
	if err != nil {
		return nil, err
	}

	ledgerWritten := false
	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		if err := uc.invoiceRepo.Update(ctx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		if paymentAmount.IsPositive() {
			entry := entity.NewExpenseEntry(
				input.UserID,
				uc.now(),
				fmt.Sprintf("Fatura %s - %02d/%d", card.Name, invoice.Month, invoice.Year),
				paymentAmount,
				LedgerCategoryInvoicePayment,
			)
			if err := uc.ledgerRepo.CreateExpense(ctx, entry); err != nil {
				return fmt.Errorf("failed to create ledger entry: %w", err)
			}
			ledgerWritten = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Applied invoice payment",
		"invoiceID", invoice.ID,
		"cardID", card.ID,
		"paymentAmount", paymentAmount,
		"status", invoice.Status,
	)

	if err := uc.invalidator.InvalidateCardData(ctx, input.UserID); err != nil {
		slog.Warn("Failed to invalidate card data cache", "userID", input.UserID, "error", err)
	}
	if ledgerWritten {
		if err := uc.invalidator.InvalidateTransactionData(ctx, input.UserID); err != nil {
			slog.Warn("Failed to invalidate transaction data cache", "userID", input.UserID, "error", err)
		}
	}

	return &ApplyInvoicePaymentOutput{
		Invoice:       invoice,
		PaymentAmount: paymentAmount,
	}, nil
}

// applyPayment mutates the invoice in memory and returns the payment
// amount produced by the request.
//
// Settling the invoice (status "paid") pays the remaining balance and
// pins paidAmount to the total, so a repeated settle produces a zero
// payment and no duplicate ledger entry. An explicit paid amount records
// a partial payment equal to the increase over the previous paid amount.
func (uc *ApplyInvoicePaymentUseCase) applyPayment(invoice *entity.Invoice, input ApplyInvoicePaymentInput) (decimal.Decimal, error) {
	switch {
	case input.Status != nil:
		if *input.Status != entity.InvoiceStatusPaid {
			return decimal.Zero, domainerror.NewBillingError(
				domainerror.ErrCodeInvalidInvoiceStatus,
				"only the 'paid' status can be applied through payment",
				domainerror.ErrInvalidInvoiceStatus,
			)
		}
		paymentAmount := invoice.Total.Sub(invoice.PaidAmount)
		if paymentAmount.IsNegative() {
			paymentAmount = decimal.Zero
		}
		invoice.PaidAmount = invoice.Total
		invoice.Status = entity.InvoiceStatusPaid
		invoice.UpdatedAt = uc.now()
		return paymentAmount, nil

	case input.PaidAmount != nil:
		if !input.PaidAmount.GreaterThan(invoice.PaidAmount) {
			return decimal.Zero, domainerror.NewBillingError(
				domainerror.ErrCodeInvalidPaymentAmount,
				"paid amount must exceed the amount already paid",
				domainerror.ErrInvalidPaymentAmount,
			)
		}
		paymentAmount := input.PaidAmount.Sub(invoice.PaidAmount)
		invoice.PaidAmount = *input.PaidAmount
		invoice.UpdatedAt = uc.now()
		return paymentAmount, nil

	default:
		return decimal.Zero, domainerror.NewBillingError(
			domainerror.ErrCodeMissingBillingFields,
			"either status or paid amount is required",
			nil,
		)
	}
}
