// Package billing contains the credit card billing-cycle use cases.
package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	"github.com/cardledger/backend/internal/domain/valueobject"
)

// InvoiceLifecycle owns invoice creation and total recalculation. It is
// shared by the allocation and reconciliation use cases so invoice
// handling stays in one place.
type InvoiceLifecycle struct {
	invoiceRepo adapter.InvoiceRepository
}

// NewInvoiceLifecycle creates a new InvoiceLifecycle instance.
func NewInvoiceLifecycle(invoiceRepo adapter.InvoiceRepository) *InvoiceLifecycle {
	return &InvoiceLifecycle{
		invoiceRepo: invoiceRepo,
	}
}

// FindOrCreate returns the unique invoice for the card's period,
// creating an open zero-total invoice with materialized dates when none
// exists yet. Invoices are created lazily, only when a purchase or
// payment first needs the period. Creation is idempotent under
// concurrent callers: the repository resolves a lost insert race on the
// (card, month, year) key by re-fetching the winner's row.
func (s *InvoiceLifecycle) FindOrCreate(ctx context.Context, card *entity.CreditCard, period valueobject.InvoicePeriod) (*entity.Invoice, error) {
	existing, err := s.invoiceRepo.FindByPeriod(ctx, card.ID, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice for period %d/%d: %w", period.Month, period.Year, err)
	}
	if existing != nil {
		return existing, nil
	}

	closingDate, dueDate := period.MaterializeDates(card.ClosingDay, card.DueDay)
	invoice := entity.NewInvoice(card.ID, period.Month, period.Year, closingDate, dueDate)

	created, err := s.invoiceRepo.CreateOrFetch(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice for period %d/%d: %w", period.Month, period.Year, err)
	}

	if created.ID == invoice.ID {
		slog.Debug("Created invoice",
			"cardID", card.ID,
			"month", period.Month,
			"year", period.Year,
			"closingDate", closingDate,
			"dueDate", dueDate,
		)
	}

	return created, nil
}

// RecalculateTotal re-derives the invoice total from its current
// purchase set in the store. Recalculation is always from scratch so a
// multi-row deletion can never drift a total, even when one step of the
// batch is retried.
func (s *InvoiceLifecycle) RecalculateTotal(ctx context.Context, invoiceID uuid.UUID) error {
	if err := s.invoiceRepo.RecalculateTotal(ctx, invoiceID); err != nil {
		return fmt.Errorf("failed to recalculate invoice total: %w", err)
	}
	return nil
}
