// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/domain/entity"
)

// InvoiceRepository defines the interface for invoice persistence operations.
//
// The store enforces a unique key on (credit_card_id, month, year); that
// constraint, not a client-side check, is what guarantees at most one
// invoice per card period under concurrent writers.
type InvoiceRepository interface {
	// CreateOrFetch inserts the invoice, or, when another writer already
	// created one for the same (card, month, year), fetches and returns
	// the existing row instead of failing. The returned invoice is always
	// the persisted one.
	CreateOrFetch(ctx context.Context, invoice *entity.Invoice) (*entity.Invoice, error)

	// FindByID retrieves an invoice by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)

	// FindByPeriod retrieves the unique invoice for a card period.
	// Returns (nil, nil) when no invoice exists for that period yet.
	FindByPeriod(ctx context.Context, cardID uuid.UUID, month, year int) (*entity.Invoice, error)

	// FindOutstandingByCard retrieves all invoices of a card with status
	// open or closed.
	FindOutstandingByCard(ctx context.Context, cardID uuid.UUID) ([]*entity.Invoice, error)

	// FindByCard retrieves all invoices of a card, newest period first.
	FindByCard(ctx context.Context, cardID uuid.UUID) ([]*entity.Invoice, error)

	// Update persists the invoice's mutable fields (status, total, paid amount).
	Update(ctx context.Context, invoice *entity.Invoice) error

	// IncrementTotal atomically adds a value to the invoice's total.
	IncrementTotal(ctx context.Context, id uuid.UUID, value decimal.Decimal) error

	// RecalculateTotal sets the invoice total to the sum of its current
	// purchases' values, computed in the store. Always a full
	// recomputation, never a delta.
	RecalculateTotal(ctx context.Context, id uuid.UUID) error
}
