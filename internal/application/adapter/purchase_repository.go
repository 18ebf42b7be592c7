// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/domain/entity"
)

// PurchaseRepository defines the interface for purchase persistence operations.
type PurchaseRepository interface {
	// Create creates a new purchase row in the database.
	Create(ctx context.Context, purchase *entity.Purchase) error

	// FindByID retrieves a purchase by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)

	// FindByInvoice retrieves all purchases billed against an invoice.
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*entity.Purchase, error)

	// FindByParent retrieves all rows of an installment group.
	FindByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Purchase, error)

	// DeleteByID removes a single purchase row.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteByParent removes every row of an installment group.
	DeleteByParent(ctx context.Context, parentID uuid.UUID) error
}

// LedgerRepository defines the interface for writing ledger transactions.
// The billing engine uses it only when an invoice payment produces a
// positive payment amount.
type LedgerRepository interface {
	// CreateExpense creates an expense entry in the user's ledger.
	CreateExpense(ctx context.Context, entry *entity.LedgerEntry) error

	// FindByUser retrieves a user's ledger entries, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.LedgerEntry, error)
}
