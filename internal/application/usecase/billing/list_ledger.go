package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
)

// ListLedgerInput represents the input for listing a user's ledger entries.
type ListLedgerInput struct {
	UserID uuid.UUID
}

// ListLedgerOutput represents the result of listing ledger entries.
type ListLedgerOutput struct {
	Entries []*entity.LedgerEntry
}

// ListLedgerUseCase returns the ledger entries recorded for a user,
// including the expense entries produced by invoice payments.
type ListLedgerUseCase struct {
	ledgerRepo adapter.LedgerRepository
}

// NewListLedgerUseCase creates a new instance of ListLedgerUseCase.
func NewListLedgerUseCase(ledgerRepo adapter.LedgerRepository) *ListLedgerUseCase {
	return &ListLedgerUseCase{ledgerRepo: ledgerRepo}
}

// Execute retrieves the user's ledger entries, newest first.
func (uc *ListLedgerUseCase) Execute(ctx context.Context, input ListLedgerInput) (*ListLedgerOutput, error) {
	entries, err := uc.ledgerRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return &ListLedgerOutput{Entries: entries}, nil
}
