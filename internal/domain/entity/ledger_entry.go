// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryType represents the type of a ledger entry.
type LedgerEntryType string

const (
	LedgerEntryTypeExpense LedgerEntryType = "expense"
	LedgerEntryTypeIncome  LedgerEntryType = "income"
)

// LedgerEntry represents a transaction in the user's ledger. The billing
// engine only ever writes expense entries, one per invoice payment.
type LedgerEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Date        time.Time
	Description string
	Value       decimal.Decimal
	Category    string
	Type        LedgerEntryType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewExpenseEntry creates a new expense LedgerEntry.
func NewExpenseEntry(userID uuid.UUID, date time.Time, description string, value decimal.Decimal, category string) *LedgerEntry {
	now := time.Now().UTC()

	return &LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Description: description,
		Value:       value,
		Category:    category,
		Type:        LedgerEntryTypeExpense,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
