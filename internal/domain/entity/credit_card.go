// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditCard represents a credit card whose purchases are billed in
// monthly invoices.
type CreditCard struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Limit      decimal.Decimal // Total credit limit, always >= 0
	ClosingDay int             // Calendar day of month (1-31) after which purchases roll to the next invoice
	DueDay     int             // Calendar day of month (1-31) on which an invoice's payment is due
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time // Soft-delete support
}

// NewCreditCard creates a new CreditCard entity.
func NewCreditCard(userID uuid.UUID, name string, limit decimal.Decimal, closingDay, dueDay int) *CreditCard {
	now := time.Now().UTC()

	return &CreditCard{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		Limit:      limit,
		ClosingDay: closingDay,
		DueDay:     dueDay,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreditCardStatement represents a card together with its invoices and
// their purchases, as returned to the route layer after a mutation.
type CreditCardStatement struct {
	Card     *CreditCard
	Invoices []*InvoiceWithPurchases
}
