// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	// InvoiceStatusOpen is the default state; the invoice accepts new purchases.
	InvoiceStatusOpen InvoiceStatus = "open"
	// InvoiceStatusClosed means the billing period has ended; the amount due
	// is still payable but no new purchases are allocated to it.
	InvoiceStatusClosed InvoiceStatus = "closed"
	// InvoiceStatusPaid is terminal for the period.
	InvoiceStatusPaid InvoiceStatus = "paid"
)

// Invoice represents one monthly billing cycle of a credit card.
// At most one invoice exists per (credit card, month, year).
type Invoice struct {
	ID           uuid.UUID
	CreditCardID uuid.UUID
	Month        int // 1-12
	Year         int
	ClosingDate  time.Time
	DueDate      time.Time
	Status       InvoiceStatus
	Total        decimal.Decimal // Sum of the installment values of its purchases
	PaidAmount   decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewInvoice creates a new open Invoice for the given period.
func NewInvoice(creditCardID uuid.UUID, month, year int, closingDate, dueDate time.Time) *Invoice {
	now := time.Now().UTC()

	return &Invoice{
		ID:           uuid.New(),
		CreditCardID: creditCardID,
		Month:        month,
		Year:         year,
		ClosingDate:  closingDate,
		DueDate:      dueDate,
		Status:       InvoiceStatusOpen,
		Total:        decimal.Zero,
		PaidAmount:   decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsOutstanding reports whether the invoice still counts against the
// card's credit limit (open or closed, not yet fully paid).
func (i *Invoice) IsOutstanding() bool {
	return i.Status == InvoiceStatusOpen || i.Status == InvoiceStatusClosed
}

// RemainingBalance returns the amount still owed on the invoice.
func (i *Invoice) RemainingBalance() decimal.Decimal {
	return i.Total.Sub(i.PaidAmount)
}

// IsClosed reports whether the billing period has elapsed at the given
// instant. This is a derived property; the stored status is never
// auto-flipped by elapsed time.
func (i *Invoice) IsClosed(now time.Time) bool {
	return now.After(i.ClosingDate)
}

// InvoiceWithPurchases represents an invoice with its purchases loaded.
type InvoiceWithPurchases struct {
	Invoice   *Invoice
	Purchases []*Purchase
}
