// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase represents one charge against an invoice. A purchase split
// into N installments produces N Purchase rows, one per billed invoice,
// all sharing the same ParentPurchaseID.
type Purchase struct {
	ID                 uuid.UUID
	InvoiceID          uuid.UUID
	Description        string
	Value              decimal.Decimal // Per-installment amount charged to this invoice
	TotalValue         decimal.Decimal // Original full purchase amount before installment division
	Category           string
	Date               time.Time // Original purchase date, not the invoice period
	Installments       int       // Total installment count, >= 1
	CurrentInstallment int       // 1-based index within the group
	ParentPurchaseID   *uuid.UUID // Set iff Installments > 1
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPurchase creates a new Purchase entity.
func NewPurchase(
	invoiceID uuid.UUID,
	description string,
	value decimal.Decimal,
	totalValue decimal.Decimal,
	category string,
	date time.Time,
	installments int,
	currentInstallment int,
	parentPurchaseID *uuid.UUID,
) *Purchase {
	now := time.Now().UTC()

	return &Purchase{
		ID:                 uuid.New(),
		InvoiceID:          invoiceID,
		Description:        description,
		Value:              value,
		TotalValue:         totalValue,
		Category:           category,
		Date:               date,
		Installments:       installments,
		CurrentInstallment: currentInstallment,
		ParentPurchaseID:   parentPurchaseID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// IsInstallment reports whether the purchase belongs to an installment group.
func (p *Purchase) IsInstallment() bool {
	return p.ParentPurchaseID != nil
}
