// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/domain/entity"
)

// InvoiceModel represents the invoices table in the database.
//
// The composite unique index on (credit_card_id, month, year) is the
// system's core uniqueness guarantee: at most one invoice per card
// period, enforced by the store rather than by a check-then-insert.
// Invoices carry no soft-delete column; the engine never deletes them.
type InvoiceModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreditCardID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_card_period"`
	Month        int             `gorm:"not null;uniqueIndex:idx_invoices_card_period;check:month >= 1 AND month <= 12"`
	Year         int             `gorm:"not null;uniqueIndex:idx_invoices_card_period"`
	ClosingDate  time.Time       `gorm:"type:date;not null"`
	DueDate      time.Time       `gorm:"type:date;not null;index"`
	Status       string          `gorm:"type:varchar(10);not null;default:'open';index"`
	Total        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the InvoiceModel.
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToEntity converts an InvoiceModel to a domain Invoice entity.
func (m *InvoiceModel) ToEntity() *entity.Invoice {
	return &entity.Invoice{
		ID:           m.ID,
		CreditCardID: m.CreditCardID,
		Month:        m.Month,
		Year:         m.Year,
		ClosingDate:  m.ClosingDate,
		DueDate:      m.DueDate,
		Status:       entity.InvoiceStatus(m.Status),
		Total:        m.Total,
		PaidAmount:   m.PaidAmount,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// InvoiceFromEntity creates an InvoiceModel from a domain Invoice entity.
func InvoiceFromEntity(invoice *entity.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:           invoice.ID,
		CreditCardID: invoice.CreditCardID,
		Month:        invoice.Month,
		Year:         invoice.Year,
		ClosingDate:  invoice.ClosingDate,
		DueDate:      invoice.DueDate,
		Status:       string(invoice.Status),
		Total:        invoice.Total,
		PaidAmount:   invoice.PaidAmount,
		CreatedAt:    invoice.CreatedAt,
		UpdatedAt:    invoice.UpdatedAt,
	}
}
