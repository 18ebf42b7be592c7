// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/domain/entity"
)

// PurchaseModel represents the purchases table in the database.
// Purchases are hard-deleted: invoice totals are recomputed as the sum
// of remaining rows, which requires deleted rows to be really gone.
type PurchaseModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description        string          `gorm:"type:varchar(255);not null"`
	Value              decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalValue         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Category           string          `gorm:"type:varchar(100)"`
	Date               time.Time       `gorm:"type:date;not null"`
	Installments       int             `gorm:"not null;default:1;check:installments >= 1"`
	CurrentInstallment int             `gorm:"not null;default:1"`
	ParentPurchaseID   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the PurchaseModel.
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToEntity converts a PurchaseModel to a domain Purchase entity.
func (m *PurchaseModel) ToEntity() *entity.Purchase {
	return &entity.Purchase{
		ID:                 m.ID,
		InvoiceID:          m.InvoiceID,
		Description:        m.Description,
		Value:              m.Value,
		TotalValue:         m.TotalValue,
		Category:           m.Category,
		Date:               m.Date,
		Installments:       m.Installments,
		CurrentInstallment: m.CurrentInstallment,
		ParentPurchaseID:   m.ParentPurchaseID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// PurchaseFromEntity creates a PurchaseModel from a domain Purchase entity.
func PurchaseFromEntity(purchase *entity.Purchase) *PurchaseModel {
	return &PurchaseModel{
		ID:                 purchase.ID,
		InvoiceID:          purchase.InvoiceID,
		Description:        purchase.Description,
		Value:              purchase.Value,
		TotalValue:         purchase.TotalValue,
		Category:           purchase.Category,
		Date:               purchase.Date,
		Installments:       purchase.Installments,
		CurrentInstallment: purchase.CurrentInstallment,
		ParentPurchaseID:   purchase.ParentPurchaseID,
		CreatedAt:          purchase.CreatedAt,
		UpdatedAt:          purchase.UpdatedAt,
	}
}
