// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
	"github.com/cardledger/backend/internal/integration/persistence/model"
)

// invoiceRepository implements the adapter.InvoiceRepository interface.
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance.
func NewInvoiceRepository(db *gorm.DB) adapter.InvoiceRepository {
	return &invoiceRepository{
		db: db,
	}
}

// CreateOrFetch inserts the invoice; when another writer won the race on
// the (credit_card_id, month, year) unique key, the existing row is
// fetched and returned instead of surfacing the constraint violation.
func (r *invoiceRepository) CreateOrFetch(ctx context.Context, invoice *entity.Invoice) (*entity.Invoice, error) {
	invoiceModel := model.InvoiceFromEntity(invoice)
	result := dbFromContext(ctx, r.db).Create(invoiceModel)
	if result.Error != nil {
		if !isUniqueViolation(result.Error) {
			return nil, result.Error
		}

		existing, err := r.FindByPeriod(ctx, invoice.CreditCardID, invoice.Month, invoice.Year)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			// Lost the race but the winner's row is not visible; let the
			// caller retry.
			return nil, result.Error
		}
		return existing, nil
	}
	return invoiceModel.ToEntity(), nil
}

// FindByID retrieves an invoice by its ID.
func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoiceModel model.InvoiceModel
	result := dbFromContext(ctx, r.db).Where("id = ?", id).First(&invoiceModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrInvoiceNotFound
		}
		return nil, result.Error
	}
	return invoiceModel.ToEntity(), nil
}

// FindByPeriod retrieves the unique invoice for a card period, or nil
// when none exists yet.
func (r *invoiceRepository) FindByPeriod(ctx context.Context, cardID uuid.UUID, month, year int) (*entity.Invoice, error) {
	var invoiceModel model.InvoiceModel
	result := dbFromContext(ctx, r.db).
		Where("credit_card_id = ? AND month = ? AND year = ?", cardID, month, year).
		First(&invoiceModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return invoiceModel.ToEntity(), nil
}

// FindOutstandingByCard retrieves all open or closed invoices of a card.
func (r *invoiceRepository) FindOutstandingByCard(ctx context.Context, cardID uuid.UUID) ([]*entity.Invoice, error) {
	var invoiceModels []model.InvoiceModel
	result := dbFromContext(ctx, r.db).
		Where("credit_card_id = ? AND status IN ?", cardID, []string{
			string(entity.InvoiceStatusOpen),
			string(entity.InvoiceStatusClosed),
		}).
		Order("year ASC, month ASC").
		Find(&invoiceModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toInvoiceEntities(invoiceModels), nil
}

// FindByCard retrieves all invoices of a card, newest period first.
func (r *invoiceRepository) FindByCard(ctx context.Context, cardID uuid.UUID) ([]*entity.Invoice, error) {
	var invoiceModels []model.InvoiceModel
	result := dbFromContext(ctx, r.db).
		Where("credit_card_id = ?", cardID).
		Order("year DESC, month DESC").
		Find(&invoiceModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toInvoiceEntities(invoiceModels), nil
}

// Update persists the invoice's mutable fields.
func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	invoiceModel := model.InvoiceFromEntity(invoice)
	result := dbFromContext(ctx, r.db).Save(invoiceModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// IncrementTotal atomically adds a value to the invoice's total.
func (r *invoiceRepository) IncrementTotal(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	result := dbFromContext(ctx, r.db).
		Model(&model.InvoiceModel{}).
		Where("id = ?", id).
		Update("total", gorm.Expr("total + ?", value))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrInvoiceNotFound
	}
	return nil
}

// RecalculateTotal sets the invoice total to the sum of its current
// purchases, computed in a single statement so the derivation and the
// write cannot interleave with other writers.
func (r *invoiceRepository) RecalculateTotal(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).
		Model(&model.InvoiceModel{}).
		Where("id = ?", id).
		Update("total", gorm.Expr(
			"(SELECT COALESCE(SUM(value), 0) FROM purchases WHERE purchases.invoice_id = ?)", id,
		))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrInvoiceNotFound
	}
	return nil
}

func toInvoiceEntities(models []model.InvoiceModel) []*entity.Invoice {
	invoices := make([]*entity.Invoice, len(models))
	for i, im := range models {
		invoices[i] = im.ToEntity()
	}
	return invoices
}

// isUniqueViolation recognizes a unique-constraint failure across the
// dialects in use: gorm's translated error for postgres (pgx) and the
// raw message of the in-memory sqlite used by tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
