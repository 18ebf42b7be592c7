// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
	"github.com/cardledger/backend/internal/integration/persistence/model"
)

// purchaseRepository implements the adapter.PurchaseRepository interface.
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository instance.
func NewPurchaseRepository(db *gorm.DB) adapter.PurchaseRepository {
	return &purchaseRepository{
		db: db,
	}
}

// Create creates a new purchase row in the database.
func (r *purchaseRepository) Create(ctx context.Context, purchase *entity.Purchase) error {
	purchaseModel := model.PurchaseFromEntity(purchase)
	result := dbFromContext(ctx, r.db).Create(purchaseModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a purchase by its ID.
func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchaseModel model.PurchaseModel
	result := dbFromContext(ctx, r.db).Where("id = ?", id).First(&purchaseModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrPurchaseNotFound
		}
		return nil, result.Error
	}
	return purchaseModel.ToEntity(), nil
}

// FindByInvoice retrieves all purchases billed against an invoice.
func (r *purchaseRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*entity.Purchase, error) {
	var purchaseModels []model.PurchaseModel
	result := dbFromContext(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("date ASC, created_at ASC").
		Find(&purchaseModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toPurchaseEntities(purchaseModels), nil
}

// FindByParent retrieves all rows of an installment group, ordered by
// installment index.
func (r *purchaseRepository) FindByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Purchase, error) {
	var purchaseModels []model.PurchaseModel
	result := dbFromContext(ctx, r.db).
		Where("parent_purchase_id = ?", parentID).
		Order("current_installment ASC").
		Find(&purchaseModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toPurchaseEntities(purchaseModels), nil
}

// DeleteByID removes a single purchase row.
func (r *purchaseRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&model.PurchaseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrPurchaseNotFound
	}
	return nil
}

// DeleteByParent removes every row of an installment group.
func (r *purchaseRepository) DeleteByParent(ctx context.Context, parentID uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&model.PurchaseModel{}, "parent_purchase_id = ?", parentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrPurchaseNotFound
	}
	return nil
}

func toPurchaseEntities(models []model.PurchaseModel) []*entity.Purchase {
	purchases := make([]*entity.Purchase, len(models))
	for i, pm := range models {
		purchases[i] = pm.ToEntity()
	}
	return purchases
}
