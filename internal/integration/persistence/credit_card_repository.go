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

// creditCardRepository implements the adapter.CreditCardRepository interface.
type creditCardRepository struct {
	db *gorm.DB
}

// NewCreditCardRepository creates a new credit card repository instance.
func NewCreditCardRepository(db *gorm.DB) adapter.CreditCardRepository {
	return &creditCardRepository{
		db: db,
	}
}

// Create creates a new credit card in the database.
func (r *creditCardRepository) Create(ctx context.Context, card *entity.CreditCard) error {
	cardModel := model.CreditCardFromEntity(card)
	result := dbFromContext(ctx, r.db).Create(cardModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a card by its ID regardless of owner.
func (r *creditCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CreditCard, error) {
	var cardModel model.CreditCardModel
	result := dbFromContext(ctx, r.db).Where("id = ?", id).First(&cardModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrCardNotFound
		}
		return nil, result.Error
	}
	return cardModel.ToEntity(), nil
}

// FindByIDAndUser retrieves a card by ID, scoped to its owner.
func (r *creditCardRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*entity.CreditCard, error) {
	var cardModel model.CreditCardModel
	result := dbFromContext(ctx, r.db).
		Where("id = ? AND user_id = ?", id, userID).
		First(&cardModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrCardNotFound
		}
		return nil, result.Error
	}
	return cardModel.ToEntity(), nil
}

// FindByUser retrieves all cards for a given user.
func (r *creditCardRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.CreditCard, error) {
	var cardModels []model.CreditCardModel
	result := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cardModels)
	if result.Error != nil {
		return nil, result.Error
	}

	cards := make([]*entity.CreditCard, len(cardModels))
	for i, cm := range cardModels {
		cards[i] = cm.ToEntity()
	}
	return cards, nil
}

// Update updates an existing card in the database.
func (r *creditCardRepository) Update(ctx context.Context, card *entity.CreditCard) error {
	cardModel := model.CreditCardFromEntity(card)
	result := dbFromContext(ctx, r.db).Save(cardModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Delete soft-deletes a card from the database.
func (r *creditCardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&model.CreditCardModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	return nil
}
