// Package card contains credit card management use cases.
package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
)

// UpdateCardInput represents the input for card update. Nil fields are
// left unchanged. Cycle-day changes only affect invoices created
// afterwards; existing invoices keep the dates materialized at creation.
type UpdateCardInput struct {
	CardID     uuid.UUID
	UserID     uuid.UUID
	Name       *string
	Limit      *decimal.Decimal
	ClosingDay *int
	DueDay     *int
	IsActive   *bool
}

// UpdateCardOutput represents the output of card update.
type UpdateCardOutput struct {
	Card *entity.CreditCard
}

// UpdateCardUseCase handles credit card mutation.
type UpdateCardUseCase struct {
	cardRepo adapter.CreditCardRepository
}

// NewUpdateCardUseCase creates a new UpdateCardUseCase instance.
func NewUpdateCardUseCase(cardRepo adapter.CreditCardRepository) *UpdateCardUseCase {
	return &UpdateCardUseCase{
		cardRepo: cardRepo,
	}
}

// Execute performs the card update.
func (uc *UpdateCardUseCase) Execute(ctx context.Context, input UpdateCardInput) (*UpdateCardOutput, error) {
	card, err := uc.cardRepo.FindByIDAndUser(ctx, input.CardID, input.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrCardNotFound) {
			return nil, domainerror.NewBillingError(
				domainerror.ErrCodeCardNotFound,
				"credit card not found",
				domainerror.ErrCardNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find credit card: %w", err)
	}

	if input.Name != nil {
		card.Name = *input.Name
	}
	if input.Limit != nil {
		if input.Limit.IsNegative() {
			return nil, domainerror.NewBillingError(
				domainerror.ErrCodeInvalidCardLimit,
				"card limit must not be negative",
				domainerror.ErrInvalidCardLimit,
			)
		}
		card.Limit = *input.Limit
	}
	if input.ClosingDay != nil {
		if err := validateCycleDay(*input.ClosingDay); err != nil {
			return nil, err
		}
		card.ClosingDay = *input.ClosingDay
	}
	if input.DueDay != nil {
		if err := validateCycleDay(*input.DueDay); err != nil {
			return nil, err
		}
		card.DueDay = *input.DueDay
	}
	if input.IsActive != nil {
		card.IsActive = *input.IsActive
	}
	card.UpdatedAt = time.Now().UTC()

	if err := uc.cardRepo.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update credit card: %w", err)
	}

	return &UpdateCardOutput{Card: card}, nil
}
