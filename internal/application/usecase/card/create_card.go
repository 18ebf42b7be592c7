// Package card contains credit card management use cases.
package card

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
)

// CreateCardInput represents the input for card creation.
type CreateCardInput struct {
	UserID     uuid.UUID
	Name       string
	Limit      decimal.Decimal
	ClosingDay int
	DueDay     int
}

// CreateCardOutput represents the output of card creation.
type CreateCardOutput struct {
	Card *entity.CreditCard
}

// CreateCardUseCase handles credit card creation.
type CreateCardUseCase struct {
	cardRepo adapter.CreditCardRepository
}

// NewCreateCardUseCase creates a new CreateCardUseCase instance.
func NewCreateCardUseCase(cardRepo adapter.CreditCardRepository) *CreateCardUseCase {
	return &CreateCardUseCase{
		cardRepo: cardRepo,
	}
}

// Execute performs the card creation.
func (uc *CreateCardUseCase) Execute(ctx context.Context, input CreateCardInput) (*CreateCardOutput, error) {
	if input.Limit.IsNegative() {
		return nil, domainerror.NewBillingError(
			domainerror.ErrCodeInvalidCardLimit,
			"card limit must not be negative",
			domainerror.ErrInvalidCardLimit,
		)
	}

	if err := validateCycleDay(input.ClosingDay); err != nil {
		return nil, err
	}
	if err := validateCycleDay(input.DueDay); err != nil {
		return nil, err
	}

	card := entity.NewCreditCard(input.UserID, input.Name, input.Limit, input.ClosingDay, input.DueDay)

	if err := uc.cardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create credit card: %w", err)
	}

	return &CreateCardOutput{Card: card}, nil
}

// validateCycleDay checks a closing or due day against the 1-31 calendar
// range. Days are not validated against actual month lengths; the cycle
// calculator clamps them when materializing concrete dates.
func validateCycleDay(day int) error {
	if day < 1 || day > 31 {
		return domainerror.NewBillingError(
			domainerror.ErrCodeInvalidCycleDay,
			fmt.Sprintf("cycle day %d must be between 1 and 31", day),
			domainerror.ErrInvalidCycleDay,
		)
	}
	return nil
}
