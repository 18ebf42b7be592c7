// Package card contains credit card management use cases.
package card

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
)

// ListCardsInput represents the input for listing cards.
type ListCardsInput struct {
	UserID uuid.UUID
}

// CardWithAvailableLimit pairs a card with its derived available credit.
type CardWithAvailableLimit struct {
	Card           *entity.CreditCard
	AvailableLimit decimal.Decimal
}

// ListCardsOutput represents the output of listing cards.
type ListCardsOutput struct {
	Cards []*CardWithAvailableLimit
}

// ListCardsUseCase lists a user's cards with their available limits.
type ListCardsUseCase struct {
	cardRepo    adapter.CreditCardRepository
	invoiceRepo adapter.InvoiceRepository
}

// NewListCardsUseCase creates a new ListCardsUseCase instance.
func NewListCardsUseCase(
	cardRepo adapter.CreditCardRepository,
	invoiceRepo adapter.InvoiceRepository,
) *ListCardsUseCase {
	return &ListCardsUseCase{
		cardRepo:    cardRepo,
		invoiceRepo: invoiceRepo,
	}
}

// Execute performs the card listing.
func (uc *ListCardsUseCase) Execute(ctx context.Context, input ListCardsInput) (*ListCardsOutput, error) {
	cards, err := uc.cardRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}

	output := &ListCardsOutput{
		Cards: make([]*CardWithAvailableLimit, 0, len(cards)),
	}
	for _, c := range cards {
		outstanding, err := uc.invoiceRepo.FindOutstandingByCard(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list outstanding invoices: %w", err)
		}

		used := decimal.Zero
		for _, invoice := range outstanding {
			used = used.Add(invoice.RemainingBalance())
		}

		output.Cards = append(output.Cards, &CardWithAvailableLimit{
			Card:           c,
			AvailableLimit: c.Limit.Sub(used),
		})
	}

	return output, nil
}
