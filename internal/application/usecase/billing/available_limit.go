// Package billing contains the credit card billing-cycle use cases.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
)

// availableLimit computes the credit still available on a card:
// the card limit minus the unpaid remainder of every outstanding
// (open or closed) invoice. Paid invoices contribute nothing. The value
// is a fresh projection over the store on every call; no running
// balance is cached or trusted.
func availableLimit(card *entity.CreditCard, outstanding []*entity.Invoice) decimal.Decimal {
	used := decimal.Zero
	for _, invoice := range outstanding {
		if !invoice.IsOutstanding() {
			continue
		}
		used = used.Add(invoice.RemainingBalance())
	}
	return card.Limit.Sub(used)
}

// GetAvailableLimitInput represents the input for the available limit query.
type GetAvailableLimitInput struct {
	CardID uuid.UUID
	UserID uuid.UUID
}

// GetAvailableLimitOutput represents the output of the available limit query.
type GetAvailableLimitOutput struct {
	CardID         uuid.UUID
	Limit          decimal.Decimal
	AvailableLimit decimal.Decimal
}

// GetAvailableLimitUseCase exposes the limit projection as a read endpoint.
type GetAvailableLimitUseCase struct {
	cardRepo    adapter.CreditCardRepository
	invoiceRepo adapter.InvoiceRepository
}

// NewGetAvailableLimitUseCase creates a new GetAvailableLimitUseCase instance.
func NewGetAvailableLimitUseCase(
	cardRepo adapter.CreditCardRepository,
	invoiceRepo adapter.InvoiceRepository,
) *GetAvailableLimitUseCase {
	return &GetAvailableLimitUseCase{
		cardRepo:    cardRepo,
		invoiceRepo: invoiceRepo,
	}
}

// Execute computes the card's available credit.
func (uc *GetAvailableLimitUseCase) Execute(ctx context.Context, input GetAvailableLimitInput) (*GetAvailableLimitOutput, error) {
	card, err := uc.cardRepo.FindByIDAndUser(ctx, input.CardID, input.UserID)
	if err != nil {
		return nil, cardLookupError(err)
	}

	outstanding, err := uc.invoiceRepo.FindOutstandingByCard(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding invoices: %w", err)
	}

	return &GetAvailableLimitOutput{
		CardID:         card.ID,
		Limit:          card.Limit,
		AvailableLimit: availableLimit(card, outstanding),
	}, nil
}

// cardLookupError translates a card repository error into the coded
// domain error surfaced to the route layer, passing store failures through.
func cardLookupError(err error) error {
	if errors.Is(err, domainerror.ErrCardNotFound) {
		return domainerror.NewBillingError(
			domainerror.ErrCodeCardNotFound,
			"credit card not found",
			domainerror.ErrCardNotFound,
		)
	}
	return fmt.Errorf("failed to find credit card: %w", err)
}
