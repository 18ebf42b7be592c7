// Package billing contains the credit card billing-cycle use cases.
package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
)

// GetCardStatementInput represents the input for the statement query.
type GetCardStatementInput struct {
	CardID uuid.UUID
	UserID uuid.UUID
}

// GetCardStatementOutput represents the output of the statement query.
type GetCardStatementOutput struct {
	Statement *entity.CreditCardStatement
}

// GetCardStatementUseCase loads a card with its invoices and purchases.
type GetCardStatementUseCase struct {
	cardRepo     adapter.CreditCardRepository
	invoiceRepo  adapter.InvoiceRepository
	purchaseRepo adapter.PurchaseRepository
}

// NewGetCardStatementUseCase creates a new GetCardStatementUseCase instance.
func NewGetCardStatementUseCase(
	cardRepo adapter.CreditCardRepository,
	invoiceRepo adapter.InvoiceRepository,
	purchaseRepo adapter.PurchaseRepository,
) *GetCardStatementUseCase {
	return &GetCardStatementUseCase{
		cardRepo:     cardRepo,
		invoiceRepo:  invoiceRepo,
		purchaseRepo: purchaseRepo,
	}
}

// Execute performs the statement query.
func (uc *GetCardStatementUseCase) Execute(ctx context.Context, input GetCardStatementInput) (*GetCardStatementOutput, error) {
	card, err := uc.cardRepo.FindByIDAndUser(ctx, input.CardID, input.UserID)
	if err != nil {
		return nil, cardLookupError(err)
	}

	statement, err := loadStatement(ctx, uc.invoiceRepo, uc.purchaseRepo, card)
	if err != nil {
		return nil, err
	}

	return &GetCardStatementOutput{Statement: statement}, nil
}
