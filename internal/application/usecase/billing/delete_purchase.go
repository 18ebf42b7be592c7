// Package billing contains the credit card billing-cycle use cases.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/application/adapter"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
)

// DeletePurchaseInput represents the input for purchase deletion.
type DeletePurchaseInput struct {
	PurchaseID uuid.UUID
	UserID     uuid.UUID
}

// DeletePurchaseOutput represents the output of purchase deletion.
type DeletePurchaseOutput struct {
	DeletedCount    int
	TouchedInvoices []uuid.UUID
}

// DeletePurchaseUseCase removes a purchase and restores consistency of
// every invoice it touched. Deleting one installment removes the whole
// group: a purchase split over N invoices is a single obligation, never
// partially deletable.
type DeletePurchaseUseCase struct {
	cardRepo     adapter.CreditCardRepository
	invoiceRepo  adapter.InvoiceRepository
	purchaseRepo adapter.PurchaseRepository
	lifecycle    *InvoiceLifecycle
	txManager    adapter.TxManager
	invalidator  adapter.CacheInvalidator
}

// NewDeletePurchaseUseCase creates a new DeletePurchaseUseCase instance.
func NewDeletePurchaseUseCase(
	cardRepo adapter.CreditCardRepository,
	invoiceRepo adapter.InvoiceRepository,
	purchaseRepo adapter.PurchaseRepository,
	lifecycle *InvoiceLifecycle,
	txManager adapter.TxManager,
	invalidator adapter.CacheInvalidator,
) *DeletePurchaseUseCase {
	return &DeletePurchaseUseCase{
		cardRepo:     cardRepo,
		invoiceRepo:  invoiceRepo,
		purchaseRepo: purchaseRepo,
		lifecycle:    lifecycle,
		txManager:    txManager,
		invalidator:  invalidator,
	}
}

// Execute performs the purchase deletion.
func (uc *DeletePurchaseUseCase) Execute(ctx context.Context, input DeletePurchaseInput) (*DeletePurchaseOutput, error) {
	purchase, err := uc.purchaseRepo.FindByID(ctx, input.PurchaseID)
	if err != nil {
		if errors.Is(err, domainerror.ErrPurchaseNotFound) {
			return nil, domainerror.NewBillingError(
				domainerror.ErrCodePurchaseNotFound,
				"purchase not found",
				domainerror.ErrPurchaseNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	invoice, err := uc.invoiceRepo.FindByID(ctx, purchase.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice of purchase: %w", err)
	}

	card, err := uc.cardRepo.FindByID(ctx, invoice.CreditCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to find card of invoice: %w", err)
	}
	if card.UserID != input.UserID {
		return nil, domainerror.NewBillingError(
			domainerror.ErrCodeNotAuthorizedPurchase,
			"not authorized to delete this purchase",
			domainerror.ErrNotAuthorizedToModifyPurchase,
		)
	}

	deletedCount := 1
	touched := []uuid.UUID{purchase.InvoiceID}

	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		if purchase.IsInstallment() {
			group, err := uc.purchaseRepo.FindByParent(ctx, *purchase.ParentPurchaseID)
			if err != nil {
				return fmt.Errorf("failed to load installment group: %w", err)
			}

			deletedCount = len(group)
			touched = distinctInvoiceIDs(group)

			if err := uc.purchaseRepo.DeleteByParent(ctx, *purchase.ParentPurchaseID); err != nil {
				return fmt.Errorf("failed to delete installment group: %w", err)
			}
		} else {
			if err := uc.purchaseRepo.DeleteByID(ctx, purchase.ID); err != nil {
				return fmt.Errorf("failed to delete purchase: %w", err)
			}
		}

		// Totals are re-derived from the remaining purchase set of each
		// touched invoice, never decremented by a guessed amount.
		for _, invoiceID := range touched {
			if err := uc.lifecycle.RecalculateTotal(ctx, invoiceID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Deleted purchase",
		"purchaseID", purchase.ID,
		"userID", input.UserID,
		"deletedCount", deletedCount,
		"touchedInvoices", len(touched),
	)

	if err := uc.invalidator.InvalidateCardData(ctx, input.UserID); err != nil {
		slog.Warn("Failed to invalidate card data cache", "userID", input.UserID, "error", err)
	}

	return &DeletePurchaseOutput{
		DeletedCount:    deletedCount,
		TouchedInvoices: touched,
	}, nil
}

// distinctInvoiceIDs returns the unique invoice IDs of a purchase group,
// preserving first-seen order.
func distinctInvoiceIDs(purchases []*entity.Purchase) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(purchases))
	ids := make([]uuid.UUID, 0, len(purchases))
	for _, p := range purchases {
		if !seen[p.InvoiceID] {
			seen[p.InvoiceID] = true
			ids = append(ids, p.InvoiceID)
		}
	}
	return ids
}
