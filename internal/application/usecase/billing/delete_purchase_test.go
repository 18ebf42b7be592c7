package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/application/usecase/billing"
	domainerror "github.com/cardledger/backend/internal/domain/error"
	"github.com/cardledger/backend/internal/integration/persistence/model"
)

func TestDeletePurchase_SingleRecalculatesInvoice(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 5, 15)

	for _, value := range []string{"100.00", "50.00"} {
		_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
			CardID:      card.ID,
			UserID:      userID,
			Description: "Purchase " + value,
			Value:       dec(value),
			Date:        date(2025, time.March, 3),
		})
		if err != nil {
			t.Fatalf("failed to seed purchase: %v", err)
		}
	}

	invoice, err := env.invoiceRepo.FindByPeriod(context.Background(), card.ID, 3, 2025)
	if err != nil || invoice == nil {
		t.Fatalf("failed to load invoice: %v", err)
	}
	purchases, err := env.purchaseRepo.FindByInvoice(context.Background(), invoice.ID)
	if err != nil || len(purchases) != 2 {
		t.Fatalf("purchases = %d, err = %v", len(purchases), err)
	}

	var target uuid.UUID
	for _, p := range purchases {
		if p.Value.Equal(dec("100.00")) {
			target = p.ID
		}
	}

	output, err := env.delete.Execute(context.Background(), billing.DeletePurchaseInput{
		PurchaseID: target,
		UserID:     userID,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if output.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", output.DeletedCount)
	}

	invoice, err = env.invoiceRepo.FindByID(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !invoice.Total.Equal(dec("50.00")) {
		t.Errorf("invoice total = %s, want 50.00", invoice.Total)
	}
	if got := env.countRows(t, &model.PurchaseModel{}); got != 1 {
		t.Errorf("purchase count = %d, want 1", got)
	}
}

func TestDeletePurchase_InstallmentGroupIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "2000.00", 15, 25)

	// A 3-installment purchase plus a standalone purchase on the first invoice.
	_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:       card.ID,
		UserID:       userID,
		Description:  "Television",
		Value:        dec("900.00"),
		Date:         date(2025, time.January, 10),
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("failed to seed installments: %v", err)
	}
	_, err = env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:      card.ID,
		UserID:      userID,
		Description: "Groceries",
		Value:       dec("80.00"),
		Date:        date(2025, time.January, 10),
	})
	if err != nil {
		t.Fatalf("failed to seed standalone purchase: %v", err)
	}

	// Delete via the middle installment; the whole group must go.
	febInvoice, err := env.invoiceRepo.FindByPeriod(context.Background(), card.ID, 2, 2025)
	if err != nil || febInvoice == nil {
		t.Fatalf("failed to load February invoice: %v", err)
	}
	febPurchases, err := env.purchaseRepo.FindByInvoice(context.Background(), febInvoice.ID)
	if err != nil || len(febPurchases) != 1 {
		t.Fatalf("February purchases = %d, err = %v", len(febPurchases), err)
	}

	output, err := env.delete.Execute(context.Background(), billing.DeletePurchaseInput{
		PurchaseID: febPurchases[0].ID,
		UserID:     userID,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if output.DeletedCount != 3 {
		t.Errorf("DeletedCount = %d, want 3", output.DeletedCount)
	}
	if len(output.TouchedInvoices) != 3 {
		t.Errorf("TouchedInvoices = %d, want 3", len(output.TouchedInvoices))
	}

	if got := env.countRows(t, &model.PurchaseModel{}); got != 1 {
		t.Errorf("purchase count = %d, want 1", got)
	}

	wantTotals := map[int]string{1: "80.00", 2: "0", 3: "0"}
	for month, want := range wantTotals {
		invoice, err := env.invoiceRepo.FindByPeriod(context.Background(), card.ID, month, 2025)
		if err != nil || invoice == nil {
			t.Fatalf("FindByPeriod(%d) error = %v", month, err)
		}
		if !invoice.Total.Equal(dec(want)) {
			t.Errorf("month %d total = %s, want %s", month, invoice.Total, want)
		}
	}
}

func TestDeletePurchase_Errors(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	card := env.createCard(t, ownerID, "1000.00", 5, 15)

	output, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:      card.ID,
		UserID:      ownerID,
		Description: "Groceries",
		Value:       dec("150.00"),
		Date:        date(2025, time.March, 3),
	})
	if err != nil {
		t.Fatalf("failed to seed purchase: %v", err)
	}
	purchaseID := output.Statement.Invoices[0].Purchases[0].ID

	t.Run("another user's purchase", func(t *testing.T) {
		_, err := env.delete.Execute(context.Background(), billing.DeletePurchaseInput{
			PurchaseID: purchaseID,
			UserID:     uuid.New(),
		})
		if !errors.Is(err, domainerror.ErrNotAuthorizedToModifyPurchase) {
			t.Errorf("Execute() error = %v, want ErrNotAuthorizedToModifyPurchase", err)
		}
		if got := env.countRows(t, &model.PurchaseModel{}); got != 1 {
			t.Errorf("purchase count = %d, want 1", got)
		}
	})

	t.Run("unknown purchase", func(t *testing.T) {
		_, err := env.delete.Execute(context.Background(), billing.DeletePurchaseInput{
			PurchaseID: uuid.New(),
			UserID:     ownerID,
		})
		if !errors.Is(err, domainerror.ErrPurchaseNotFound) {
			t.Errorf("Execute() error = %v, want ErrPurchaseNotFound", err)
		}
	})
}
