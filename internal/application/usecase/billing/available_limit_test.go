package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/application/usecase/billing"
	domainerror "github.com/cardledger/backend/internal/domain/error"
)

func TestGetAvailableLimit(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 5, 15)

	limitShouldBe := func(want string) {
		t.Helper()
		output, err := env.limit.Execute(context.Background(), billing.GetAvailableLimitInput{
			CardID: card.ID,
			UserID: userID,
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !output.AvailableLimit.Equal(dec(want)) {
			t.Errorf("AvailableLimit = %s, want %s", output.AvailableLimit, want)
		}
	}

	// Fresh card, nothing outstanding.
	limitShouldBe("1000.00")

	// Purchases across two invoices all count against the limit.
	_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:       card.ID,
		UserID:       userID,
		Description:  "Television",
		Value:        dec("600.00"),
		Date:         date(2025, time.March, 3),
		Installments: 2,
	})
	if err != nil {
		t.Fatalf("failed to seed purchase: %v", err)
	}
	limitShouldBe("400.00")

	// A partial payment frees exactly what was paid.
	invoice, err := env.invoiceRepo.FindByPeriod(context.Background(), card.ID, 3, 2025)
	if err != nil || invoice == nil {
		t.Fatalf("failed to load invoice: %v", err)
	}
	paidAmount := dec("100.00")
	if _, err := env.pay.Execute(context.Background(), billing.ApplyInvoicePaymentInput{
		CardID:     card.ID,
		InvoiceID:  invoice.ID,
		UserID:     userID,
		PaidAmount: &paidAmount,
	}); err != nil {
		t.Fatalf("partial payment error = %v", err)
	}
	limitShouldBe("500.00")

	// A paid invoice stops counting entirely.
	if _, err := env.pay.Execute(context.Background(), billing.ApplyInvoicePaymentInput{
		CardID:    card.ID,
		InvoiceID: invoice.ID,
		UserID:    userID,
		Status:    paidStatus(),
	}); err != nil {
		t.Fatalf("settle error = %v", err)
	}
	limitShouldBe("700.00")
}

func TestGetAvailableLimit_CardNotFound(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 5, 15)

	_, err := env.limit.Execute(context.Background(), billing.GetAvailableLimitInput{
		CardID: card.ID,
		UserID: uuid.New(),
	})
	if !errors.Is(err, domainerror.ErrCardNotFound) {
		t.Errorf("Execute() error = %v, want ErrCardNotFound", err)
	}
}

func TestGetCardStatement(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 15, 25)

	_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:       card.ID,
		UserID:       userID,
		Description:  "Television",
		Value:        dec("900.00"),
		Date:         date(2025, time.January, 10),
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("failed to seed purchase: %v", err)
	}

	output, err := env.statement.Execute(context.Background(), billing.GetCardStatementInput{
		CardID: card.ID,
		UserID: userID,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if output.Statement.Card.ID != card.ID {
		t.Errorf("statement card = %s, want %s", output.Statement.Card.ID, card.ID)
	}
	if len(output.Statement.Invoices) != 3 {
		t.Fatalf("statement invoices = %d, want 3", len(output.Statement.Invoices))
	}
	for _, iwp := range output.Statement.Invoices {
		if len(iwp.Purchases) != 1 {
			t.Errorf("invoice %d/%d purchases = %d, want 1", iwp.Invoice.Month, iwp.Invoice.Year, len(iwp.Purchases))
		}
	}
}
