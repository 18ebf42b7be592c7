package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/application/usecase/billing"
	domainerror "github.com/cardledger/backend/internal/domain/error"
	"github.com/cardledger/backend/internal/integration/persistence/model"
)

func TestAllocatePurchase_InvoicePeriodResolution(t *testing.T) {
	tests := []struct {
		name          string
		closingDay    int
		dueDay        int
		purchaseDate  time.Time
		expectedMonth int
		expectedYear  int
	}{
		{
			name:          "before closing day bills the purchase month",
			closingDay:    5,
			dueDay:        15,
			purchaseDate:  date(2025, time.March, 3),
			expectedMonth: 3,
			expectedYear:  2025,
		},
		{
			name:          "after closing day rolls to the next month",
			closingDay:    5,
			dueDay:        15,
			purchaseDate:  date(2025, time.March, 10),
			expectedMonth: 4,
			expectedYear:  2025,
		},
		{
			name:          "december purchase after closing day crosses the year",
			closingDay:    20,
			dueDay:        28,
			purchaseDate:  date(2024, time.December, 30),
			expectedMonth: 1,
			expectedYear:  2025,
		},
		{
			name:          "due day before closing day shifts one more month",
			closingDay:    25,
			dueDay:        5,
			purchaseDate:  date(2025, time.March, 26),
			expectedMonth: 5,
			expectedYear:  2025,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			userID := uuid.New()
			card := env.createCard(t, userID, "1000.00", tt.closingDay, tt.dueDay)

			output, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
				CardID:      card.ID,
				UserID:      userID,
				Description: "Groceries",
				Value:       dec("150.00"),
				Date:        tt.purchaseDate,
			})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			if output.CreatedCount != 1 {
				t.Errorf("CreatedCount = %d, want 1", output.CreatedCount)
			}
			if len(output.Statement.Invoices) != 1 {
				t.Fatalf("statement has %d invoices, want 1", len(output.Statement.Invoices))
			}

			invoice := output.Statement.Invoices[0].Invoice
			if invoice.Month != tt.expectedMonth || invoice.Year != tt.expectedYear {
				t.Errorf("invoice period = %d/%d, want %d/%d", invoice.Month, invoice.Year, tt.expectedMonth, tt.expectedYear)
			}
			if !invoice.Total.Equal(dec("150.00")) {
				t.Errorf("invoice total = %s, want 150.00", invoice.Total)
			}
		})
	}
}

func TestAllocatePurchase_ReusesExistingInvoice(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 5, 15)

	for _, value := range []string{"100.00", "50.00"} {
		_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
			CardID:      card.ID,
			UserID:      userID,
			Description: "Groceries",
			Value:       dec(value),
			Date:        date(2025, time.March, 3),
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}

	if got := env.countRows(t, &model.InvoiceModel{}); got != 1 {
		t.Errorf("invoice count = %d, want 1", got)
	}

	invoice, err := env.invoiceRepo.FindByPeriod(context.Background(), card.ID, 3, 2025)
	if err != nil {
		t.Fatalf("FindByPeriod() error = %v", err)
	}
	if !invoice.Total.Equal(dec("150.00")) {
		t.Errorf("invoice total = %s, want 150.00", invoice.Total)
	}
}

func TestAllocatePurchase_InstallmentsSplitAcrossInvoices(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 15, 25)

	output, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:       card.ID,
		UserID:       userID,
		Description:  "Television",
		Value:        dec("900.00"),
		Date:         date(2025, time.January, 10),
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if output.CreatedCount != 3 {
		t.Errorf("CreatedCount = %d, want 3", output.CreatedCount)
	}
	if got := env.countRows(t, &model.InvoiceModel{}); got != 3 {
		t.Errorf("invoice count = %d, want 3", got)
	}

	var parent *uuid.UUID
	for month := 1; month <= 3; month++ {
		invoice, err := env.invoiceRepo.FindByPeriod(context.Background(), card.ID, month, 2025)
		if err != nil {
			t.Fatalf("FindByPeriod(%d) error = %v", month, err)
		}
		if invoice == nil {
			t.Fatalf("no invoice for month %d", month)
		}
		if !invoice.Total.Equal(dec("300.00")) {
			t.Errorf("month %d total = %s, want 300.00", month, invoice.Total)
		}

		purchases, err := env.purchaseRepo.FindByInvoice(context.Background(), invoice.ID)
		if err != nil {
			t.Fatalf("FindByInvoice(%d) error = %v", month, err)
		}
		if len(purchases) != 1 {
			t.Fatalf("month %d has %d purchases, want 1", month, len(purchases))
		}

		p := purchases[0]
		if p.CurrentInstallment != month {
			t.Errorf("month %d current installment = %d, want %d", month, p.CurrentInstallment, month)
		}
		if p.Installments != 3 {
			t.Errorf("month %d installments = %d, want 3", month, p.Installments)
		}
		if !p.TotalValue.Equal(dec("900.00")) {
			t.Errorf("month %d total value = %s, want 900.00", month, p.TotalValue)
		}
		if p.ParentPurchaseID == nil {
			t.Fatalf("month %d purchase has no parent ID", month)
		}
		if parent == nil {
			parent = p.ParentPurchaseID
		} else if *p.ParentPurchaseID != *parent {
			t.Errorf("month %d parent = %s, want %s", month, p.ParentPurchaseID, parent)
		}

		wantDescription := fmt.Sprintf("Television (%d/3)", month)
		if p.Description != wantDescription {
			t.Errorf("month %d description = %q, want %q", month, p.Description, wantDescription)
		}
	}
}

func TestAllocatePurchase_RoundingRemainderOnFirstInstallment(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 15, 25)

	_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:       card.ID,
		UserID:       userID,
		Description:  "Headphones",
		Value:        dec("100.00"),
		Date:         date(2025, time.January, 10),
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"33.34", "33.33", "33.33"}
	sum := dec("0")
	for month := 1; month <= 3; month++ {
		invoice, err := env.invoiceRepo.FindByPeriod(context.Background(), card.ID, month, 2025)
		if err != nil || invoice == nil {
			t.Fatalf("FindByPeriod(%d) error = %v", month, err)
		}
		purchases, err := env.purchaseRepo.FindByInvoice(context.Background(), invoice.ID)
		if err != nil || len(purchases) != 1 {
			t.Fatalf("FindByInvoice(%d): purchases = %d, err = %v", month, len(purchases), err)
		}
		if !purchases[0].Value.Equal(dec(want[month-1])) {
			t.Errorf("installment %d value = %s, want %s", month, purchases[0].Value, want[month-1])
		}
		sum = sum.Add(purchases[0].Value)
	}

	if !sum.Equal(dec("100.00")) {
		t.Errorf("installments sum to %s, want 100.00", sum)
	}
}

func TestAllocatePurchase_CreditLimitEnforcement(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 5, 15)

	mustAllocate := func(value string) error {
		_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
			CardID:      card.ID,
			UserID:      userID,
			Description: "Purchase",
			Value:       dec(value),
			Date:        date(2025, time.March, 3),
		})
		return err
	}

	if err := mustAllocate("800.00"); err != nil {
		t.Fatalf("first allocation error = %v", err)
	}

	err := mustAllocate("250.00")
	if !errors.Is(err, domainerror.ErrCreditLimitExceeded) {
		t.Fatalf("over-limit allocation error = %v, want ErrCreditLimitExceeded", err)
	}
	if got := env.countRows(t, &model.PurchaseModel{}); got != 1 {
		t.Errorf("purchase count after rejection = %d, want 1", got)
	}

	if err := mustAllocate("200.00"); err != nil {
		t.Fatalf("within-limit allocation error = %v", err)
	}
	if got := env.countRows(t, &model.PurchaseModel{}); got != 2 {
		t.Errorf("purchase count = %d, want 2", got)
	}
}

func TestAllocatePurchase_LimitCheckedAgainstFullInstallmentValue(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "500.00", 5, 15)

	// 600 over 12 installments is only 50 per invoice, but the whole
	// obligation must fit the available limit upfront.
	_, err := env.allocate.Execute(context.Background(), billing.AllocatePurchaseInput{
		CardID:       card.ID,
		UserID:       userID,
		Description:  "Phone",
		Value:        dec("600.00"),
		Date:         date(2025, time.March, 3),
		Installments: 12,
	})
	if !errors.Is(err, domainerror.ErrCreditLimitExceeded) {
		t.Fatalf("Execute() error = %v, want ErrCreditLimitExceeded", err)
	}
	if got := env.countRows(t, &model.PurchaseModel{}); got != 0 {
		t.Errorf("purchase count = %d, want 0", got)
	}
	if got := env.countRows(t, &model.InvoiceModel{}); got != 0 {
		t.Errorf("invoice count = %d, want 0", got)
	}
}

func TestAllocatePurchase_Validation(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	card := env.createCard(t, userID, "1000.00", 5, 15)

	tests := []struct {
		name    string
		input   billing.AllocatePurchaseInput
		wantErr error
	}{
		{
			name: "zero value",
			input: billing.AllocatePurchaseInput{
				CardID: card.ID, UserID: userID,
				Description: "Nothing", Value: dec("0"),
				Date: date(2025, time.March, 3),
			},
			wantErr: domainerror.ErrInvalidPurchaseValue,
		},
		{
			name: "negative value",
			input: billing.AllocatePurchaseInput{
				CardID: card.ID, UserID: userID,
				Description: "Refund", Value: dec("-10.00"),
				Date: date(2025, time.March, 3),
			},
			wantErr: domainerror.ErrInvalidPurchaseValue,
		},
		{
			name: "negative installments",
			input: billing.AllocatePurchaseInput{
				CardID: card.ID, UserID: userID,
				Description: "Broken", Value: dec("10.00"),
				Date: date(2025, time.March, 3), Installments: -1,
			},
			wantErr: domainerror.ErrInvalidInstallments,
		},
		{
			name: "card owned by another user",
			input: billing.AllocatePurchaseInput{
				CardID: card.ID, UserID: uuid.New(),
				Description: "Groceries", Value: dec("10.00"),
				Date: date(2025, time.March, 3),
			},
			wantErr: domainerror.ErrCardNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.allocate.Execute(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if got := env.countRows(t, &model.PurchaseModel{}); got != 0 {
		t.Errorf("purchase count = %d, want 0", got)
	}
}
