// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/usecase/billing"
	"github.com/cardledger/backend/internal/application/usecase/card"
	"github.com/cardledger/backend/internal/domain/entity"
)

// CreateCardRequest represents the request body for card creation.
type CreateCardRequest struct {
	Name       string  `json:"name" binding:"required,max=100"`
	Limit      float64 `json:"limit" binding:"min=0"`
	ClosingDay int     `json:"closing_day" binding:"required,min=1,max=31"`
	DueDay     int     `json:"due_day" binding:"required,min=1,max=31"`
}

// UpdateCardRequest represents the request body for card update.
type UpdateCardRequest struct {
	Name       *string  `json:"name,omitempty" binding:"omitempty,max=100"`
	Limit      *float64 `json:"limit,omitempty" binding:"omitempty,min=0"`
	ClosingDay *int     `json:"closing_day,omitempty" binding:"omitempty,min=1,max=31"`
	DueDay     *int     `json:"due_day,omitempty" binding:"omitempty,min=1,max=31"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// AllocatePurchaseRequest represents the request body for purchase allocation.
type AllocatePurchaseRequest struct {
	Description  string  `json:"description" binding:"required,max=255"`
	Value        float64 `json:"value" binding:"required,gt=0"`
	Category     string  `json:"category" binding:"max=100"`
	Date         string  `json:"date" binding:"required"` // Format: YYYY-MM-DD
	Installments int     `json:"installments" binding:"omitempty,min=1"`
}

// PayInvoiceRequest represents the request body for invoice payment.
// Either status (only "paid") or paid_amount must be set.
type PayInvoiceRequest struct {
	Status     *string  `json:"status,omitempty" binding:"omitempty,oneof=paid"`
	PaidAmount *float64 `json:"paid_amount,omitempty" binding:"omitempty,gt=0"`
}

// CardResponse represents a single credit card in API responses.
type CardResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Limit          string    `json:"limit"`
	AvailableLimit *string   `json:"available_limit,omitempty"`
	ClosingDay     int       `json:"closing_day"`
	DueDay         int       `json:"due_day"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CardListResponse represents the response for listing cards.
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
}

// InvoiceResponse represents a single invoice in API responses.
type InvoiceResponse struct {
	ID          string `json:"id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	ClosingDate string `json:"closing_date"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	IsClosed    bool   `json:"is_closed"` // Derived: closing date has passed
	Total       string `json:"total"`
	PaidAmount  string `json:"paid_amount"`
	Remaining   string `json:"remaining"`
}

// PurchaseResponse represents a single purchase in API responses.
type PurchaseResponse struct {
	ID                 string  `json:"id"`
	Description        string  `json:"description"`
	Value              string  `json:"value"`
	TotalValue         string  `json:"total_value"`
	Category           string  `json:"category,omitempty"`
	Date               string  `json:"date"`
	Installments       int     `json:"installments"`
	CurrentInstallment int     `json:"current_installment"`
	ParentPurchaseID   *string `json:"parent_purchase_id,omitempty"`
}

// InvoiceWithPurchasesResponse pairs an invoice with its purchases.
type InvoiceWithPurchasesResponse struct {
	Invoice   InvoiceResponse    `json:"invoice"`
	Purchases []PurchaseResponse `json:"purchases"`
}

// StatementResponse represents a card with its invoices and purchases.
type StatementResponse struct {
	Card     CardResponse                   `json:"card"`
	Invoices []InvoiceWithPurchasesResponse `json:"invoices"`
}

// AllocatePurchaseResponse represents the response for purchase allocation.
type AllocatePurchaseResponse struct {
	Statement     StatementResponse `json:"statement"`
	CreatedCount  int               `json:"created_count"`
}

// PayInvoiceResponse represents the response for invoice payment.
type PayInvoiceResponse struct {
	Invoice       InvoiceResponse `json:"invoice"`
	PaymentAmount string          `json:"payment_amount"`
}

// AvailableLimitResponse represents the response for the limit query.
type AvailableLimitResponse struct {
	CardID         string `json:"card_id"`
	Limit          string `json:"limit"`
	AvailableLimit string `json:"available_limit"`
}

// ToCardResponse converts a domain CreditCard entity to a CardResponse DTO.
func ToCardResponse(c *entity.CreditCard) CardResponse {
	return CardResponse{
		ID:         c.ID.String(),
		UserID:     c.UserID.String(),
		Name:       c.Name,
		Limit:      c.Limit.String(),
		ClosingDay: c.ClosingDay,
		DueDay:     c.DueDay,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ToCardListResponse converts a list of cards with limits to a CardListResponse DTO.
func ToCardListResponse(cards []*card.CardWithAvailableLimit) CardListResponse {
	response := CardListResponse{
		Cards: make([]CardResponse, 0, len(cards)),
	}
	for _, c := range cards {
		cardResponse := ToCardResponse(c.Card)
		available := c.AvailableLimit.String()
		cardResponse.AvailableLimit = &available
		response.Cards = append(response.Cards, cardResponse)
	}
	return response
}

// ToInvoiceResponse converts a domain Invoice entity to an InvoiceResponse DTO.
func ToInvoiceResponse(i *entity.Invoice, now time.Time) InvoiceResponse {
	return InvoiceResponse{
		ID:          i.ID.String(),
		Month:       i.Month,
		Year:        i.Year,
		ClosingDate: i.ClosingDate.Format("2006-01-02"),
		DueDate:     i.DueDate.Format("2006-01-02"),
		Status:      string(i.Status),
		IsClosed:    i.IsClosed(now),
		Total:       i.Total.String(),
		PaidAmount:  i.PaidAmount.String(),
		Remaining:   i.RemainingBalance().String(),
	}
}

// ToPurchaseResponse converts a domain Purchase entity to a PurchaseResponse DTO.
func ToPurchaseResponse(p *entity.Purchase) PurchaseResponse {
	response := PurchaseResponse{
		ID:                 p.ID.String(),
		Description:        p.Description,
		Value:              p.Value.String(),
		TotalValue:         p.TotalValue.String(),
		Category:           p.Category,
		Date:               p.Date.Format("2006-01-02"),
		Installments:       p.Installments,
		CurrentInstallment: p.CurrentInstallment,
	}
	if p.ParentPurchaseID != nil {
		parent := p.ParentPurchaseID.String()
		response.ParentPurchaseID = &parent
	}
	return response
}

// ToStatementResponse converts a domain statement to a StatementResponse DTO.
func ToStatementResponse(s *entity.CreditCardStatement, now time.Time) StatementResponse {
	response := StatementResponse{
		Card:     ToCardResponse(s.Card),
		Invoices: make([]InvoiceWithPurchasesResponse, 0, len(s.Invoices)),
	}
	for _, iwp := range s.Invoices {
		item := InvoiceWithPurchasesResponse{
			Invoice:   ToInvoiceResponse(iwp.Invoice, now),
			Purchases: make([]PurchaseResponse, 0, len(iwp.Purchases)),
		}
		for _, p := range iwp.Purchases {
			item.Purchases = append(item.Purchases, ToPurchaseResponse(p))
		}
		response.Invoices = append(response.Invoices, item)
	}
	return response
}

// ToAvailableLimitResponse converts the limit query output to a DTO.
func ToAvailableLimitResponse(output *billing.GetAvailableLimitOutput) AvailableLimitResponse {
	return AvailableLimitResponse{
		CardID:         output.CardID.String(),
		Limit:          output.Limit.String(),
		AvailableLimit: output.AvailableLimit.String(),
	}
}

// ParsePaidAmount converts the request's optional paid amount to a decimal.
func ParsePaidAmount(amount *float64) *decimal.Decimal {
	if amount == nil {
		return nil
	}
	d := decimal.NewFromFloat(*amount)
	return &d
}
