// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/application/usecase/billing"
	"github.com/cardledger/backend/internal/application/usecase/card"
	"github.com/cardledger/backend/internal/domain/entity"
	domainerror "github.com/cardledger/backend/internal/domain/error"
	"github.com/cardledger/backend/internal/integration/entrypoint/dto"
	"github.com/cardledger/backend/internal/integration/entrypoint/middleware"
)

// CreditCardController handles credit card and billing endpoints.
type CreditCardController struct {
	createCardUseCase     *card.CreateCardUseCase
	listCardsUseCase      *card.ListCardsUseCase
	updateCardUseCase     *card.UpdateCardUseCase
	statementUseCase      *billing.GetCardStatementUseCase
	availableLimitUseCase *billing.GetAvailableLimitUseCase
	allocateUseCase       *billing.AllocatePurchaseUseCase
	payInvoiceUseCase     *billing.ApplyInvoicePaymentUseCase
	deletePurchaseUseCase *billing.DeletePurchaseUseCase
}

// NewCreditCardController creates a new credit card controller instance.
func NewCreditCardController(
	createCardUseCase *card.CreateCardUseCase,
	listCardsUseCase *card.ListCardsUseCase,
	updateCardUseCase *card.UpdateCardUseCase,
	statementUseCase *billing.GetCardStatementUseCase,
	availableLimitUseCase *billing.GetAvailableLimitUseCase,
	allocateUseCase *billing.AllocatePurchaseUseCase,
	payInvoiceUseCase *billing.ApplyInvoicePaymentUseCase,
	deletePurchaseUseCase *billing.DeletePurchaseUseCase,
) *CreditCardController {
	return &CreditCardController{
		createCardUseCase:     createCardUseCase,
		listCardsUseCase:      listCardsUseCase,
		updateCardUseCase:     updateCardUseCase,
		statementUseCase:      statementUseCase,
		availableLimitUseCase: availableLimitUseCase,
		allocateUseCase:       allocateUseCase,
		payInvoiceUseCase:     payInvoiceUseCase,
		deletePurchaseUseCase: deletePurchaseUseCase,
	}
}

// Create handles POST /cards requests.
func (c *CreditCardController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.CreateCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingBillingFields),
		})
		return
	}

	output, err := c.createCardUseCase.Execute(ctx.Request.Context(), card.CreateCardInput{
		UserID:     userID,
		Name:       req.Name,
		Limit:      decimal.NewFromFloat(req.Limit),
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCardResponse(output.Card))
}

// List handles GET /cards requests.
func (c *CreditCardController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	output, err := c.listCardsUseCase.Execute(ctx.Request.Context(), card.ListCardsInput{
		UserID: userID,
	})
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCardListResponse(output.Cards))
}

// Update handles PATCH /cards/:id requests.
func (c *CreditCardController) Update(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	cardID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingBillingFields),
		})
		return
	}

	input := card.UpdateCardInput{
		CardID:     cardID,
		UserID:     userID,
		Name:       req.Name,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		IsActive:   req.IsActive,
	}
	if req.Limit != nil {
		limit := decimal.NewFromFloat(*req.Limit)
		input.Limit = &limit
	}

	output, err := c.updateCardUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCardResponse(output.Card))
}

// GetStatement handles GET /cards/:id/statement requests.
func (c *CreditCardController) GetStatement(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	cardID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	output, err := c.statementUseCase.Execute(ctx.Request.Context(), billing.GetCardStatementInput{
		CardID: cardID,
		UserID: userID,
	})
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStatementResponse(output.Statement, time.Now().UTC()))
}

// GetAvailableLimit handles GET /cards/:id/limit requests.
func (c *CreditCardController) GetAvailableLimit(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	cardID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	output, err := c.availableLimitUseCase.Execute(ctx.Request.Context(), billing.GetAvailableLimitInput{
		CardID: cardID,
		UserID: userID,
	})
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAvailableLimitResponse(output))
}

// AllocatePurchase handles POST /cards/:id/purchases requests.
func (c *CreditCardController) AllocatePurchase(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	cardID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AllocatePurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingBillingFields),
		})
		return
	}

	purchaseDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid date format, expected YYYY-MM-DD",
			Code:  string(domainerror.ErrCodeMissingBillingFields),
		})
		return
	}

	output, err := c.allocateUseCase.Execute(ctx.Request.Context(), billing.AllocatePurchaseInput{
		CardID:       cardID,
		UserID:       userID,
		Description:  req.Description,
		Value:        decimal.NewFromFloat(req.Value),
		Category:     req.Category,
		Date:         purchaseDate,
		Installments: req.Installments,
	})
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.AllocatePurchaseResponse{
		Statement:    dto.ToStatementResponse(output.Statement, time.Now().UTC()),
		CreatedCount: output.CreatedCount,
	})
}

// PayInvoice handles PATCH /cards/:id/invoices/:invoiceId requests.
func (c *CreditCardController) PayInvoice(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	cardID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(ctx, "invoiceId")
	if !ok {
		return
	}

	var req dto.PayInvoiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingBillingFields),
		})
		return
	}

	input := billing.ApplyInvoicePaymentInput{
		CardID:     cardID,
		InvoiceID:  invoiceID,
		UserID:     userID,
		PaidAmount: dto.ParsePaidAmount(req.PaidAmount),
	}
	if req.Status != nil {
		status := entity.InvoiceStatus(*req.Status)
		input.Status = &status
	}

	output, err := c.payInvoiceUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.PayInvoiceResponse{
		Invoice:       dto.ToInvoiceResponse(output.Invoice, time.Now().UTC()),
		PaymentAmount: output.PaymentAmount.String(),
	})
}

// DeletePurchase handles DELETE /purchases/:id requests.
func (c *CreditCardController) DeletePurchase(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	purchaseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	_, err := c.deletePurchaseUseCase.Execute(ctx.Request.Context(), billing.DeletePurchaseInput{
		PurchaseID: purchaseID,
		UserID:     userID,
	})
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// respondUnauthenticated writes the standard missing-authentication response.
func respondUnauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "User not authenticated",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}

// parseIDParam parses a UUID path parameter, writing a 400 on failure.
func parseIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid " + name + " format",
			Code:  string(domainerror.ErrCodeMissingBillingFields),
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondBillingError maps domain errors to HTTP responses.
func respondBillingError(ctx *gin.Context, err error) {
	var billingErr *domainerror.BillingError
	if !errors.As(err, &billingErr) {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Internal server error",
		})
		return
	}

	status := http.StatusBadRequest
	switch billingErr.Code {
	case domainerror.ErrCodeCardNotFound,
		domainerror.ErrCodeInvoiceNotFound,
		domainerror.ErrCodePurchaseNotFound:
		status = http.StatusNotFound
	case domainerror.ErrCodeNotAuthorizedPurchase:
		status = http.StatusForbidden
	case domainerror.ErrCodeCreditLimitExceeded:
		status = http.StatusUnprocessableEntity
	case domainerror.ErrCodeInvoiceNotOwned:
		status = http.StatusConflict
	}

	ctx.JSON(status, dto.ErrorResponse{
		Error: billingErr.Message,
		Code:  string(billingErr.Code),
	})
}
