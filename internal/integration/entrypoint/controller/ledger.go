package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardledger/backend/internal/application/usecase/billing"
	"github.com/cardledger/backend/internal/integration/entrypoint/dto"
	"github.com/cardledger/backend/internal/integration/entrypoint/middleware"
)

// LedgerController handles ledger read endpoints.
type LedgerController struct {
	listLedgerUseCase *billing.ListLedgerUseCase
}

// NewLedgerController creates a new ledger controller instance.
func NewLedgerController(listLedgerUseCase *billing.ListLedgerUseCase) *LedgerController {
	return &LedgerController{listLedgerUseCase: listLedgerUseCase}
}

// List handles GET /ledger requests.
func (c *LedgerController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	output, err := c.listLedgerUseCase.Execute(ctx.Request.Context(), billing.ListLedgerInput{
		UserID: userID,
	})
	if err != nil {
		respondBillingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLedgerListResponse(output.Entries))
}
