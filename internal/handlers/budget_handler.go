package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerengine/internal/services"
)

// BudgetHandler exposes the budget guard as a dry-run check.
type BudgetHandler struct {
	guard services.GuardServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(guard services.GuardServicer) *BudgetHandler {
	return &BudgetHandler{guard: guard}
}

// BudgetCheckQuery holds the query of a budget check.
type BudgetCheckQuery struct {
	Amount string `form:"amount" binding:"required"`
}

// CheckBudget reports whether spending amount more would keep the ledger within income.
// Nothing is written.
// @Summary     Check budget headroom
// @Tags        budget
// @Produce     json
// @Security    BearerAuth
// @Param       amount query string true "Amount to test, e.g. 120.00"
// @Success     200 {object} BudgetCheckResponse "Guard outcome"
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget/check [get]
func (h *BudgetHandler) CheckBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q BudgetCheckQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	amount, err := parseAmount("amount", q.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	check, err := h.guard.CheckBudget(c.Request.Context(), userID, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBudgetCheckResponse(check))
}
