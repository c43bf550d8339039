package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/pagination"
	"ledgerengine/internal/services"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	loc            *time.Location
}

// NewExpenseHandler creates a new ExpenseHandler. loc is the zone month filters are cut in.
func NewExpenseHandler(expenseService services.ExpenseServicer, loc *time.Location) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, loc: loc}
}

// CreateExpenseRequest represents the request payload for recording an expense
type CreateExpenseRequest struct {
	Amount        *decimal.Decimal     `json:"amount" binding:"required" swaggertype:"string" example:"42.50"`
	Date          string               `json:"date" example:"2024-05-01"`
	Description   string               `json:"description" binding:"max=500"`
	PaymentMethod ledger.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	CategoryID    *string              `json:"category_id" binding:"omitempty,uuid_or_empty"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
// An empty category_id detaches the expense from its category.
type UpdateExpenseRequest struct {
	Amount        *decimal.Decimal      `json:"amount" swaggertype:"string"`
	Date          *string               `json:"date"`
	Description   *string               `json:"description" binding:"omitempty,max=500"`
	PaymentMethod *ledger.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	CategoryID    *string               `json:"category_id" binding:"omitempty,uuid_or_empty"`
}

// CreateExpense handles recording a new expense. The write is rejected when
// committed spending would pass recorded income.
// @Summary     Record an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} ExpenseResponse "Expense recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     422 {object} ErrorResponse "Budget exceeded"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	date, err := parseOptionalDate("date", &req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input := services.ExpenseInput{
		Amount:        *req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		CategoryID:    req.CategoryID,
	}
	if date != nil {
		input.Date = *date
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": newExpenseResponse(*expense)})
}

// GetExpenses handles listing expenses
// @Summary     List expenses
// @Description Paginated expenses, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string false "Earliest date (YYYY-MM-DD or RFC 3339)"
// @Param       to          query string false "Latest date, inclusive"
// @Param       month       query string false "Calendar month (YYYY-MM)"
// @Param       category_id query string false "Category ID"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[ExpenseResponse] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, filter, err := bindRecordQuery(c, h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.GetUserExpenses(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(result, expenseFromModel))
}

// GetExpense handles retrieving a single expense
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} ExpenseResponse "Expense details"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expenseFromModel(*expense)})
}

// UpdateExpense handles updating an expense
// @Summary     Update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to change"
// @Success     200 {object} ExpenseResponse "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Expense or category not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, expenseID, services.RecordUpdate{
		Amount:        req.Amount,
		Date:          date,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expenseFromModel(*expense)})
}

// DeleteExpense handles deleting an expense
// @Summary     Delete expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} map[string]string "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
