package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ledgerengine/internal/pagination"
	"ledgerengine/internal/services"
)

// IncomeHandler handles income-related requests
type IncomeHandler struct {
	incomeService services.IncomeServicer
	loc           *time.Location
}

// NewIncomeHandler creates a new IncomeHandler. loc is the zone month filters are cut in.
func NewIncomeHandler(incomeService services.IncomeServicer, loc *time.Location) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService, loc: loc}
}

// CreateIncomeRequest represents the request payload for recording an income
type CreateIncomeRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"1500.00"`
	Date        string           `json:"date" example:"2024-05-01"`
	Description string           `json:"description" binding:"max=500"`
	CategoryID  *string          `json:"category_id" binding:"omitempty,uuid_or_empty"`
}

// UpdateIncomeRequest represents the request payload for updating an income.
// An empty category_id detaches the income from its category.
type UpdateIncomeRequest struct {
	Amount      *decimal.Decimal `json:"amount" swaggertype:"string"`
	Date        *string          `json:"date"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	CategoryID  *string          `json:"category_id" binding:"omitempty,uuid_or_empty"`
}

// CreateIncome handles recording a new income
// @Summary     Record an income
// @Tags        incomes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateIncomeRequest true "Income details"
// @Success     201 {object} IncomeResponse "Income recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /incomes [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	date, err := parseOptionalDate("date", &req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input := services.IncomeInput{
		Amount:      *req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if date != nil {
		input.Date = *date
	}

	income, err := h.incomeService.CreateIncome(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"income": incomeFromModel(*income)})
}

// GetIncomes handles listing incomes
// @Summary     List incomes
// @Description Paginated incomes, newest first
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string false "Earliest date (YYYY-MM-DD or RFC 3339)"
// @Param       to          query string false "Latest date, inclusive"
// @Param       month       query string false "Calendar month (YYYY-MM)"
// @Param       category_id query string false "Category ID"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[IncomeResponse] "Paginated incomes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /incomes [get]
func (h *IncomeHandler) GetIncomes(c *gin.Context) {
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

	result, err := h.incomeService.GetUserIncomes(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(result, incomeFromModel))
}

// GetIncome handles retrieving a single income
// @Summary     Get income by ID
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} IncomeResponse "Income details"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /incomes/{id} [get]
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.GetIncomeByID(c.Request.Context(), userID, incomeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": incomeFromModel(*income)})
}

// UpdateIncome handles updating an income
// @Summary     Update income
// @Tags        incomes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Income ID"
// @Param       request body UpdateIncomeRequest true "Fields to change"
// @Success     200 {object} IncomeResponse "Updated income"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Income or category not found"
// @Router      /incomes/{id} [put]
func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.UpdateIncome(c.Request.Context(), userID, incomeID, services.RecordUpdate{
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": incomeFromModel(*income)})
}

// DeleteIncome handles deleting an income
// @Summary     Delete income
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} map[string]string "Income deleted"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /incomes/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncome(c.Request.Context(), userID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Income deleted successfully"})
}
