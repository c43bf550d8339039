package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ledgerengine/internal/pagination"
	"ledgerengine/internal/services"
)

// GoalHandler handles savings goal requests
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the request payload for creating a goal
type CreateGoalRequest struct {
	Title        string           `json:"title" binding:"required,min=1,max=200"`
	TargetAmount *decimal.Decimal `json:"target_amount" binding:"required" swaggertype:"string" example:"5000.00"`
	Deadline     *string          `json:"deadline" example:"2024-12-31"`
}

// UpdateGoalRequest represents the request payload for updating a goal.
// The saved amount cannot be changed here; use contributions.
type UpdateGoalRequest struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=200"`
	TargetAmount *decimal.Decimal `json:"target_amount" swaggertype:"string"`
	Deadline     *string          `json:"deadline"`
}

// ContributeRequest represents the request payload for a goal contribution
type ContributeRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"100.00"`
}

// CreateGoal handles the creation of a savings goal
// @Summary     Create a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} GoalResponse "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	deadline, err := parseOptionalDate("deadline", req.Deadline)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, req.Title, *req.TargetAmount, deadline)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goalFromModel(*goal)})
}

// GetGoals handles listing goals
// @Summary     List goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[GoalResponse] "Paginated goals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.goalService.GetUserGoals(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(result, goalFromModel))
}

// GetGoal handles retrieving a goal
// @Summary     Get goal by ID
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} GoalResponse "Goal details"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(c.Request.Context(), userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goalFromModel(*goal)})
}

// UpdateGoal handles updating a goal's title, target or deadline
// @Summary     Update goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to change"
// @Success     200 {object} GoalResponse "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	deadline, err := parseOptionalDate("deadline", req.Deadline)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), userID, goalID, services.GoalUpdate{
		Title:        req.Title,
		TargetAmount: req.TargetAmount,
		Deadline:     deadline,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goalFromModel(*goal)})
}

// DeleteGoal handles deleting a goal
// @Summary     Delete goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string]string "Goal deleted"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}

// Contribute handles adding money to a goal. The contribution is rejected
// when committed spending would pass recorded income.
// @Summary     Contribute to a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body ContributeRequest true "Contribution amount"
// @Success     200 {object} ContributionResponse "Updated goal and optional deadline warning"
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     422 {object} ErrorResponse "Budget exceeded"
// @Router      /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	contribution, err := h.goalService.Contribute(c.Request.Context(), userID, goalID, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := ContributionResponse{Goal: newGoalResponse(contribution.Goal)}
	if contribution.Warning != nil {
		warning := newGoalAlertResponse(*contribution.Warning)
		resp.Warning = &warning
	}
	c.JSON(http.StatusOK, resp)
}
