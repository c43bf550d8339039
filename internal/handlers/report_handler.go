package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerengine/internal/services"
)

// ReportHandler serves the read-only rollups of a user's ledger
type ReportHandler struct {
	rollupService services.RollupServicer
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(rollupService services.RollupServicer) *ReportHandler {
	return &ReportHandler{rollupService: rollupService}
}

// MonthsQuery selects how many calendar months a series covers.
// Zero means the default of 12.
type MonthsQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=120"`
}

// LimitQuery caps a ranking.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// GetOverview returns all-time totals, per-category spend and recent records
// @Summary     Ledger overview
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} OverviewResponse "Overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /overview [get]
func (h *ReportHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.rollupService.ComputeOverview(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOverviewResponse(overview))
}

// GetMonthlySeries returns income and expense per calendar month, oldest first
// @Summary     Monthly series
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Number of months (default 12)"
// @Success     200 {array}  MonthlyTotalResponse "Series"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/monthly [get]
func (h *ReportHandler) GetMonthlySeries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q MonthsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	series, err := h.rollupService.ComputeMonthlySeries(c.Request.Context(), userID, q.Months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"monthly_series": newMonthlySeriesResponse(series)})
}

// GetCategoryBreakdown returns spend per (month, category)
// @Summary     Category breakdown
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Number of months (default 12)"
// @Success     200 {array}  CategoryMonthResponse "Breakdown"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/categories [get]
func (h *ReportHandler) GetCategoryBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q MonthsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	breakdown, err := h.rollupService.ComputeCategoryBreakdown(c.Request.Context(), userID, q.Months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category_breakdown": newBreakdownResponse(breakdown)})
}

// GetTopCategories ranks categories by all-time spend
// @Summary     Top categories
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Maximum entries (default 5)"
// @Success     200 {array}  CategoryRankingResponse "Ranking"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reports/top-categories [get]
func (h *ReportHandler) GetTopCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	if q.Limit == 0 {
		q.Limit = services.DashboardTopCategories
	}

	ranking, err := h.rollupService.ComputeTopCategories(c.Request.Context(), userID, q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"top_categories": newRankingResponse(ranking)})
}

// GetDashboard returns the dashboard view
// @Summary     Dashboard
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DashboardResponse "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.rollupService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Overview:      newOverviewResponse(dashboard.Overview),
		TopCategories: newRankingResponse(dashboard.TopCategories),
		Alerts:        newAlertsResponse(dashboard.Alerts),
	})
}

// GetAnalytics returns the analytics view
// @Summary     Analytics
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Number of months (default 12)"
// @Success     200 {object} AnalyticsResponse "Analytics"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /analytics [get]
func (h *ReportHandler) GetAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q MonthsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	analytics, err := h.rollupService.Analytics(c.Request.Context(), userID, q.Months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyticsResponse{
		MonthlySeries:     newMonthlySeriesResponse(analytics.MonthlySeries),
		CategoryBreakdown: newBreakdownResponse(analytics.CategoryBreakdown),
		TopCategories:     newRankingResponse(analytics.TopCategories),
		Alerts:            newAnalyticsAlertsResponse(analytics.Alerts),
	})
}
