package handlers

import (
	"time"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/models"
	"ledgerengine/internal/services"
)

// Response DTOs. Every amount leaves the API as a string rounded to cents.

// UserResponse represents the user data in the response
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CategoryResponse represents a category in the response
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// IncomeResponse represents an income in the response
type IncomeResponse struct {
	ID           string    `json:"id"`
	Amount       string    `json:"amount"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	CategoryID   *string   `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExpenseResponse represents an expense in the response
type ExpenseResponse struct {
	ID            string               `json:"id"`
	Amount        string               `json:"amount"`
	Date          time.Time            `json:"date"`
	Description   string               `json:"description"`
	PaymentMethod ledger.PaymentMethod `json:"payment_method"`
	CategoryID    *string              `json:"category_id"`
	CategoryName  string               `json:"category_name"`
	CreatedAt     time.Time            `json:"created_at"`
}

// GoalResponse represents a goal in the response
type GoalResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	TargetAmount    string            `json:"target_amount"`
	CurrentAmount   string            `json:"current_amount"`
	RemainingAmount string            `json:"remaining_amount"`
	Status          ledger.GoalStatus `json:"status"`
	Deadline        *time.Time        `json:"deadline"`
	CreatedAt       time.Time         `json:"created_at"`
}

// GoalAlertResponse describes a goal due soon
type GoalAlertResponse struct {
	GoalID          string    `json:"goal_id"`
	Title           string    `json:"title"`
	Deadline        time.Time `json:"deadline"`
	RemainingAmount string    `json:"remaining_amount"`
	DaysLeft        int       `json:"days_left"`
}

// ContributionResponse is returned by a committed contribution
type ContributionResponse struct {
	Goal    GoalResponse       `json:"goal"`
	Warning *GoalAlertResponse `json:"warning,omitempty"`
}

// BudgetCheckResponse is the outcome of a budget dry-run
type BudgetCheckResponse struct {
	Income    string `json:"income"`
	Committed string `json:"committed"`
	Available string `json:"available"`
	Increment string `json:"increment"`
	Allowed   bool   `json:"allowed"`
	Shortfall string `json:"shortfall"`
}

// CategoryTotalResponse is the spend of one category
type CategoryTotalResponse struct {
	CategoryName string `json:"category_name"`
	Total        string `json:"total"`
}

// OverviewResponse summarizes the ledger
type OverviewResponse struct {
	TotalIncome        string                  `json:"total_income"`
	TotalExpenses      string                  `json:"total_expenses"`
	AvailableBalance   string                  `json:"available_balance"`
	ExpensesByCategory []CategoryTotalResponse `json:"expenses_by_category"`
	RecentIncomes      []IncomeResponse        `json:"recent_incomes"`
	RecentExpenses     []ExpenseResponse       `json:"recent_expenses"`
}

// MonthlyTotalResponse is one month of the series
type MonthlyTotalResponse struct {
	Month        string `json:"month"`
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	NetBalance   string `json:"net_balance"`
}

// CategoryMonthResponse is one (month, category) pair of the breakdown
type CategoryMonthResponse struct {
	Month        string `json:"month"`
	CategoryName string `json:"category_name"`
	TotalSpent   string `json:"total_spent"`
}

// CategoryRankingResponse is one entry of the top-categories ranking
type CategoryRankingResponse struct {
	CategoryName     string `json:"category_name"`
	TotalSpent       string `json:"total_spent"`
	TransactionCount int    `json:"transaction_count"`
}

// AlertsResponse carries the advisory warnings; null means no warning
type AlertsResponse struct {
	HighExpenseWarning  *string `json:"high_expense_warning"`
	GoalDeadlineWarning *string `json:"goal_deadline_warning"`
}

// AnalyticsAlertsResponse adds the per-goal alert list of the analytics view
type AnalyticsAlertsResponse struct {
	AlertsResponse
	GoalAlerts []GoalAlertResponse `json:"goal_alerts"`
}

// DashboardResponse is the dashboard view
type DashboardResponse struct {
	Overview      OverviewResponse          `json:"overview"`
	TopCategories []CategoryRankingResponse `json:"top_categories"`
	Alerts        AlertsResponse            `json:"alerts"`
}

// AnalyticsResponse is the analytics view
type AnalyticsResponse struct {
	MonthlySeries     []MonthlyTotalResponse    `json:"monthly_series"`
	CategoryBreakdown []CategoryMonthResponse   `json:"category_breakdown"`
	TopCategories     []CategoryRankingResponse `json:"top_categories"`
	Alerts            AnalyticsAlertsResponse   `json:"alerts"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

func newCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func newIncomeResponse(in ledger.Income) IncomeResponse {
	return IncomeResponse{
		ID:           in.ID,
		Amount:       formatAmount(in.Amount),
		Date:         in.Date,
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		CategoryName: in.CategoryName,
		CreatedAt:    in.CreatedAt,
	}
}

func incomeFromModel(m models.Income) IncomeResponse {
	return newIncomeResponse(m.ToLedger())
}

func newExpenseResponse(ex ledger.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            ex.ID,
		Amount:        formatAmount(ex.Amount),
		Date:          ex.Date,
		Description:   ex.Description,
		PaymentMethod: ex.PaymentMethod,
		CategoryID:    ex.CategoryID,
		CategoryName:  ex.CategoryName,
		CreatedAt:     ex.CreatedAt,
	}
}

func expenseFromModel(m models.Expense) ExpenseResponse {
	return newExpenseResponse(m.ToLedger())
}

func newGoalResponse(g ledger.Goal) GoalResponse {
	return GoalResponse{
		ID:              g.ID,
		Title:           g.Title,
		TargetAmount:    formatAmount(g.TargetAmount),
		CurrentAmount:   formatAmount(g.CurrentAmount),
		RemainingAmount: formatAmount(g.Remaining()),
		Status:          g.Status(),
		Deadline:        g.Deadline,
		CreatedAt:       g.CreatedAt,
	}
}

func goalFromModel(m models.Goal) GoalResponse {
	return newGoalResponse(m.ToLedger())
}

func newGoalAlertResponse(a services.GoalAlert) GoalAlertResponse {
	return GoalAlertResponse{
		GoalID:          a.GoalID,
		Title:           a.Title,
		Deadline:        a.Deadline,
		RemainingAmount: formatAmount(a.RemainingAmount),
		DaysLeft:        a.DaysLeft,
	}
}

func newBudgetCheckResponse(check *services.BudgetCheck) BudgetCheckResponse {
	return BudgetCheckResponse{
		Income:    formatAmount(check.Income),
		Committed: formatAmount(check.Committed),
		Available: formatAmount(check.Income.Sub(check.Committed)),
		Increment: formatAmount(check.Increment),
		Allowed:   check.Allowed,
		Shortfall: formatAmount(check.Shortfall),
	}
}

func newOverviewResponse(o *services.Overview) OverviewResponse {
	resp := OverviewResponse{
		TotalIncome:        formatAmount(o.TotalIncome),
		TotalExpenses:      formatAmount(o.TotalExpenses),
		AvailableBalance:   formatAmount(o.AvailableBalance),
		ExpensesByCategory: make([]CategoryTotalResponse, len(o.ExpensesByCategory)),
		RecentIncomes:      make([]IncomeResponse, len(o.RecentIncomes)),
		RecentExpenses:     make([]ExpenseResponse, len(o.RecentExpenses)),
	}
	for i, ct := range o.ExpensesByCategory {
		resp.ExpensesByCategory[i] = CategoryTotalResponse{CategoryName: ct.CategoryName, Total: formatAmount(ct.Total)}
	}
	for i, in := range o.RecentIncomes {
		resp.RecentIncomes[i] = newIncomeResponse(in)
	}
	for i, ex := range o.RecentExpenses {
		resp.RecentExpenses[i] = newExpenseResponse(ex)
	}
	return resp
}

func newMonthlySeriesResponse(series []services.MonthlyTotal) []MonthlyTotalResponse {
	out := make([]MonthlyTotalResponse, len(series))
	for i, m := range series {
		out[i] = MonthlyTotalResponse{
			Month:        m.Month,
			TotalIncome:  formatAmount(m.TotalIncome),
			TotalExpense: formatAmount(m.TotalExpense),
			NetBalance:   formatAmount(m.NetBalance),
		}
	}
	return out
}

func newBreakdownResponse(breakdown []services.CategoryMonthTotal) []CategoryMonthResponse {
	out := make([]CategoryMonthResponse, len(breakdown))
	for i, b := range breakdown {
		out[i] = CategoryMonthResponse{Month: b.Month, CategoryName: b.CategoryName, TotalSpent: formatAmount(b.TotalSpent)}
	}
	return out
}

func newRankingResponse(ranking []services.CategoryRanking) []CategoryRankingResponse {
	out := make([]CategoryRankingResponse, len(ranking))
	for i, r := range ranking {
		out[i] = CategoryRankingResponse{
			CategoryName:     r.CategoryName,
			TotalSpent:       formatAmount(r.TotalSpent),
			TransactionCount: r.TransactionCount,
		}
	}
	return out
}

func newAlertsResponse(a services.Alerts) AlertsResponse {
	return AlertsResponse{HighExpenseWarning: a.HighExpenseWarning, GoalDeadlineWarning: a.GoalDeadlineWarning}
}

func newAnalyticsAlertsResponse(a services.Alerts) AnalyticsAlertsResponse {
	resp := AnalyticsAlertsResponse{
		AlertsResponse: newAlertsResponse(a),
		GoalAlerts:     make([]GoalAlertResponse, len(a.GoalAlerts)),
	}
	for i, ga := range a.GoalAlerts {
		resp.GoalAlerts[i] = newGoalAlertResponse(ga)
	}
	return resp
}
