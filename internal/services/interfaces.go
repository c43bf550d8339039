package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/models"
	"ledgerengine/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID, name string) (*models.Category, error)
	GetUserCategories(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// RecordFilter holds optional filter parameters for listing incomes and expenses.
type RecordFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *string
}

// IncomeInput carries the fields of a new income.
type IncomeInput struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	CategoryID  *string
}

// ExpenseInput carries the fields of a new expense.
type ExpenseInput struct {
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	PaymentMethod ledger.PaymentMethod
	CategoryID    *string
}

// RecordUpdate carries the optional fields of an income or expense update.
// An empty CategoryID detaches the record from its category.
type RecordUpdate struct {
	Amount        *decimal.Decimal
	Date          *time.Time
	Description   *string
	CategoryID    *string
	PaymentMethod *ledger.PaymentMethod
}

// IncomeServicer defines the contract for income-related business logic.
type IncomeServicer interface {
	CreateIncome(ctx context.Context, userID string, input IncomeInput) (*models.Income, error)
	GetUserIncomes(ctx context.Context, userID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Income], error)
	GetIncomeByID(ctx context.Context, userID, incomeID string) (*models.Income, error)
	UpdateIncome(ctx context.Context, userID, incomeID string, update RecordUpdate) (*models.Income, error)
	DeleteIncome(ctx context.Context, userID, incomeID string) error
}

// ExpenseServicer defines the contract for expense-related business logic.
// CreateExpense is guarded by the budget invariant; updates are not.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, userID string, input ExpenseInput) (*ledger.Expense, error)
	GetUserExpenses(ctx context.Context, userID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, update RecordUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
}

// GoalUpdate carries the optional fields of a goal update. CurrentAmount is
// deliberately absent: it only moves through Contribute.
type GoalUpdate struct {
	Title        *string
	TargetAmount *decimal.Decimal
	Deadline     *time.Time
}

// Contribution is the result of a committed goal contribution.
type Contribution struct {
	Goal    ledger.Goal
	Warning *GoalAlert
}

// GoalServicer defines the contract for goal-related business logic.
type GoalServicer interface {
	CreateGoal(ctx context.Context, userID, title string, target decimal.Decimal, deadline *time.Time) (*models.Goal, error)
	GetUserGoals(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error)
	GetGoalByID(ctx context.Context, userID, goalID string) (*models.Goal, error)
	UpdateGoal(ctx context.Context, userID, goalID string, update GoalUpdate) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
	Contribute(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*Contribution, error)
}

// BudgetCheck is the outcome of one evaluation of
// Σ expenses + Σ goal contributions + increment <= Σ incomes.
type BudgetCheck struct {
	Income    decimal.Decimal
	Committed decimal.Decimal
	Increment decimal.Decimal
	Allowed   bool
	// Shortfall is Committed + Increment - Income when rejected, zero otherwise.
	Shortfall decimal.Decimal
}

// CheckFunc evaluates the guard for an increment inside a guarded transaction.
// It returns a BUDGET_EXCEEDED AppError on rejection.
type CheckFunc func(increment decimal.Decimal) error

// GuardServicer enforces the budget invariant.
type GuardServicer interface {
	CheckBudget(ctx context.Context, ownerID string, increment decimal.Decimal) (*BudgetCheck, error)
	Guarded(ctx context.Context, ownerID string, fn func(tx ledger.Store, check CheckFunc) error) error
}

// CategoryTotal is the spend of one category.
type CategoryTotal struct {
	CategoryName string
	Total        decimal.Decimal
}

// Overview summarizes an owner's ledger over all time.
type Overview struct {
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	AvailableBalance   decimal.Decimal
	ExpensesByCategory []CategoryTotal
	RecentIncomes      []ledger.Income
	RecentExpenses     []ledger.Expense
}

// MonthlyTotal is one calendar month of income and expense.
type MonthlyTotal struct {
	Month        string
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetBalance   decimal.Decimal
}

// CategoryMonthTotal is the spend of one category within one month.
type CategoryMonthTotal struct {
	Month        string
	CategoryName string
	TotalSpent   decimal.Decimal
}

// CategoryRanking is one entry of the top-categories ranking.
type CategoryRanking struct {
	CategoryName     string
	TotalSpent       decimal.Decimal
	TransactionCount int
}

// Dashboard is the overview screen: totals, top five categories and alerts.
type Dashboard struct {
	Overview      *Overview
	TopCategories []CategoryRanking
	Alerts        Alerts
}

// Analytics is the reports screen.
type Analytics struct {
	MonthlySeries     []MonthlyTotal
	CategoryBreakdown []CategoryMonthTotal
	TopCategories     []CategoryRanking
	Alerts            Alerts
}

// RollupServicer computes read-only views of an owner's ledger.
type RollupServicer interface {
	ComputeOverview(ctx context.Context, ownerID string) (*Overview, error)
	ComputeMonthlySeries(ctx context.Context, ownerID string, monthsBack int) ([]MonthlyTotal, error)
	ComputeCategoryBreakdown(ctx context.Context, ownerID string, monthsBack int) ([]CategoryMonthTotal, error)
	ComputeTopCategories(ctx context.Context, ownerID string, limit int) ([]CategoryRanking, error)
	Dashboard(ctx context.Context, ownerID string) (*Dashboard, error)
	Analytics(ctx context.Context, ownerID string, monthsBack int) (*Analytics, error)
}
