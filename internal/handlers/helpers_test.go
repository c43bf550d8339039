package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/logger"
	"ledgerengine/internal/models"
	"ledgerengine/internal/pagination"
	"ledgerengine/internal/services"
	"ledgerengine/internal/validator"
)

const (
	testUserID     = "0190f5a4-7c2e-7d2e-9c1a-3b2f1e0d4c5b"
	testRecordID   = "0190f5a4-8d3f-7e3f-8d2b-4c3a2f1e5d6c"
	testCategoryID = "0190f5a4-9e40-7f40-9e3c-5d4b3a2f6e7d"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// --- test helpers ---

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- mock services ---

type mockUserService struct {
	createUserFn     func(email, password, firstName, lastName string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	attemptLoginFn   func(email, password string) (*models.User, error)
}

func (m *mockUserService) CreateUser(_ context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

type mockCategoryService struct {
	createCategoryFn    func(userID, name string) (*models.Category, error)
	getUserCategoriesFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn    func(userID, categoryID, name string) (*models.Category, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(_ context.Context, userID, name string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, userID, categoryID, name string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

type mockIncomeService struct {
	createIncomeFn   func(userID string, input services.IncomeInput) (*models.Income, error)
	getUserIncomesFn func(userID string, page pagination.PageRequest, filter services.RecordFilter) (*pagination.PageResponse[models.Income], error)
	getIncomeByIDFn  func(userID, incomeID string) (*models.Income, error)
	updateIncomeFn   func(userID, incomeID string, update services.RecordUpdate) (*models.Income, error)
	deleteIncomeFn   func(userID, incomeID string) error
}

func (m *mockIncomeService) CreateIncome(_ context.Context, userID string, input services.IncomeInput) (*models.Income, error) {
	if m.createIncomeFn != nil {
		return m.createIncomeFn(userID, input)
	}
	return &models.Income{}, nil
}

func (m *mockIncomeService) GetUserIncomes(_ context.Context, userID string, page pagination.PageRequest, filter services.RecordFilter) (*pagination.PageResponse[models.Income], error) {
	if m.getUserIncomesFn != nil {
		return m.getUserIncomesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Income{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockIncomeService) GetIncomeByID(_ context.Context, userID, incomeID string) (*models.Income, error) {
	if m.getIncomeByIDFn != nil {
		return m.getIncomeByIDFn(userID, incomeID)
	}
	return &models.Income{}, nil
}

func (m *mockIncomeService) UpdateIncome(_ context.Context, userID, incomeID string, update services.RecordUpdate) (*models.Income, error) {
	if m.updateIncomeFn != nil {
		return m.updateIncomeFn(userID, incomeID, update)
	}
	return &models.Income{}, nil
}

func (m *mockIncomeService) DeleteIncome(_ context.Context, userID, incomeID string) error {
	if m.deleteIncomeFn != nil {
		return m.deleteIncomeFn(userID, incomeID)
	}
	return nil
}

var _ services.IncomeServicer = (*mockIncomeService)(nil)

type mockExpenseService struct {
	createExpenseFn   func(userID string, input services.ExpenseInput) (*ledger.Expense, error)
	getUserExpensesFn func(userID string, page pagination.PageRequest, filter services.RecordFilter) (*pagination.PageResponse[models.Expense], error)
	getExpenseByIDFn  func(userID, expenseID string) (*models.Expense, error)
	updateExpenseFn   func(userID, expenseID string, update services.RecordUpdate) (*models.Expense, error)
	deleteExpenseFn   func(userID, expenseID string) error
}

func (m *mockExpenseService) CreateExpense(_ context.Context, userID string, input services.ExpenseInput) (*ledger.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, input)
	}
	return &ledger.Expense{}, nil
}

func (m *mockExpenseService) GetUserExpenses(_ context.Context, userID string, page pagination.PageRequest, filter services.RecordFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.getUserExpensesFn != nil {
		return m.getUserExpensesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(_ context.Context, userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(_ context.Context, userID, expenseID string, update services.RecordUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, update)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(_ context.Context, userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

type mockGoalService struct {
	createGoalFn   func(userID, title string, target decimal.Decimal, deadline *time.Time) (*models.Goal, error)
	getUserGoalsFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error)
	getGoalByIDFn  func(userID, goalID string) (*models.Goal, error)
	updateGoalFn   func(userID, goalID string, update services.GoalUpdate) (*models.Goal, error)
	deleteGoalFn   func(userID, goalID string) error
	contributeFn   func(userID, goalID string, amount decimal.Decimal) (*services.Contribution, error)
}

func (m *mockGoalService) CreateGoal(_ context.Context, userID, title string, target decimal.Decimal, deadline *time.Time) (*models.Goal, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, title, target, deadline)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) GetUserGoals(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error) {
	if m.getUserGoalsFn != nil {
		return m.getUserGoalsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Goal{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockGoalService) GetGoalByID(_ context.Context, userID, goalID string) (*models.Goal, error) {
	if m.getGoalByIDFn != nil {
		return m.getGoalByIDFn(userID, goalID)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) UpdateGoal(_ context.Context, userID, goalID string, update services.GoalUpdate) (*models.Goal, error) {
	if m.updateGoalFn != nil {
		return m.updateGoalFn(userID, goalID, update)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) DeleteGoal(_ context.Context, userID, goalID string) error {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(userID, goalID)
	}
	return nil
}

func (m *mockGoalService) Contribute(_ context.Context, userID, goalID string, amount decimal.Decimal) (*services.Contribution, error) {
	if m.contributeFn != nil {
		return m.contributeFn(userID, goalID, amount)
	}
	return &services.Contribution{}, nil
}

var _ services.GoalServicer = (*mockGoalService)(nil)

type mockGuard struct {
	checkBudgetFn func(ownerID string, increment decimal.Decimal) (*services.BudgetCheck, error)
}

func (m *mockGuard) CheckBudget(_ context.Context, ownerID string, increment decimal.Decimal) (*services.BudgetCheck, error) {
	if m.checkBudgetFn != nil {
		return m.checkBudgetFn(ownerID, increment)
	}
	return &services.BudgetCheck{Allowed: true}, nil
}

func (m *mockGuard) Guarded(_ context.Context, _ string, _ func(tx ledger.Store, check services.CheckFunc) error) error {
	return nil
}

var _ services.GuardServicer = (*mockGuard)(nil)

type mockRollupService struct {
	overviewFn      func(ownerID string) (*services.Overview, error)
	seriesFn        func(ownerID string, monthsBack int) ([]services.MonthlyTotal, error)
	breakdownFn     func(ownerID string, monthsBack int) ([]services.CategoryMonthTotal, error)
	topCategoriesFn func(ownerID string, limit int) ([]services.CategoryRanking, error)
	dashboardFn     func(ownerID string) (*services.Dashboard, error)
	analyticsFn     func(ownerID string, monthsBack int) (*services.Analytics, error)
}

func (m *mockRollupService) ComputeOverview(_ context.Context, ownerID string) (*services.Overview, error) {
	if m.overviewFn != nil {
		return m.overviewFn(ownerID)
	}
	return &services.Overview{}, nil
}

func (m *mockRollupService) ComputeMonthlySeries(_ context.Context, ownerID string, monthsBack int) ([]services.MonthlyTotal, error) {
	if m.seriesFn != nil {
		return m.seriesFn(ownerID, monthsBack)
	}
	return []services.MonthlyTotal{}, nil
}

func (m *mockRollupService) ComputeCategoryBreakdown(_ context.Context, ownerID string, monthsBack int) ([]services.CategoryMonthTotal, error) {
	if m.breakdownFn != nil {
		return m.breakdownFn(ownerID, monthsBack)
	}
	return []services.CategoryMonthTotal{}, nil
}

func (m *mockRollupService) ComputeTopCategories(_ context.Context, ownerID string, limit int) ([]services.CategoryRanking, error) {
	if m.topCategoriesFn != nil {
		return m.topCategoriesFn(ownerID, limit)
	}
	return []services.CategoryRanking{}, nil
}

func (m *mockRollupService) Dashboard(_ context.Context, ownerID string) (*services.Dashboard, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(ownerID)
	}
	return &services.Dashboard{Overview: &services.Overview{}}, nil
}

func (m *mockRollupService) Analytics(_ context.Context, ownerID string, monthsBack int) (*services.Analytics, error) {
	if m.analyticsFn != nil {
		return m.analyticsFn(ownerID, monthsBack)
	}
	return &services.Analytics{}, nil
}

var _ services.RollupServicer = (*mockRollupService)(nil)
