package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/ledger"
	"ledgerengine/internal/models"
	"ledgerengine/internal/services"
)

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses", handler.GetExpenses)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 with the committed expense", func(t *testing.T) {
		var got services.ExpenseInput
		expenseSvc := &mockExpenseService{
			createExpenseFn: func(userID string, input services.ExpenseInput) (*ledger.Expense, error) {
				got = input
				return &ledger.Expense{
					ID:            testRecordID,
					Amount:        input.Amount,
					PaymentMethod: input.PaymentMethod,
					OwnerID:       userID,
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expenseSvc, time.UTC))

		rec := doRequest(r, "POST", "/expenses", `{"amount":"42.5","payment_method":"debit_card"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.PaymentMethod != ledger.PaymentMethodDebitCard {
			t.Errorf("expected debit_card, got %q", got.PaymentMethod)
		}
		expense := parseJSON(t, rec)["expense"].(map[string]interface{})
		if expense["amount"] != "42.50" {
			t.Errorf("expected 42.50, got %v", expense["amount"])
		}
	})

	t.Run("returns 400 on unknown payment method", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, time.UTC))

		rec := doRequest(r, "POST", "/expenses", `{"amount":"10","payment_method":"barter"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 422 with shortfall when the budget is exceeded", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			createExpenseFn: func(_ string, _ services.ExpenseInput) (*ledger.Expense, error) {
				return nil, apperrors.BudgetExceeded(dec("7.5"))
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expenseSvc, time.UTC))

		rec := doRequest(r, "POST", "/expenses", `{"amount":"100"}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "BUDGET_EXCEEDED")
		details := result["error"].(map[string]interface{})["details"].(map[string]interface{})
		if details["shortfall"] != "7.50" {
			t.Errorf("expected shortfall 7.50, got %v", details["shortfall"])
		}
	})
}

func TestExpenseHandler_GetExpense(t *testing.T) {
	categoryID := testCategoryID
	expenseSvc := &mockExpenseService{
		getExpenseByIDFn: func(_, id string) (*models.Expense, error) {
			return &models.Expense{
				Base:          models.Base{ID: id},
				Amount:        dec("9.999"),
				PaymentMethod: ledger.PaymentMethodCash,
				CategoryID:    &categoryID,
				Category:      &models.Category{Name: "Food"},
			}, nil
		},
	}
	r := setupExpenseRouter(NewExpenseHandler(expenseSvc, time.UTC))

	rec := doRequest(r, "GET", "/expenses/"+testRecordID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	expense := parseJSON(t, rec)["expense"].(map[string]interface{})
	if expense["amount"] != "10.00" {
		t.Errorf("expected 10.00, got %v", expense["amount"])
	}
	if expense["category_name"] != "Food" {
		t.Errorf("expected Food, got %v", expense["category_name"])
	}
}

func TestExpenseHandler_UpdateExpense(t *testing.T) {
	var got services.RecordUpdate
	expenseSvc := &mockExpenseService{
		updateExpenseFn: func(_, id string, update services.RecordUpdate) (*models.Expense, error) {
			got = update
			return &models.Expense{Base: models.Base{ID: id}, PaymentMethod: *update.PaymentMethod}, nil
		},
	}
	r := setupExpenseRouter(NewExpenseHandler(expenseSvc, time.UTC))

	rec := doRequest(r, "PUT", "/expenses/"+testRecordID, `{"payment_method":"other","date":"2024-05-02T10:00:00Z"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.PaymentMethod == nil || *got.PaymentMethod != ledger.PaymentMethodOther {
		t.Errorf("expected payment method other, got %v", got.PaymentMethod)
	}
	if got.Date == nil || !got.Date.Equal(time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", got.Date)
	}
}

func TestExpenseHandler_UpdateExpense_CategoryID(t *testing.T) {
	t.Run("empty category_id detaches", func(t *testing.T) {
		called := false
		var got services.RecordUpdate
		expenseSvc := &mockExpenseService{
			updateExpenseFn: func(_, id string, update services.RecordUpdate) (*models.Expense, error) {
				called = true
				got = update
				return &models.Expense{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expenseSvc, time.UTC))

		rec := doRequest(r, "PUT", "/expenses/"+testRecordID, `{"category_id":""}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !called {
			t.Fatal("expected the service to be called")
		}
		if got.CategoryID == nil || *got.CategoryID != "" {
			t.Errorf("expected empty category id, got %v", got.CategoryID)
		}
	})

	t.Run("returns 400 on malformed category_id", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			updateExpenseFn: func(_, _ string, _ services.RecordUpdate) (*models.Expense, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expenseSvc, time.UTC))

		rec := doRequest(r, "PUT", "/expenses/"+testRecordID, `{"category_id":"food"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	expenseSvc := &mockExpenseService{
		deleteExpenseFn: func(_, _ string) error { return apperrors.ErrExpenseNotFound },
	}
	r := setupExpenseRouter(NewExpenseHandler(expenseSvc, time.UTC))

	rec := doRequest(r, "DELETE", "/expenses/"+testRecordID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
}
