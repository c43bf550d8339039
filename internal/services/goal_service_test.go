package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/ledger/ledgertest"
	"ledgerengine/internal/money"
	"ledgerengine/internal/pagination"
	"ledgerengine/internal/repository"
	"ledgerengine/internal/testutil"
)

func newTestGoalService(db *gorm.DB, now time.Time) *goalService {
	return &goalService{
		db:    db,
		guard: NewBudgetGuard(repository.NewStore(db)),
		now:   func() time.Time { return now },
	}
}

func TestCreateGoal(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db, NewBudgetGuard(repository.NewStore(db)))
		user := testutil.CreateTestUser(t, db)

		goal, err := svc.CreateGoal(ctx, user.ID, "  Emergency fund ", money.MustParse("1000"), nil)
		testutil.AssertNoError(t, err)
		if goal.ID == "" || goal.Title != "Emergency fund" {
			t.Errorf("unexpected goal %+v", goal)
		}
		testutil.AssertAmount(t, "current", goal.CurrentAmount, "0")
	})

	t.Run("invalid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db, NewBudgetGuard(repository.NewStore(db)))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateGoal(ctx, user.ID, "", money.MustParse("10"), nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateGoal(ctx, user.ID, "Zero", decimal.Zero, nil)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		_, err = svc.CreateGoal(ctx, user.ID, "Rounds to zero", decimal.RequireFromString("0.004"), nil)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestGetUserGoals(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db, NewBudgetGuard(repository.NewStore(db)))
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	first := testutil.CreateTestGoal(t, db, user.ID, "100", nil)
	testutil.CreateTestGoal(t, db, user.ID, "200", nil)
	testutil.CreateTestGoal(t, db, other.ID, "300", nil)

	result, err := svc.GetUserGoals(ctx, user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if result.TotalItems != 2 {
		t.Fatalf("expected 2 goals, got %d", result.TotalItems)
	}
	if result.Data[0].ID != first.ID {
		t.Errorf("expected creation order, first = %s", result.Data[0].ID)
	}

	_, err = svc.GetGoalByID(ctx, user.ID, result.Data[0].ID)
	testutil.AssertNoError(t, err)
	_, err = svc.GetGoalByID(ctx, other.ID, first.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}

func TestUpdateGoal_NeverTouchesCurrentAmount(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db, time.Now())
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestIncome(t, db, user.ID, "500", someDay, nil)
	goal := testutil.CreateTestGoal(t, db, user.ID, "1000", nil)

	_, err := svc.Contribute(ctx, user.ID, goal.ID, money.MustParse("120"))
	testutil.AssertNoError(t, err)

	title := "Renamed"
	target := money.MustParse("50")
	deadline := someDay.Add(90 * 24 * time.Hour)
	updated, err := svc.UpdateGoal(ctx, user.ID, goal.ID, GoalUpdate{Title: &title, TargetAmount: &target, Deadline: &deadline})
	testutil.AssertNoError(t, err)

	if updated.Title != "Renamed" || updated.Deadline == nil {
		t.Errorf("update not applied: %+v", updated)
	}
	testutil.AssertAmount(t, "target", updated.TargetAmount, "50")
	testutil.AssertAmount(t, "current", updated.CurrentAmount, "120")

	zero := decimal.Zero
	_, err = svc.UpdateGoal(ctx, user.ID, goal.ID, GoalUpdate{TargetAmount: &zero})
	testutil.AssertAppError(t, err, "INVALID_AMOUNT")
}

func TestDeleteGoal(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db, time.Now())
	user := testutil.CreateTestUser(t, db)
	goal := testutil.CreateTestGoal(t, db, user.ID, "10", nil)

	testutil.AssertNoError(t, svc.DeleteGoal(ctx, user.ID, goal.ID))
	testutil.AssertAppError(t, svc.DeleteGoal(ctx, user.ID, goal.ID), "GOAL_NOT_FOUND")
}

// Incomes 100 and 50: a contribution of 150 fits exactly, one more unit does not.
func TestContribute_BudgetScenario(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db, someDay)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestIncome(t, db, user.ID, "100", someDay, nil)
	testutil.CreateTestIncome(t, db, user.ID, "50", someDay, nil)
	goal := testutil.CreateTestGoal(t, db, user.ID, "1000", nil)

	result, err := svc.Contribute(ctx, user.ID, goal.ID, money.MustParse("150"))
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "current", result.Goal.CurrentAmount, "150")

	_, err = svc.Contribute(ctx, user.ID, goal.ID, money.MustParse("1"))
	appErr := testutil.AssertAppError(t, err, "BUDGET_EXCEEDED")
	if appErr.Details["shortfall"] != "1.00" {
		t.Errorf("shortfall = %v, want 1.00", appErr.Details["shortfall"])
	}

	stored, err := svc.GetGoalByID(ctx, user.ID, goal.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "stored current", stored.CurrentAmount, "150")
}

func TestContribute_Errors(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db, someDay)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	testutil.CreateTestIncome(t, db, user.ID, "100", someDay, nil)
	goal := testutil.CreateTestGoal(t, db, user.ID, "1000", nil)

	tests := []struct {
		name   string
		userID string
		goalID string
		amount decimal.Decimal
		code   string
	}{
		{"zero_amount", user.ID, goal.ID, decimal.Zero, "INVALID_AMOUNT"},
		{"negative_amount", user.ID, goal.ID, decimal.NewFromInt(-5), "INVALID_AMOUNT"},
		{"unknown_goal", user.ID, "00000000-0000-0000-0000-000000000000", money.MustParse("1"), "GOAL_NOT_FOUND"},
		{"someone_elses_goal", other.ID, goal.ID, money.MustParse("1"), "GOAL_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Contribute(ctx, tt.userID, tt.goalID, tt.amount)
			testutil.AssertAppError(t, err, tt.code)
		})
	}
}

func TestContribute_NoCapAtTarget(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db, someDay)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestIncome(t, db, user.ID, "500", someDay, nil)
	goal := testutil.CreateTestGoal(t, db, user.ID, "100", nil)

	result, err := svc.Contribute(ctx, user.ID, goal.ID, money.MustParse("130"))
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "current", result.Goal.CurrentAmount, "130")
	if result.Goal.Status() != "funded" {
		t.Errorf("expected funded status, got %s", result.Goal.Status())
	}
}

func TestContribute_DeadlineWarning(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		due      time.Duration
		target   string
		wantWarn bool
	}{
		{"due_in_3_days", 3 * 24 * time.Hour, "1000", true},
		{"due_in_20_days", 20 * 24 * time.Hour, "1000", false},
		{"funded_by_contribution", 3 * 24 * time.Hour, "10", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := newTestGoalService(db, someDay)
			user := testutil.CreateTestUser(t, db)
			testutil.CreateTestIncome(t, db, user.ID, "100", someDay, nil)
			deadline := someDay.Add(tt.due)
			goal := testutil.CreateTestGoal(t, db, user.ID, tt.target, &deadline)

			result, err := svc.Contribute(ctx, user.ID, goal.ID, money.MustParse("10"))
			testutil.AssertNoError(t, err)
			if got := result.Warning != nil; got != tt.wantWarn {
				t.Errorf("warning present = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestContribute_ConcurrentKeepsInvariant(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db, someDay)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestIncome(t, db, user.ID, "100", someDay, nil)
	testutil.CreateTestExpense(t, db, user.ID, "20", someDay, nil)
	goal := testutil.CreateTestGoal(t, db, user.ID, "1000", nil)

	const writers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Contribute(ctx, user.ID, goal.ID, money.MustParse("20")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 4 {
		t.Errorf("expected 4 contributions to fit, %d succeeded", succeeded)
	}
	stored, err := svc.GetGoalByID(ctx, user.ID, goal.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "current", stored.CurrentAmount, "80")
}

// editAfterReadStore renames a goal right after Contribute reads it inside the
// transaction, the way a concurrent UpdateGoal would.
type editAfterReadStore struct {
	*ledgertest.Store
	edit func()
}

func (s *editAfterReadStore) WithinOwnerTx(ctx context.Context, ownerID string, fn func(tx ledger.Store) error) error {
	return s.Store.WithinOwnerTx(ctx, ownerID, func(tx ledger.Store) error {
		return fn(&editAfterReadTx{Store: tx, edit: s.edit})
	})
}

type editAfterReadTx struct {
	ledger.Store
	edit func()
}

func (tx *editAfterReadTx) FindGoalByID(ctx context.Context, ownerID, goalID string) (*ledger.Goal, error) {
	goal, err := tx.Store.FindGoalByID(ctx, ownerID, goalID)
	tx.edit()
	return goal, err
}

func TestContribute_KeepsConcurrentGoalEdit(t *testing.T) {
	ctx := context.Background()
	base := ledgertest.New()
	base.AddIncome("u1", "100", someDay, nil)
	goal := base.AddGoal("u1", "Trip", "500", "0", nil)

	store := &editAfterReadStore{Store: base, edit: func() {
		edited := goal
		edited.Title = "Holiday"
		edited.TargetAmount = money.MustParse("900")
		if _, err := base.SaveGoal(ctx, &edited); err != nil {
			t.Fatalf("edit failed: %v", err)
		}
	}}
	svc := &goalService{guard: NewBudgetGuard(store), now: func() time.Time { return someDay }}

	result, err := svc.Contribute(ctx, "u1", goal.ID, money.MustParse("30"))
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "current", result.Goal.CurrentAmount, "30")

	stored, _ := base.Goal(goal.ID)
	if stored.Title != "Holiday" {
		t.Errorf("title = %q, want Holiday", stored.Title)
	}
	testutil.AssertAmount(t, "target", stored.TargetAmount, "900")
	testutil.AssertAmount(t, "stored current", stored.CurrentAmount, "30")
}
