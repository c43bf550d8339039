package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/models"
	"ledgerengine/internal/money"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, userID, fmt.Sprintf("Category %d", nextID()))
}

// CreateTestCategoryWithName creates a category with the given name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestIncome records an income of amount (e.g. "100.00") on date.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID, amount string, date time.Time, categoryID *string) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID:     userID,
		Amount:     money.MustParse(amount),
		Date:       date.UTC(),
		CategoryID: categoryID,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestExpense records an expense directly, bypassing the budget guard.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, amount string, date time.Time, categoryID *string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:        userID,
		Amount:        money.MustParse(amount),
		Date:          date.UTC(),
		PaymentMethod: ledger.PaymentMethodCash,
		CategoryID:    categoryID,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestGoal creates a goal with the given target and nothing saved.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID, target string, deadline *time.Time) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Title:         fmt.Sprintf("Goal %d", nextID()),
		TargetAmount:  money.MustParse(target),
		CurrentAmount: money.Zero,
		Deadline:      deadline,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
