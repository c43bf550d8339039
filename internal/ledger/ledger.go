// Package ledger defines the plain domain records the budget engine works on
// and the store contract it reads and writes them through. Nothing in here
// knows about GORM, HTTP or authentication.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel is the category name reported for records without a category.
const UncategorizedLabel = "Uncategorized"

// Errors returned by Store implementations.
var (
	// ErrNotFound means the record is absent or not owned by the caller.
	ErrNotFound = errors.New("ledger: record not found")
	// ErrUnknownOwner means WithinOwnerTx was asked to lock an owner that does not exist.
	ErrUnknownOwner = errors.New("ledger: unknown owner")
)

// PaymentMethod describes how an expense was paid.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOther        PaymentMethod = "other"
)

// Valid reports whether p is one of the known payment methods.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodBankTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// Category groups incomes and expenses. (Name, OwnerID) is unique.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// Income is money received by an owner.
type Income struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description,omitempty"`
	CategoryID   *string         `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	OwnerID      string          `json:"owner_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Expense is money spent by an owner. CategoryName is pre-joined by the store.
type Expense struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CategoryID    *string         `json:"category_id,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	OwnerID       string          `json:"owner_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CategoryLabel returns the category name, or UncategorizedLabel when detached.
func (e Expense) CategoryLabel() string {
	if e.CategoryID == nil || e.CategoryName == "" {
		return UncategorizedLabel
	}
	return e.CategoryName
}

// GoalStatus is derived from a goal's amounts.
type GoalStatus string

const (
	GoalStatusOpen   GoalStatus = "open"
	GoalStatusFunded GoalStatus = "funded"
)

// Goal is a savings target. CurrentAmount only ever grows, through contributions.
type Goal struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	OwnerID       string          `json:"owner_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Status reports Funded once CurrentAmount reaches TargetAmount.
func (g Goal) Status() GoalStatus {
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		return GoalStatusFunded
	}
	return GoalStatusOpen
}

// Remaining is TargetAmount - CurrentAmount. It goes negative on overshoot.
func (g Goal) Remaining() decimal.Decimal {
	return g.TargetAmount.Sub(g.CurrentAmount)
}

// DateRange is the half-open interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// Store is the persistence contract of the engine. Finders return records in
// insertion order and only ever the records of the given owner.
type Store interface {
	FindIncomesByOwner(ctx context.Context, ownerID string, dateRange *DateRange) ([]Income, error)
	FindExpensesByOwner(ctx context.Context, ownerID string, dateRange *DateRange) ([]Expense, error)
	FindGoalsByOwner(ctx context.Context, ownerID string) ([]Goal, error)
	FindGoalByID(ctx context.Context, ownerID, goalID string) (*Goal, error)
	FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*Category, error)
	SaveGoal(ctx context.Context, goal *Goal) (*Goal, error)
	// AddToGoal increments the goal's current amount and leaves every other
	// field as stored.
	AddToGoal(ctx context.Context, ownerID, goalID string, amount decimal.Decimal) (*Goal, error)
	SaveExpense(ctx context.Context, expense *Expense) (*Expense, error)

	// WithinOwnerTx runs fn in a single transaction that holds the owner's
	// write lock. The Store passed to fn must be used for every read and
	// write that belongs to the transaction.
	WithinOwnerTx(ctx context.Context, ownerID string, fn func(tx Store) error) error
}
