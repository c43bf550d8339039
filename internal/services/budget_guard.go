package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/ledger"
	"ledgerengine/internal/logger"
	"ledgerengine/internal/metrics"
	"ledgerengine/internal/money"
)

// budgetGuard enforces Σ expenses + Σ goal.current <= Σ incomes per owner.
type budgetGuard struct {
	store ledger.Store
	locks *ownerLocks
}

// NewBudgetGuard creates a new GuardServicer on the given store.
func NewBudgetGuard(store ledger.Store) GuardServicer {
	return &budgetGuard{store: store, locks: newOwnerLocks()}
}

// Err returns nil when the check allowed the increment, BUDGET_EXCEEDED otherwise.
func (c *BudgetCheck) Err() error {
	if c.Allowed {
		return nil
	}
	return apperrors.BudgetExceeded(c.Shortfall)
}

// CheckBudget evaluates the guard without writing anything and without locks.
func (g *budgetGuard) CheckBudget(ctx context.Context, ownerID string, increment decimal.Decimal) (*BudgetCheck, error) {
	return evaluateBudget(ctx, g.store, ownerID, increment)
}

// Guarded runs fn with the owner's writers serialized and inside one store
// transaction. The check passed to fn reads through the transaction, so a
// write performed by fn after an allowed check cannot race another writer.
func (g *budgetGuard) Guarded(ctx context.Context, ownerID string, fn func(tx ledger.Store, check CheckFunc) error) error {
	unlock := g.locks.lock(ownerID)
	defer unlock()

	err := g.store.WithinOwnerTx(ctx, ownerID, func(tx ledger.Store) error {
		check := func(increment decimal.Decimal) error {
			result, err := evaluateBudget(ctx, tx, ownerID, increment)
			if err != nil {
				return err
			}
			if err := result.Err(); err != nil {
				logger.Get().Infow("Budget guard rejected write",
					"owner_id", ownerID,
					"increment", money.Format(result.Increment),
					"shortfall", money.Format(result.Shortfall),
				)
				return err
			}
			return nil
		}
		return fn(tx, check)
	})
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ledger.ErrUnknownOwner):
		return apperrors.ErrUserNotFound
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

func evaluateBudget(ctx context.Context, store ledger.Store, ownerID string, increment decimal.Decimal) (*BudgetCheck, error) {
	if increment.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "increment must not be negative")
	}
	increment = money.RoundCents(increment)

	incomes, err := store.FindIncomesByOwner(ctx, ownerID, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expenses, err := store.FindExpensesByOwner(ctx, ownerID, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	goals, err := store.FindGoalsByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income := money.Zero
	for _, in := range incomes {
		income = income.Add(money.RoundCents(in.Amount))
	}
	committed := money.Zero
	for _, ex := range expenses {
		committed = committed.Add(money.RoundCents(ex.Amount))
	}
	for _, goal := range goals {
		committed = committed.Add(money.RoundCents(goal.CurrentAmount))
	}

	result := &BudgetCheck{
		Income:    income,
		Committed: committed,
		Increment: increment,
		Allowed:   true,
		Shortfall: money.Zero,
	}
	if projected := committed.Add(increment); projected.GreaterThan(income) {
		result.Allowed = false
		result.Shortfall = projected.Sub(income)
	}
	metrics.RecordBudgetCheck(result.Allowed)
	return result, nil
}
