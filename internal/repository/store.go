// Package repository implements ledger.Store on top of GORM.
package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/models"
)

// Store is the GORM-backed ledger.Store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on the given connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ ledger.Store = (*Store)(nil)

// ownedRecords scopes a query to one owner and an optional date range, in insertion order.
func (s *Store) ownedRecords(ctx context.Context, ownerID string, dateRange *ledger.DateRange) *gorm.DB {
	q := s.db.WithContext(ctx).Preload("Category").Where("user_id = ?", ownerID)
	if dateRange != nil {
		q = q.Where("date >= ? AND date < ?", dateRange.From.UTC(), dateRange.To.UTC())
	}
	return q.Order("created_at ASC").Order("id ASC")
}

// FindIncomesByOwner returns the owner's incomes, optionally restricted to a date range.
func (s *Store) FindIncomesByOwner(ctx context.Context, ownerID string, dateRange *ledger.DateRange) ([]ledger.Income, error) {
	var rows []models.Income
	if err := s.ownedRecords(ctx, ownerID, dateRange).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Income, len(rows))
	for i := range rows {
		out[i] = rows[i].ToLedger()
	}
	return out, nil
}

// FindExpensesByOwner returns the owner's expenses with their category names joined in.
func (s *Store) FindExpensesByOwner(ctx context.Context, ownerID string, dateRange *ledger.DateRange) ([]ledger.Expense, error) {
	var rows []models.Expense
	if err := s.ownedRecords(ctx, ownerID, dateRange).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Expense, len(rows))
	for i := range rows {
		out[i] = rows[i].ToLedger()
	}
	return out, nil
}

// FindGoalsByOwner returns the owner's goals in listing (creation) order.
func (s *Store) FindGoalsByOwner(ctx context.Context, ownerID string) ([]ledger.Goal, error) {
	var rows []models.Goal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Goal, len(rows))
	for i := range rows {
		out[i] = rows[i].ToLedger()
	}
	return out, nil
}

// FindGoalByID returns a goal owned by ownerID or ledger.ErrNotFound.
func (s *Store) FindGoalByID(ctx context.Context, ownerID, goalID string) (*ledger.Goal, error) {
	var row models.Goal
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", goalID, ownerID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	goal := row.ToLedger()
	return &goal, nil
}

// FindCategoryByID returns a category owned by ownerID or ledger.ErrNotFound.
func (s *Store) FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*ledger.Category, error) {
	var row models.Category
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", categoryID, ownerID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	category := row.ToLedger()
	return &category, nil
}

// SaveGoal inserts or fully updates a goal.
func (s *Store) SaveGoal(ctx context.Context, goal *ledger.Goal) (*ledger.Goal, error) {
	row := models.GoalFromLedger(goal)
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	saved := row.ToLedger()
	return &saved, nil
}

// AddToGoal adds amount to current_amount in place.
func (s *Store) AddToGoal(ctx context.Context, ownerID, goalID string, amount decimal.Decimal) (*ledger.Goal, error) {
	result := s.db.WithContext(ctx).Model(&models.Goal{}).
		Where("id = ? AND user_id = ?", goalID, ownerID).
		Update("current_amount", gorm.Expr("current_amount + ?", amount))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ledger.ErrNotFound
	}
	return s.FindGoalByID(ctx, ownerID, goalID)
}

// SaveExpense inserts a new expense or updates an existing one.
func (s *Store) SaveExpense(ctx context.Context, expense *ledger.Expense) (*ledger.Expense, error) {
	row := models.ExpenseFromLedger(expense)
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	saved := row.ToLedger()
	saved.CategoryName = expense.CategoryName
	return &saved, nil
}

// WithinOwnerTx runs fn in a transaction that first locks the owner's user row.
// On Postgres the SELECT ... FOR UPDATE serializes concurrent writers of the
// same owner across processes; the SQLite dialect drops the locking clause and
// relies on SQLite's single-writer transactions instead.
func (s *Store) WithinOwnerTx(ctx context.Context, ownerID string, fn func(tx ledger.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", ownerID).
			First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ledger.ErrUnknownOwner
			}
			return err
		}
		return fn(&Store{db: tx})
	})
}
