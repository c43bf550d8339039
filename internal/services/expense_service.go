package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/ledger"
	"ledgerengine/internal/models"
	"ledgerengine/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db    *gorm.DB
	guard GuardServicer
}

// NewExpenseService creates a new ExpenseServicer. New expenses go through guard.
func NewExpenseService(db *gorm.DB, guard GuardServicer) ExpenseServicer {
	return &expenseService{db: db, guard: guard}
}

// CreateExpense records a new expense if it keeps committed spending within income.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, input ExpenseInput) (*ledger.Expense, error) {
	amount, err := positiveAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	method := input.PaymentMethod
	if method == "" {
		method = ledger.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment method")
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	var saved *ledger.Expense
	err = s.guard.Guarded(ctx, userID, func(tx ledger.Store, check CheckFunc) error {
		expense := &ledger.Expense{
			Amount:        amount,
			Date:          date.UTC(),
			Description:   strings.TrimSpace(input.Description),
			PaymentMethod: method,
			OwnerID:       userID,
		}
		if input.CategoryID != nil && *input.CategoryID != "" {
			category, err := tx.FindCategoryByID(ctx, userID, *input.CategoryID)
			if err != nil {
				if errors.Is(err, ledger.ErrNotFound) {
					return apperrors.ErrCategoryNotFound
				}
				return err
			}
			expense.CategoryID = &category.ID
			expense.CategoryName = category.Name
		}

		if err := check(amount); err != nil {
			return err
		}

		saved, err = tx.SaveExpense(ctx, expense)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetUserExpenses returns a paginated list of expenses, newest first.
func (s *expenseService) GetUserExpenses(ctx context.Context, userID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", userID).Scopes(recordFilter(filter))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Preload("Category").
		Order("date DESC").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).Preload("Category").
		Where("id = ? AND user_id = ?", expenseID, userID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense edits an expense. The budget invariant is only enforced on
// creation; an edit that raises the amount is accepted as is.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, expenseID string, update RecordUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates, err := recordUpdates(ctx, s.db, userID, update)
	if err != nil {
		return nil, err
	}
	if update.PaymentMethod != nil {
		if !update.PaymentMethod.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment method")
		}
		updates["payment_method"] = *update.PaymentMethod
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Expense{}).Where("id = ?", expense.ID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetExpenseByID(ctx, userID, expenseID)
}

// DeleteExpense deletes an expense
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
