package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/models"
	"ledgerengine/internal/pagination"
)

// incomeService handles income-related business logic. Incomes only ever
// loosen the budget invariant, so no write here goes through the guard.
type incomeService struct {
	db *gorm.DB
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db}
}

// CreateIncome records a new income
func (s *incomeService) CreateIncome(ctx context.Context, userID string, input IncomeInput) (*models.Income, error) {
	amount, err := positiveAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	category, err := ownedCategory(ctx, s.db, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	income := &models.Income{
		UserID:      userID,
		Amount:      amount,
		Date:        date.UTC(),
		Description: strings.TrimSpace(input.Description),
		Category:    category,
	}
	if category != nil {
		income.CategoryID = &category.ID
	}

	if err := s.db.WithContext(ctx).Omit("Category").Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// GetUserIncomes returns a paginated list of incomes, newest first.
func (s *incomeService) GetUserIncomes(ctx context.Context, userID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Income], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Income{}).Where("user_id = ?", userID).Scopes(recordFilter(filter))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var incomes []models.Income
	if err := base.Preload("Category").
		Order("date DESC").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(incomes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetIncomeByID retrieves an income by ID for a specific user
func (s *incomeService) GetIncomeByID(ctx context.Context, userID, incomeID string) (*models.Income, error) {
	var income models.Income
	if err := s.db.WithContext(ctx).Preload("Category").
		Where("id = ? AND user_id = ?", incomeID, userID).
		First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

// UpdateIncome changes amount, date, description or category of an income
func (s *incomeService) UpdateIncome(ctx context.Context, userID, incomeID string, update RecordUpdate) (*models.Income, error) {
	income, err := s.GetIncomeByID(ctx, userID, incomeID)
	if err != nil {
		return nil, err
	}

	updates, err := recordUpdates(ctx, s.db, userID, update)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Income{}).Where("id = ?", income.ID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetIncomeByID(ctx, userID, incomeID)
}

// DeleteIncome deletes an income
func (s *incomeService) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	income, err := s.GetIncomeByID(ctx, userID, incomeID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(income).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
