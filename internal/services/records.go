package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/models"
	"ledgerengine/internal/money"
)

var errAmountTooLarge = apperrors.WithMessage(apperrors.ErrInvalidAmount,
	"Amount must not exceed "+money.Format(money.MaxAmount))

// positiveAmount applies the round-to-cent policy and rejects results that are
// not positive or do not fit an amount column.
func positiveAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	rounded := money.RoundCents(amount)
	if !rounded.IsPositive() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	if rounded.GreaterThan(money.MaxAmount) {
		return decimal.Zero, errAmountTooLarge
	}
	return rounded, nil
}

// ownedCategory returns the category when categoryID is set and belongs to the user.
func ownedCategory(ctx context.Context, db *gorm.DB, userID string, categoryID *string) (*models.Category, error) {
	if categoryID == nil || *categoryID == "" {
		return nil, nil
	}
	var category models.Category
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// recordFilter applies RecordFilter to an income or expense query. ToDate is inclusive.
func recordFilter(filter RecordFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.FromDate != nil {
			db = db.Where("date >= ?", filter.FromDate.UTC())
		}
		if filter.ToDate != nil {
			db = db.Where("date <= ?", filter.ToDate.UTC())
		}
		if filter.CategoryID != nil {
			db = db.Where("category_id = ?", *filter.CategoryID)
		}
		return db
	}
}

// recordUpdates turns a RecordUpdate into a column map after validating it.
func recordUpdates(ctx context.Context, db *gorm.DB, userID string, update RecordUpdate) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if update.Amount != nil {
		amount, err := positiveAmount(*update.Amount)
		if err != nil {
			return nil, err
		}
		updates["amount"] = amount
	}
	if update.Date != nil {
		updates["date"] = update.Date.UTC()
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.CategoryID != nil {
		if *update.CategoryID == "" {
			updates["category_id"] = nil
		} else {
			if _, err := ownedCategory(ctx, db, userID, update.CategoryID); err != nil {
				return nil, err
			}
			updates["category_id"] = *update.CategoryID
		}
	}
	return updates, nil
}
