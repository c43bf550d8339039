package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/ledger"
	"ledgerengine/internal/logger"
	"ledgerengine/internal/metrics"
	"ledgerengine/internal/models"
	"ledgerengine/internal/money"
	"ledgerengine/internal/pagination"
)

// goalService handles goal-related business logic.
type goalService struct {
	db    *gorm.DB
	guard GuardServicer
	now   func() time.Time
}

// NewGoalService creates a new GoalServicer. Contributions go through guard.
func NewGoalService(db *gorm.DB, guard GuardServicer) GoalServicer {
	return &goalService{db: db, guard: guard, now: time.Now}
}

// CreateGoal creates a goal with nothing saved yet
func (s *goalService) CreateGoal(ctx context.Context, userID, title string, target decimal.Decimal, deadline *time.Time) (*models.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal title is required")
	}
	targetAmount, err := positiveAmount(target)
	if errors.Is(err, apperrors.ErrInvalidAmount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "target amount must be greater than zero")
	}
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:        userID,
		Title:         title,
		TargetAmount:  targetAmount,
		CurrentAmount: money.Zero,
		Deadline:      utcPtr(deadline),
	}
	if err := s.db.WithContext(ctx).Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetUserGoals returns a paginated list of goals in creation order.
func (s *goalService) GetUserGoals(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Goal{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.Goal
	if err := base.Order("created_at ASC").Order("id ASC").
		Scopes(pagination.Paginate(page)).
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGoalByID retrieves a goal by ID for a specific user
func (s *goalService) GetGoalByID(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal changes title, target or deadline. It never writes current_amount.
func (s *goalService) UpdateGoal(ctx context.Context, userID, goalID string, update GoalUpdate) (*models.Goal, error) {
	goal, err := s.GetGoalByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal title is required")
		}
		updates["title"] = title
	}
	if update.TargetAmount != nil {
		target, err := positiveAmount(*update.TargetAmount)
		if errors.Is(err, apperrors.ErrInvalidAmount) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "target amount must be greater than zero")
		}
		if err != nil {
			return nil, err
		}
		updates["target_amount"] = target
	}
	if update.Deadline != nil {
		updates["deadline"] = update.Deadline.UTC()
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Goal{}).Where("id = ?", goal.ID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetGoalByID(ctx, userID, goalID)
}

// DeleteGoal deletes a goal. Its contributions stop counting as committed.
func (s *goalService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	goal, err := s.GetGoalByID(ctx, userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Contribute adds amount to a goal's saved total, provided committed spending
// stays within recorded income. The returned warning is advisory.
func (s *goalService) Contribute(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*Contribution, error) {
	amount, err := positiveAmount(amount)
	if err != nil {
		return nil, err
	}

	var saved *ledger.Goal
	err = s.guard.Guarded(ctx, userID, func(tx ledger.Store, check CheckFunc) error {
		goal, err := tx.FindGoalByID(ctx, userID, goalID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return apperrors.ErrGoalNotFound
			}
			return err
		}
		if goal.CurrentAmount.Add(amount).GreaterThan(money.MaxAmount) {
			return errAmountTooLarge
		}
		if err := check(amount); err != nil {
			return err
		}

		saved, err = tx.AddToGoal(ctx, userID, goal.ID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordContribution()

	result := &Contribution{Goal: *saved}
	if alert, ok := goalDeadlineAlert(*saved, s.now(), DashboardGoalWindow); ok {
		result.Warning = &alert
		logger.Get().Warnw("Goal deadline approaching",
			"goal_id", saved.ID,
			"owner_id", userID,
			"days_left", alert.DaysLeft,
			"remaining", money.Format(alert.RemainingAmount),
		)
	}
	return result, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
