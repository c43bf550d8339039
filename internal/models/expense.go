package models

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
)

// Expense represents money spent by a user.
type Expense struct {
	Base
	UserID        string               `gorm:"type:uuid;not null;index:idx_expenses_user_date" json:"user_id"`
	Amount        decimal.Decimal      `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date          time.Time            `gorm:"not null;index:idx_expenses_user_date" json:"date"`
	Description   string               `json:"description,omitempty"`
	PaymentMethod ledger.PaymentMethod `gorm:"not null;default:'cash'" json:"payment_method"`
	CategoryID    *string              `gorm:"type:uuid" json:"category_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// ToLedger converts the row into the engine's plain record.
func (e *Expense) ToLedger() ledger.Expense {
	out := ledger.Expense{
		ID:            e.ID,
		Amount:        e.Amount,
		Date:          e.Date,
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		CategoryID:    e.CategoryID,
		OwnerID:       e.UserID,
		CreatedAt:     e.CreatedAt,
	}
	if e.Category != nil {
		out.CategoryName = e.Category.Name
	}
	return out
}

// ExpenseFromLedger builds a row from an engine record.
func ExpenseFromLedger(e *ledger.Expense) *Expense {
	return &Expense{
		Base:          Base{ID: e.ID, CreatedAt: e.CreatedAt},
		UserID:        e.OwnerID,
		Amount:        e.Amount,
		Date:          e.Date,
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		CategoryID:    e.CategoryID,
	}
}
