package models

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
)

// Income represents money received by a user.
type Income struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index:idx_incomes_user_date" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null;index:idx_incomes_user_date" json:"date"`
	Description string          `json:"description,omitempty"`
	CategoryID  *string         `gorm:"type:uuid" json:"category_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// ToLedger converts the row into the engine's plain record.
func (i *Income) ToLedger() ledger.Income {
	out := ledger.Income{
		ID:          i.ID,
		Amount:      i.Amount,
		Date:        i.Date,
		Description: i.Description,
		CategoryID:  i.CategoryID,
		OwnerID:     i.UserID,
		CreatedAt:   i.CreatedAt,
	}
	if i.Category != nil {
		out.CategoryName = i.Category.Name
	}
	return out
}
