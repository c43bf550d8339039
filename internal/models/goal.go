package models

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
)

// Goal represents a savings target. CurrentAmount is only written by contributions.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string          `gorm:"not null" json:"title"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
}

// Status reports whether the goal is still open or already funded.
func (g *Goal) Status() ledger.GoalStatus {
	return g.ToLedger().Status()
}

// ToLedger converts the row into the engine's plain record.
func (g *Goal) ToLedger() ledger.Goal {
	return ledger.Goal{
		ID:            g.ID,
		Title:         g.Title,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Deadline:      g.Deadline,
		OwnerID:       g.UserID,
		CreatedAt:     g.CreatedAt,
	}
}

// GoalFromLedger builds a row from an engine record.
func GoalFromLedger(g *ledger.Goal) *Goal {
	return &Goal{
		Base:          Base{ID: g.ID, CreatedAt: g.CreatedAt},
		UserID:        g.OwnerID,
		Title:         g.Title,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Deadline:      g.Deadline,
	}
}
