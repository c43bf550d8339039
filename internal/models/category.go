package models

import "ledgerengine/internal/ledger"

// Category represents an income/expense category. Names are unique per user.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:uq_categories_user_name" json:"user_id"`
	Name   string `gorm:"not null;uniqueIndex:uq_categories_user_name" json:"name"`
}

// ToLedger converts the row into the engine's plain record.
func (c *Category) ToLedger() ledger.Category {
	return ledger.Category{ID: c.ID, Name: c.Name, OwnerID: c.UserID}
}
