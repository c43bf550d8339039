// Package models holds the GORM persistence mapping of the ledger records.
// The engine itself never sees these types; it works on the plain structs of
// package ledger, which each model converts to with ToLedger.
package models

// All lists every model managed by AutoMigrate.
var All = []interface{}{
	&User{},
	&Category{},
	&Income{},
	&Expense{},
	&Goal{},
}
