// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ledgerengine/internal/ledger"
)

// MonthLayout is the format accepted by the iso_month tag, e.g. "2024-05".
const MonthLayout = "2006-01"

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("iso_month", validateISOMonth)
		_ = v.RegisterValidation("uuid_or_empty", validateUUIDOrEmpty)
	}
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return ledger.PaymentMethod(fl.Field().String()).Valid()
}

func validateISOMonth(fl validator.FieldLevel) bool {
	_, err := time.Parse(MonthLayout, fl.Field().String())
	return err == nil
}

// validateUUIDOrEmpty accepts a UUID or "", which clears an optional reference.
func validateUUIDOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := uuid.Parse(value)
	return err == nil
}
