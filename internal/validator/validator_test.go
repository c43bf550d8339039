package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestCustomTags(t *testing.T) {
	v := validator.New()
	_ = v.RegisterValidation("payment_method", validatePaymentMethod)
	_ = v.RegisterValidation("iso_month", validateISOMonth)
	_ = v.RegisterValidation("uuid_or_empty", validateUUIDOrEmpty)

	empty := ""
	categoryID := "0190a8e4-7b3c-7d2e-9f10-2a3b4c5d6e7f"
	badID := "not-a-uuid"

	type payload struct {
		Method   string  `validate:"omitempty,payment_method"`
		Month    string  `validate:"omitempty,iso_month"`
		Category *string `validate:"omitempty,uuid_or_empty"`
	}

	tests := []struct {
		name    string
		in      payload
		wantErr bool
	}{
		{"empty_is_fine", payload{}, false},
		{"known_method", payload{Method: "credit_card"}, false},
		{"unknown_method", payload{Method: "barter"}, true},
		{"valid_month", payload{Month: "2024-05"}, false},
		{"month_out_of_range", payload{Month: "2024-13"}, true},
		{"full_date_is_not_a_month", payload{Month: "2024-05-01"}, true},
		{"empty_category_clears", payload{Category: &empty}, false},
		{"category_uuid", payload{Category: &categoryID}, false},
		{"category_not_uuid", payload{Category: &badID}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
