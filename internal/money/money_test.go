package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345", "12.35"},
		{"12.344", "12.34"},
		{"-12.345", "-12.35"},
		{"0.005", "0.01"},
		{"100", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundCents(decimal.RequireFromString(tt.in))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("RoundCents(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestSum_IsExact(t *testing.T) {
	// 0.1 added ten times drifts in binary floating point but not here.
	parts := make([]decimal.Decimal, 10)
	for i := range parts {
		parts[i] = decimal.RequireFromString("0.1")
	}
	if got := Sum(parts...); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected exactly 1, got %s", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(decimal.RequireFromString("12.3")); got != "12.30" {
		t.Errorf("expected 12.30, got %s", got)
	}
	if got := Format(decimal.RequireFromString("-0.456")); got != "-0.46" {
		t.Errorf("expected -0.46, got %s", got)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("19.999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Format(d) != "20.00" {
		t.Errorf("expected 20.00, got %s", Format(d))
	}

	if _, err := Parse("abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestMaxAmount(t *testing.T) {
	if got := Format(MaxAmount); got != "999999999999.99" {
		t.Errorf("MaxAmount = %s, want 999999999999.99", got)
	}
}
