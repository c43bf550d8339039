// Package money holds the fixed-point helpers used for every monetary value.
// Amounts are shopspring decimals; values are accumulated exactly and only
// rounded to cents at ingress and at presentation.
package money

import (
	"github.com/shopspring/decimal"
)

// CentPlaces is the number of fractional digits kept after rounding.
const CentPlaces = 2

// Zero is the additive identity.
var Zero = decimal.Zero

// MaxAmount is the largest value a decimal(14,2) amount column holds.
var MaxAmount = decimal.New(99999999999999, -CentPlaces)

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// Sum adds the given amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Format renders an amount rounded to cents, e.g. "12.30".
func Format(d decimal.Decimal) string {
	return d.StringFixed(CentPlaces)
}

// Parse reads a decimal string and applies the round-to-cent policy.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundCents(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
