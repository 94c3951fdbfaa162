// Package money converts user-facing major-unit amounts (dollars) into the
// representations payment providers require: integer minor units for
// card-style APIs, fixed-point decimal strings for order-style APIs.
//
// All conversions round half away from zero (round-half-up for the positive
// amounts this gateway accepts): 10.005 becomes 1001 cents, not 1000.
package money

import (
	"strings"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a major-unit amount to integer minor units (cents).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// MajorUnits converts integer minor units back to a major-unit amount.
// Exact for any minor-unit value, since two decimal digits always fit a float64.
func MajorUnits(minor int64) float64 {
	f, _ := decimal.NewFromInt(minor).Div(hundred).Float64()
	return f
}

// DecimalString renders a major-unit amount as a two-decimal string ("49.99"),
// the format order-style providers expect on the wire.
func DecimalString(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// ParseDecimalString parses a provider decimal string into a major-unit amount.
func ParseDecimalString(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, domainErrors.NewValidationError("amount", "invalid decimal string: "+s)
	}
	f, _ := d.Float64()
	return f, nil
}

// NormalizeCurrency maps any provider currency spelling to the canonical
// lower-case form every gateway result carries.
func NormalizeCurrency(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}

// ValidateAmount checks that a major-unit amount is positive.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	return nil
}
