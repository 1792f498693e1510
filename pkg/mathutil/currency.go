// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// Cents converts a float amount into a decimal rounded to cents. This is the
// only place simulation floats become ledger money.
func Cents(val float64) decimal.Decimal {
	return decimal.NewFromFloat(val).Round(constants.CurrencyPlaces)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// ClampNonNegative returns val, or 0 when val is negative.
func ClampNonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}

// MonthlyRate converts an annual percentage rate to a monthly fraction,
// e.g. 12 -> 0.01.
func MonthlyRate(annualPercent float64) float64 {
	return annualPercent / constants.MonthsPerYear / constants.PercentageMultiplier
}
