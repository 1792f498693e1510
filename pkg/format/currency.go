// Package format renders ledger money and rates for people.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + grouped(amount.Abs())
	}
	return "$" + grouped(amount)
}

// Numeric returns the amount with separators and no symbol (e.g., "-1,234.56").
func Numeric(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + grouped(amount.Abs())
	}
	return grouped(amount)
}

// Percent formats an annual percentage rate, e.g. 7.5 -> "7.50%".
func Percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}

func grouped(value decimal.Decimal) string {
	fixed := value.StringFixed(constants.CurrencyPlaces)
	intPart, decPart, _ := strings.Cut(fixed, ".")

	if len(intPart) <= 3 {
		return intPart + "." + decPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String() + "." + decPart
}
