package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"Zero", "0", "$0.00"},
		{"Small", "9.5", "$9.50"},
		{"Thousands", "1234.56", "$1,234.56"},
		{"Millions", "1234567.891", "$1,234,567.89"},
		{"Negative activation", "-25000", "-$25,000.00"},
		{"Exactly three digits", "999.99", "$999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Currency(decimal.RequireFromString(tt.amount))
			if result != tt.expected {
				t.Errorf("Currency(%s) = %s, expected %s", tt.amount, result, tt.expected)
			}
		})
	}
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"1000", "1,000.00"},
		{"-1000.5", "-1,000.50"},
		{"12.345", "12.35"},
	}

	for _, tt := range tests {
		if result := Numeric(decimal.RequireFromString(tt.amount)); result != tt.expected {
			t.Errorf("Numeric(%s) = %s, expected %s", tt.amount, result, tt.expected)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(7.5); got != "7.50%" {
		t.Errorf("Percent(7.5) = %s, expected 7.50%%", got)
	}
}
