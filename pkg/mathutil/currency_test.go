package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two cents", 0.019, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCents(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"Whole amount", 100, "100"},
		{"Interest on 1000 at 12%", 1000 * 0.01, "10"},
		{"Rounds to cents", 91.666666, "91.67"},
		{"Negative activation amount", -1234.567, "-1234.57"},
		{"Float noise disappears", 0.1 + 0.2, "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Cents(tt.input).String()
			if result != tt.expected {
				t.Errorf("Cents(%v) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small positive", 0.001, true},
		{"Very small negative", -0.001, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsPositive(t *testing.T) {
	if IsPositive(0.005) {
		t.Error("IsPositive(0.005) = true, expected false")
	}
	if !IsPositive(0.02) {
		t.Error("IsPositive(0.02) = false, expected true")
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Regular", 7.5, true},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
		{"Negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsFinite(tt.input); result != tt.expected {
				t.Errorf("IsFinite(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClampNonNegative(t *testing.T) {
	if got := ClampNonNegative(-5); got != 0 {
		t.Errorf("ClampNonNegative(-5) = %v, expected 0", got)
	}
	if got := ClampNonNegative(5); got != 5 {
		t.Errorf("ClampNonNegative(5) = %v, expected 5", got)
	}
}

func TestMonthlyRate(t *testing.T) {
	tests := []struct {
		name     string
		annual   float64
		expected float64
	}{
		{"Twelve percent", 12, 0.01},
		{"Twenty four percent", 24, 0.02},
		{"Seven and a half percent", 7.5, 0.00625},
		{"Zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := MonthlyRate(tt.annual); math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("MonthlyRate(%v) = %v, expected %v", tt.annual, result, tt.expected)
			}
		})
	}
}
