package payoff

import "testing"

func TestAssessBudget(t *testing.T) {
	loans := []Loan{
		{ID: 1, Name: "card", Principal: 1000, AnnualRate: 12, MinimumPayment: 100},
		{ID: 2, Name: "car", Principal: 2000, AnnualRate: 6, MinimumPayment: 50},
		{ID: 3, Name: "closed", Principal: 0, AnnualRate: 30, MinimumPayment: 500},
	}

	tests := []struct {
		name            string
		budget          float64
		expectedTier    BudgetTier
		expectedSurplus string
	}{
		{"Below interest", 15, TierBelowInterest, "0.00"},
		{"Covers interest only", 100, TierBelowMinimum, "0.00"},
		{"Matches minimums", 150, TierMatchesMinimum, "0.00"},
		{"Above minimums", 200, TierAboveMinimum, "50.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AssessBudget(loans, tt.budget)
			if result.Tier != tt.expectedTier {
				t.Errorf("AssessBudget(%v).Tier = %v, expected %v", tt.budget, result.Tier, tt.expectedTier)
			}
			if result.Surplus.StringFixed(2) != tt.expectedSurplus {
				t.Errorf("AssessBudget(%v).Surplus = %s, expected %s", tt.budget, result.Surplus, tt.expectedSurplus)
			}
			if result.TotalInterest.StringFixed(2) != "20.00" {
				t.Errorf("TotalInterest = %s, expected 20.00", result.TotalInterest)
			}
			if result.TotalMinimum.StringFixed(2) != "150.00" {
				t.Errorf("TotalMinimum = %s, expected 150.00", result.TotalMinimum)
			}
			if result.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}
