package testutil

import (
	"testing"

	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/shopspring/decimal"
)

func TestFindSummary(t *testing.T) {
	summaries := []payoff.LoanSummary{
		{LoanID: 1, LoanName: "Card A"},
		{LoanID: 2, LoanName: "Card B"},
		{LoanID: 3, LoanName: "Another Loan"},
	}

	tests := []struct {
		name       string
		searchName string
		expectedID int64
	}{
		{"Find existing loan A", "Card A", 1},
		{"Find existing loan B", "Card B", 2},
		{"Find loan with longer name", "Another Loan", 3},
		{"Search for non-existent loan", "Non-existent", 0},
		{"Empty search name", "", 0},
		{"Case sensitive search", "card a", 0},
		{"Partial name match", "Card", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindSummary(summaries, tt.searchName)
			if tt.expectedID == 0 {
				if got != nil {
					t.Errorf("FindSummary() = %+v, expected nil", got)
				}
				return
			}
			if got == nil || got.LoanID != tt.expectedID {
				t.Errorf("FindSummary() = %+v, expected loan %d", got, tt.expectedID)
			}
		})
	}

	t.Run("Returns pointer into slice", func(t *testing.T) {
		FindSummary(summaries, "Card B").PaymentMonths = 7
		if summaries[1].PaymentMonths != 7 {
			t.Error("FindSummary() did not return a pointer into the slice")
		}
	})
}

func TestLedgerProblems(t *testing.T) {
	jan := datetime.MustParseDate("2024-01-01")
	feb := datetime.MustParseDate("2024-02-01")
	d := decimal.RequireFromString

	payment := func(date datetime.Date, principal, interest, remaining string) payoff.PaymentRecord {
		return payoff.PaymentRecord{
			Date:                 date,
			Kind:                 payoff.KindMinimum,
			PrincipalPart:        d(principal),
			InterestPart:         d(interest),
			PaymentTotal:         d(principal).Add(d(interest)),
			BudgetRemainingAfter: d(remaining),
		}
	}

	tests := []struct {
		name     string
		ledger   payoff.Ledger
		problems int
	}{
		{
			name:   "Valid ledger",
			ledger: payoff.Ledger{payment(jan, "90", "10", "0"), payment(feb, "95", "5", "0")},
		},
		{
			name:     "Months out of order",
			ledger:   payoff.Ledger{payment(feb, "90", "10", "0"), payment(jan, "95", "5", "0")},
			problems: 1,
		},
		{
			name:     "Negative budget remaining",
			ledger:   payoff.Ledger{payment(jan, "90", "10", "-0.01")},
			problems: 1,
		},
		{
			name:     "Month over budget",
			ledger:   payoff.Ledger{payment(jan, "90", "10", "0"), payment(jan, "1", "0", "0")},
			problems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &payoff.Result{Budget: d("100"), Ledger: tt.ledger}
			got := LedgerProblems(result, decimal.Zero)
			if len(got) != tt.problems {
				t.Errorf("LedgerProblems() = %v, expected %d problems", got, tt.problems)
			}
		})
	}
}

func TestMonthlyPayments(t *testing.T) {
	jan := datetime.MustParseDate("2024-01-01")
	ledger := payoff.Ledger{
		{Date: jan, Kind: payoff.KindActivation, PrincipalPart: decimal.NewFromInt(-500)},
		{Date: jan, Kind: payoff.KindMinimum, PaymentTotal: decimal.NewFromInt(40)},
		{Date: jan, Kind: payoff.KindSurplus, PaymentTotal: decimal.NewFromInt(60)},
	}

	totals := MonthlyPayments(ledger)
	if len(totals) != 1 {
		t.Fatalf("MonthlyPayments() = %v, expected one month", totals)
	}
	if got := totals[jan.MonthOf()]; !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("MonthlyPayments()[2024-01] = %s, expected 100", got)
	}
}
