package config

import (
	"testing"

	"github.com/iwvelando/debt-payoff/internal/payoff"
	"go.uber.org/multierr"
)

func TestToLoans(t *testing.T) {
	priority := 3
	conf := Configuration{
		Loans: []Loan{
			{ID: 10, Name: "card", Principal: 1000, InterestRate: 19.9, MinimumPayment: 40, StartDate: "2024-01-15", Priority: &priority},
			{Name: "car", Principal: 9000, InterestRate: 5, MinimumPayment: 250, StartDate: "2024-03"},
		},
	}

	loans, err := conf.ToLoans()
	if err != nil {
		t.Fatalf("ToLoans() error = %v", err)
	}
	if len(loans) != 2 {
		t.Fatalf("ToLoans() returned %d loans, expected 2", len(loans))
	}

	if loans[0].ID != 10 || loans[0].AnnualRate != 19.9 || loans[0].StartDate.String() != "2024-01-15" {
		t.Errorf("ToLoans()[0] = %+v", loans[0])
	}
	if loans[0].Priority == nil || *loans[0].Priority != 3 {
		t.Errorf("ToLoans()[0].Priority = %v, expected 3", loans[0].Priority)
	}
	priority = 9
	if *loans[0].Priority != 3 {
		t.Error("ToLoans() shares the priority pointer with the configuration")
	}

	if loans[1].ID != 2 {
		t.Errorf("ToLoans()[1].ID = %d, expected positional id 2", loans[1].ID)
	}
	if loans[1].StartDate.String() != "2024-03-01" {
		t.Errorf("ToLoans()[1].StartDate = %s, expected 2024-03-01", loans[1].StartDate)
	}

	if err := payoff.Validate(loans, payoff.Options{Budget: 500}); err != nil {
		t.Errorf("converted loans fail validation: %v", err)
	}
}

func TestToLoansInvalidDates(t *testing.T) {
	conf := Configuration{
		Loans: []Loan{
			{Name: "a", StartDate: "tomorrow"},
			{Name: "b", StartDate: "2024-01-01"},
			{Name: "c", StartDate: ""},
		},
	}

	loans, err := conf.ToLoans()
	if err == nil {
		t.Fatal("ToLoans() expected error but got none")
	}
	if loans != nil {
		t.Errorf("ToLoans() returned loans alongside an error: %v", loans)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("ToLoans() reported %d errors, expected 2", n)
	}
}
