// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"

	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/shopspring/decimal"
)

// FindSummary finds a loan summary by loan name.
// Returns a pointer to the summary if found, nil otherwise.
func FindSummary(summaries []payoff.LoanSummary, name string) *payoff.LoanSummary {
	for i := range summaries {
		if summaries[i].LoanName == name {
			return &summaries[i]
		}
	}
	return nil
}

// MonthlyPayments totals the payment records of a ledger per month.
func MonthlyPayments(ledger payoff.Ledger) map[datetime.Month]decimal.Decimal {
	totals := make(map[datetime.Month]decimal.Decimal)
	for _, r := range ledger {
		if !r.IsPayment() {
			continue
		}
		totals[r.Month()] = totals[r.Month()].Add(r.PaymentTotal)
	}
	return totals
}

// LedgerProblems checks the properties every ledger must hold and describes
// each violation. Per-month payments may exceed the budget by at most
// tolerance, which absorbs cent rounding.
func LedgerProblems(result *payoff.Result, tolerance decimal.Decimal) []string {
	var problems []string
	limit := result.Budget.Add(tolerance)

	for i, r := range result.Ledger {
		if i > 0 && r.Month().Before(result.Ledger[i-1].Month()) {
			problems = append(problems, fmt.Sprintf("row %d: month %s precedes %s", i, r.Month(), result.Ledger[i-1].Month()))
		}
		if r.BudgetRemainingAfter.IsNegative() {
			problems = append(problems, fmt.Sprintf("row %d: budget remaining %s is negative", i, r.BudgetRemainingAfter))
		}
		if r.BalanceAfter.IsNegative() {
			problems = append(problems, fmt.Sprintf("row %d: balance %s is negative", i, r.BalanceAfter))
		}
		if r.IsPayment() && !r.PaymentTotal.Equal(r.PrincipalPart.Add(r.InterestPart)) {
			problems = append(problems, fmt.Sprintf("row %d: payment %s is not principal plus interest", i, r.PaymentTotal))
		}
	}

	for month, total := range MonthlyPayments(result.Ledger) {
		if total.GreaterThan(limit) {
			problems = append(problems, fmt.Sprintf("%s: payments %s exceed budget %s", month, total, result.Budget))
		}
	}
	return problems
}
