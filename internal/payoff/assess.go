package payoff

import (
	"math"

	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// BudgetTier ranks a budget against the portfolio's monthly obligations.
type BudgetTier string

const (
	// TierBelowInterest: the budget does not even cover a month of interest.
	TierBelowInterest BudgetTier = "belowInterest"
	// TierBelowMinimum: interest is covered but the minimums are not.
	TierBelowMinimum BudgetTier = "belowMinimum"
	// TierMatchesMinimum: the budget equals the minimums to the cent.
	TierMatchesMinimum BudgetTier = "matchesMinimum"
	// TierAboveMinimum: there is surplus to allocate.
	TierAboveMinimum BudgetTier = "aboveMinimum"
)

// Assessment is the outcome of AssessBudget.
type Assessment struct {
	Budget        decimal.Decimal `json:"budget"`
	TotalInterest decimal.Decimal `json:"totalMonthlyInterest"`
	TotalMinimum  decimal.Decimal `json:"totalMinimumPayment"`
	Surplus       decimal.Decimal `json:"surplus"`
	Tier          BudgetTier      `json:"tier"`
	Message       string          `json:"message"`
}

var tierMessages = map[BudgetTier]string{
	TierBelowInterest:  "budget is less than the total monthly interest",
	TierBelowMinimum:   "budget covers the monthly interest but not the minimum payments",
	TierMatchesMinimum: "budget matches the total minimum payments",
	TierAboveMinimum:   "budget exceeds the total minimum payments",
}

// AssessBudget compares a monthly budget with the first-month interest and
// minimum payments of every open loan.
func AssessBudget(input []Loan, budget float64) Assessment {
	interest, minimum := 0.0, 0.0
	for _, loan := range input {
		if loan.Principal <= 0 {
			continue
		}
		interest += MonthlyInterest(loan)
		minimum += loan.MinimumPayment
	}

	var tier BudgetTier
	switch {
	case budget < interest:
		tier = TierBelowInterest
	case math.Abs(budget-minimum) < constants.CurrencyTolerance/2:
		tier = TierMatchesMinimum
	case budget < minimum:
		tier = TierBelowMinimum
	default:
		tier = TierAboveMinimum
	}

	return Assessment{
		Budget:        mathutil.Cents(budget),
		TotalInterest: mathutil.Cents(interest),
		TotalMinimum:  mathutil.Cents(minimum),
		Surplus:       mathutil.Cents(mathutil.ClampNonNegative(budget - minimum)),
		Tier:          tier,
		Message:       tierMessages[tier],
	}
}
