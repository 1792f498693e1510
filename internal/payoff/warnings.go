package payoff

import (
	"fmt"

	"github.com/iwvelando/debt-payoff/pkg/constants"
)

// WarningCode classifies a configuration warning.
type WarningCode string

const (
	// WarningMinimumBelowInterest marks a loan whose minimum payment does not
	// exceed its monthly interest; minimums alone never pay it down.
	WarningMinimumBelowInterest WarningCode = "minimumBelowInterest"
	// WarningBudgetBelowMinimums marks a budget lower than the sum of every
	// loan's minimum payment.
	WarningBudgetBelowMinimums WarningCode = "budgetBelowMinimums"
)

// Warning is returned alongside a result; it never stops a simulation.
type Warning struct {
	Code     WarningCode `json:"code"`
	LoanID   int64       `json:"loanId,omitempty"`
	LoanName string      `json:"loanName,omitempty"`
	Message  string      `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// DetectWarnings inspects validated input for configurations that cannot
// amortize. It runs before the simulation so such inputs are reported up
// front rather than discovered by the iteration cap.
func DetectWarnings(input []Loan, budget float64) []Warning {
	var warnings []Warning
	totalMinimum := 0.0
	for _, loan := range input {
		totalMinimum += loan.MinimumPayment
		interest := MonthlyInterest(loan)
		if interest >= loan.MinimumPayment {
			warnings = append(warnings, Warning{
				Code:     WarningMinimumBelowInterest,
				LoanID:   loan.ID,
				LoanName: loan.Name,
				Message: fmt.Sprintf("%s: minimum payment %.2f does not exceed monthly interest %.2f",
					loan.label(), loan.MinimumPayment, interest),
			})
		}
	}
	if totalMinimum-budget > constants.BalanceEpsilon {
		warnings = append(warnings, Warning{
			Code: WarningBudgetBelowMinimums,
			Message: fmt.Sprintf("budget %.2f is below the combined minimum payments %.2f",
				budget, totalMinimum),
		})
	}
	return warnings
}
