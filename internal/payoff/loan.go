// Package payoff simulates month-by-month repayment of a loan portfolio under
// a fixed monthly budget and produces the resulting payment ledger.
package payoff

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/iwvelando/debt-payoff/pkg/loans"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"go.uber.org/multierr"
)

// ErrInvalidInput matches every ValidationError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Loan is one debt in the portfolio.
type Loan struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Principal      float64       `json:"principal"`
	AnnualRate     float64       `json:"annualRate"`
	MinimumPayment float64       `json:"minimumPayment"`
	StartDate      datetime.Date `json:"startDate"`
	Priority       *int          `json:"priority,omitempty"`
}

// MonthlyInterest is the interest accrued on the current principal in one month.
func MonthlyInterest(loan Loan) float64 {
	return loans.CalculateInterestPayment(loan.Principal, loan.AnnualRate)
}

// MinimumPortions splits the loan's minimum payment for the current month into
// principal and interest. The principal part never exceeds the balance and is
// never negative: a minimum below the accrued interest pays the interest only.
// A residual below half a cent is folded into the principal part so the loan
// closes at exactly zero.
func MinimumPortions(loan Loan) (principal, interest float64) {
	interest = MonthlyInterest(loan)
	principal = mathutil.ClampNonNegative(math.Min(loan.MinimumPayment-interest, loan.Principal))
	if mathutil.Round(loan.Principal-principal) == 0 {
		principal = loan.Principal
	}
	return principal, interest
}

func (l Loan) clone() Loan {
	c := l
	if l.Priority != nil {
		p := *l.Priority
		c.Priority = &p
	}
	return c
}

func (l Loan) label() string {
	return fmt.Sprintf("loan %d (%s)", l.ID, l.Name)
}

// ValidationError describes one malformed input field.
type ValidationError struct {
	LoanID   int64  `json:"loanId,omitempty"`
	LoanName string `json:"loanName,omitempty"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
	// Portfolio is set for fields that belong to the run rather than a loan.
	Portfolio bool `json:"portfolio,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Portfolio {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("loan %d (%s): %s %s", e.LoanID, e.LoanName, e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Validate checks the loans and run options before any simulation. All
// problems are reported together.
func Validate(input []Loan, opts Options) error {
	var err error

	if !mathutil.IsFinite(opts.Budget) || opts.Budget <= 0 {
		err = multierr.Append(err, &ValidationError{Field: "budget", Reason: "must be a positive number", Portfolio: true})
	}
	if !opts.Strategy.Valid() {
		err = multierr.Append(err, &ValidationError{Field: "strategy", Reason: fmt.Sprintf("unknown value %d", int(opts.Strategy)), Portfolio: true})
	}
	if opts.MaxMonths < 0 {
		err = multierr.Append(err, &ValidationError{Field: "maxMonths", Reason: "must not be negative", Portfolio: true})
	}

	seen := make(map[int64]bool, len(input))
	for _, loan := range input {
		fail := func(field, reason string) {
			err = multierr.Append(err, &ValidationError{LoanID: loan.ID, LoanName: loan.Name, Field: field, Reason: reason})
		}
		if seen[loan.ID] {
			fail("id", "is duplicated")
		}
		seen[loan.ID] = true

		if strings.TrimSpace(loan.Name) == "" {
			fail("name", "is required")
		}
		if !mathutil.IsFinite(loan.Principal) || loan.Principal <= 0 {
			fail("principal", "must be a positive number")
		}
		if !mathutil.IsFinite(loan.AnnualRate) || loan.AnnualRate < 0 {
			fail("annualRate", "must be a non-negative number")
		}
		if !mathutil.IsFinite(loan.MinimumPayment) || loan.MinimumPayment <= 0 {
			fail("minimumPayment", "must be a positive number")
		}
		if loan.StartDate.IsZero() {
			fail("startDate", "is required")
		}
	}

	return err
}

// ValidationErrors unpacks the individual failures from Validate.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	for _, e := range multierr.Errors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}
