package config

import (
	"fmt"

	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"go.uber.org/multierr"
)

// Loan indicates a loan and its parameters as written in the config file.
type Loan struct {
	ID             int64
	Name           string
	Principal      float64
	InterestRate   float64 // annual percentage
	MinimumPayment float64
	StartDate      string
	Priority       *int
}

// ToLoan converts the config entry into a simulation loan. A zero ID is
// replaced by fallbackID.
func (loan *Loan) ToLoan(fallbackID int64) (payoff.Loan, error) {
	start, err := datetime.ParseDate(loan.StartDate)
	if err != nil {
		return payoff.Loan{}, fmt.Errorf("loan %s: %w", loan.Name, err)
	}

	id := loan.ID
	if id == 0 {
		id = fallbackID
	}

	out := payoff.Loan{
		ID:             id,
		Name:           loan.Name,
		Principal:      loan.Principal,
		AnnualRate:     loan.InterestRate,
		MinimumPayment: loan.MinimumPayment,
		StartDate:      start,
	}
	if loan.Priority != nil {
		p := *loan.Priority
		out.Priority = &p
	}
	return out, nil
}

// ToLoans converts every configured loan. Loans without an ID are numbered by
// their position, starting at 1.
func (c *Configuration) ToLoans() ([]payoff.Loan, error) {
	var errs error
	loans := make([]payoff.Loan, 0, len(c.Loans))
	for i := range c.Loans {
		loan, err := c.Loans[i].ToLoan(int64(i + 1))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		loans = append(loans, loan)
	}
	if errs != nil {
		return nil, errs
	}
	return loans, nil
}
