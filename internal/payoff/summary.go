package payoff

import (
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// LoanSummary aggregates one loan's rows of a ledger.
type LoanSummary struct {
	LoanID           int64           `json:"loanId"`
	LoanName         string          `json:"loanName"`
	StartingBalance  decimal.Decimal `json:"startingBalance"`
	PrincipalPaid    decimal.Decimal `json:"principalPaid"`
	InterestPaid     decimal.Decimal `json:"interestPaid"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	// PaymentMonths counts the distinct months with a payment to the loan.
	PaymentMonths int             `json:"paymentMonths"`
	PayoffMonth   *datetime.Month `json:"payoffMonth,omitempty"`
}

// PaidOff reports whether the loan closed during the run.
func (s LoanSummary) PaidOff() bool {
	return s.PayoffMonth != nil
}

// Totals aggregates a whole ledger.
type Totals struct {
	PrincipalPaid decimal.Decimal `json:"principalPaid"`
	InterestPaid  decimal.Decimal `json:"interestPaid"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
}

func summarize(input []Loan, ledger Ledger, work []*workingLoan) []LoanSummary {
	summaries := make([]LoanSummary, len(input))
	index := make(map[int64]int, len(input))
	for i, loan := range input {
		index[loan.ID] = i
		summaries[i] = LoanSummary{
			LoanID:           loan.ID,
			LoanName:         loan.Name,
			StartingBalance:  mathutil.Cents(loan.Principal),
			PrincipalPaid:    decimal.Zero,
			InterestPaid:     decimal.Zero,
			TotalPaid:        decimal.Zero,
			RemainingBalance: mathutil.Cents(work[i].Principal),
		}
	}

	lastMonth := make(map[int64]datetime.Month, len(input))
	for _, r := range ledger {
		if !r.IsPayment() {
			continue
		}
		i := index[r.LoanID]
		s := &summaries[i]
		s.PrincipalPaid = s.PrincipalPaid.Add(r.PrincipalPart)
		s.InterestPaid = s.InterestPaid.Add(r.InterestPart)
		s.TotalPaid = s.TotalPaid.Add(r.PaymentTotal)
		if m, ok := lastMonth[r.LoanID]; !ok || m != r.Month() {
			s.PaymentMonths++
			lastMonth[r.LoanID] = r.Month()
		}
		if r.BalanceAfter.IsZero() && s.PayoffMonth == nil {
			m := r.Month()
			s.PayoffMonth = &m
		}
	}
	return summaries
}

func totalsOf(ledger Ledger) Totals {
	t := Totals{PrincipalPaid: decimal.Zero, InterestPaid: decimal.Zero, TotalPaid: decimal.Zero}
	for _, r := range ledger {
		if !r.IsPayment() {
			continue
		}
		t.PrincipalPaid = t.PrincipalPaid.Add(r.PrincipalPart)
		t.InterestPaid = t.InterestPaid.Add(r.InterestPart)
		t.TotalPaid = t.TotalPaid.Add(r.PaymentTotal)
	}
	return t
}
