package payoff

import (
	"slices"

	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Kind tells what produced a PaymentRecord.
type Kind string

const (
	// KindActivation opens a loan's liability in its start month.
	KindActivation Kind = "activation"
	// KindMinimum is a loan's contractual minimum payment.
	KindMinimum Kind = "minimum"
	// KindSurplus is leftover budget applied to a single loan.
	KindSurplus Kind = "surplus"
)

// PaymentRecord is one ledger row. Money is rounded to cents.
type PaymentRecord struct {
	Date                 datetime.Date   `json:"date"`
	Kind                 Kind            `json:"kind"`
	LoanID               int64           `json:"loanId"`
	LoanName             string          `json:"loanName"`
	PrincipalPart        decimal.Decimal `json:"principalPart"`
	InterestPart         decimal.Decimal `json:"interestPart"`
	PaymentTotal         decimal.Decimal `json:"paymentTotal"`
	BalanceAfter         decimal.Decimal `json:"balanceAfter"`
	BudgetRemainingAfter decimal.Decimal `json:"budgetRemainingAfter"`
	TotalBalanceAfter    decimal.Decimal `json:"totalBalanceAfter"`
}

// Month returns the calendar month the record is posted in.
func (r PaymentRecord) Month() datetime.Month {
	return r.Date.MonthOf()
}

// IsPayment reports whether the record moves money, i.e. is not an activation.
func (r PaymentRecord) IsPayment() bool {
	return r.Kind != KindActivation
}

// Ledger is the ordered output of a simulation. Records are grouped by month
// in ascending order. Within a month they keep posting order: activations,
// then minimums in strategy order, then the surplus. Every record is dated on
// its loan's start day, so dates inside one month need not ascend.
type Ledger []PaymentRecord

// ForLoan returns the records of a single loan in ledger order.
func (l Ledger) ForLoan(id int64) Ledger {
	var out Ledger
	for _, r := range l {
		if r.LoanID == id {
			out = append(out, r)
		}
	}
	return out
}

// InMonth returns the records posted in the given month.
func (l Ledger) InMonth(m datetime.Month) Ledger {
	var out Ledger
	for _, r := range l {
		if r.Month() == m {
			out = append(out, r)
		}
	}
	return out
}

// Months lists the distinct months present, in ledger order.
func (l Ledger) Months() []datetime.Month {
	var out []datetime.Month
	for _, r := range l {
		if m := r.Month(); len(out) == 0 || out[len(out)-1] != m {
			out = append(out, m)
		}
	}
	return out
}

// PaymentTotal sums PaymentTotal over all records.
func (l Ledger) PaymentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range l {
		total = total.Add(r.PaymentTotal)
	}
	return total
}

// entry is a record before rounding.
type entry struct {
	month      datetime.Month
	day        int
	kind       Kind
	loanID     int64
	loanName   string
	principal  float64
	interest   float64
	balance    float64
	budgetLeft float64
}

// assemble orders the entries by month and converts them to ledger rows,
// carrying the running combined balance from opening.
func assemble(entries []entry, opening float64) Ledger {
	slices.SortStableFunc(entries, func(a, b entry) int {
		return a.month.Compare(b.month)
	})

	ledger := make(Ledger, 0, len(entries))
	total := opening
	for _, e := range entries {
		total -= e.principal
		principal := mathutil.Cents(e.principal)
		interest := mathutil.Cents(e.interest)
		payment := decimal.Zero
		if e.kind != KindActivation {
			payment = principal.Add(interest)
		}
		ledger = append(ledger, PaymentRecord{
			Date:                 e.month.OnDay(e.day),
			Kind:                 e.kind,
			LoanID:               e.loanID,
			LoanName:             e.loanName,
			PrincipalPart:        principal,
			InterestPart:         interest,
			PaymentTotal:         payment,
			BalanceAfter:         mathutil.Cents(e.balance),
			BudgetRemainingAfter: mathutil.Cents(e.budgetLeft),
			TotalBalanceAfter:    mathutil.Cents(total),
		})
	}
	return ledger
}
