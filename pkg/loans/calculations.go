// Package loans provides common loan processing utilities.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrPaymentTooSmall is returned when a payment does not exceed the first
// month's interest, so the balance can never decrease.
var ErrPaymentTooSmall = errors.New("payment does not cover monthly interest")

// Installment holds the values for a given scheduled payment.
type Installment struct {
	Number    int             `json:"number"`
	Date      datetime.Date   `json:"date"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Payment   decimal.Decimal `json:"payment"`
	Balance   decimal.Decimal `json:"balance"`
}

// ScheduleConfig describes a single loan repaid with a fixed monthly payment.
type ScheduleConfig struct {
	Name       string
	Principal  float64
	AnnualRate float64
	Payment    float64
	StartDate  datetime.Date
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		return principal / float64(termMonths)
	}

	periodicInterestRate := mathutil.MonthlyRate(annualInterestRate)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates the interest accrued in one month on the
// remaining principal.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * mathutil.MonthlyRate(annualInterestRate)
}

// ScheduleGenerator produces fixed-payment amortization schedules for one loan.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Generate creates the complete schedule. The first installment falls one
// month after the start date; the last installment pays whatever principal
// remains plus its interest.
func (g *ScheduleGenerator) Generate(loan ScheduleConfig) ([]Installment, error) {
	if loan.Principal <= 0 {
		return nil, nil
	}
	if loan.Payment <= CalculateInterestPayment(loan.Principal, loan.AnnualRate) {
		return nil, fmt.Errorf("loan %s: %w", loan.Name, ErrPaymentTooSmall)
	}

	var schedule []Installment
	balance := loan.Principal
	month := loan.StartDate.MonthOf()
	day := loan.StartDate.Day

	for number := 1; balance > 0; number++ {
		if number > constants.MaxSimulationMonths {
			g.logger.Warn(fmt.Sprintf("loan %s still open after %d installments", loan.Name, constants.MaxSimulationMonths),
				zap.String("op", "loans.Generate"),
			)
			break
		}
		month = month.Next()

		interest := CalculateInterestPayment(balance, loan.AnnualRate)
		principal := loan.Payment - interest
		if balance <= loan.Payment || mathutil.Round(balance-principal) <= 0 {
			principal = balance
		}
		balance -= principal

		schedule = append(schedule, Installment{
			Number:    number,
			Date:      month.OnDay(day),
			Principal: mathutil.Cents(principal),
			Interest:  mathutil.Cents(interest),
			Payment:   mathutil.Cents(principal + interest),
			Balance:   mathutil.Cents(balance),
		})
	}

	g.logger.Debug(fmt.Sprintf("generated %d installments for loan %s", len(schedule), loan.Name),
		zap.String("op", "loans.Generate"),
	)
	return schedule, nil
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(schedule []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, installment := range schedule {
		total = total.Add(installment.Interest)
	}
	return total
}
