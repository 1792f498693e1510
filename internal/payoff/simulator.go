package payoff

import (
	"fmt"
	"math"
	"slices"

	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Status is the terminal state of a simulation.
type Status string

const (
	// StatusPaidOff means every loan reached a zero balance.
	StatusPaidOff Status = "paidOff"
	// StatusInsufficientBudget means a month's minimums exceeded the budget.
	StatusInsufficientBudget Status = "insufficientBudget"
	// StatusIterationLimit means loans were still open at the month cap.
	StatusIterationLimit Status = "iterationLimit"
)

// Options configure a single run.
type Options struct {
	Budget   float64  `json:"budget"`
	Strategy Strategy `json:"strategy"`
	// StartMonth overrides the first simulated month. When zero the earliest
	// loan start month is used.
	StartMonth datetime.Month `json:"startMonth"`
	// MaxMonths caps the simulated months; 0 selects
	// constants.MaxSimulationMonths.
	MaxMonths int `json:"maxMonths,omitempty"`
}

func (o Options) maxMonths() int {
	if o.MaxMonths > 0 {
		return o.MaxMonths
	}
	return constants.MaxSimulationMonths
}

// Shortfall describes the month the budget could not fund.
type Shortfall struct {
	Month     datetime.Month  `json:"month"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
}

// Deficit is the amount missing from the budget.
func (s Shortfall) Deficit() decimal.Decimal {
	return s.Required.Sub(s.Available)
}

// Result is the outcome of a simulation.
type Result struct {
	Strategy        Strategy        `json:"strategy"`
	Budget          decimal.Decimal `json:"budget"`
	Status          Status          `json:"status"`
	StartMonth      datetime.Month  `json:"startMonth"`
	EndMonth        datetime.Month  `json:"endMonth"`
	MonthsSimulated int             `json:"monthsSimulated"`
	Ledger          Ledger          `json:"ledger"`
	Summaries       []LoanSummary   `json:"summaries"`
	Totals          Totals          `json:"totals"`
	Warnings        []Warning       `json:"warnings,omitempty"`
	Shortfall       *Shortfall      `json:"shortfall,omitempty"`
}

// PaidOff reports whether the run cleared every loan.
func (r *Result) PaidOff() bool {
	return r.Status == StatusPaidOff
}

// workingLoan is the simulation's private copy of a loan.
type workingLoan struct {
	Loan
	startMonth datetime.Month
	// payingFrom is the first month the loan joins the minimum pass.
	payingFrom datetime.Month
	activated  bool
	opening    float64
}

func (w *workingLoan) inPlay(month datetime.Month) bool {
	return w.activated && !month.Before(w.payingFrom) && w.Principal > 0
}

// Simulator runs payoff simulations. It holds no state between runs and is
// safe for concurrent use.
type Simulator struct {
	logger *zap.Logger
}

// NewSimulator creates a simulator. A nil logger disables logging.
func NewSimulator(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{logger: logger}
}

// Run validates the input and simulates month by month until every loan is
// paid off, a month's minimums exceed the budget, or the month cap is reached.
// The caller's loans are never modified.
func (s *Simulator) Run(input []Loan, opts Options) (*Result, error) {
	if err := Validate(input, opts); err != nil {
		return nil, err
	}

	result := &Result{
		Strategy: opts.Strategy,
		Budget:   mathutil.Cents(opts.Budget),
		Ledger:   Ledger{},
		Warnings: DetectWarnings(input, opts.Budget),
	}
	for _, w := range result.Warnings {
		s.logger.Debug(w.Message, zap.String("op", "payoff.Run"))
	}

	if len(input) == 0 {
		result.Status = StatusPaidOff
		result.StartMonth = opts.StartMonth
		return result, nil
	}

	work := make([]*workingLoan, len(input))
	for i, loan := range input {
		start := loan.StartDate.MonthOf()
		work[i] = &workingLoan{
			Loan:       loan.clone(),
			startMonth: start,
			payingFrom: start.Next(),
			opening:    loan.Principal,
		}
	}

	first := opts.StartMonth
	if first.IsZero() {
		first = work[0].startMonth
		for _, w := range work[1:] {
			if w.startMonth.Before(first) {
				first = w.startMonth
			}
		}
	}

	opening := 0.0
	for _, w := range work {
		if w.startMonth.Before(first) {
			w.activated = true
			w.payingFrom = first
			opening += w.Principal
		}
	}

	cmp := opts.Strategy.comparator()
	sorted := func(month datetime.Month) []*workingLoan {
		var inPlay []*workingLoan
		for _, w := range work {
			if w.inPlay(month) {
				inPlay = append(inPlay, w)
			}
		}
		slices.SortStableFunc(inPlay, cmp)
		return inPlay
	}

	var entries []entry
	month := first
	result.StartMonth = first
	limit := opts.maxMonths()

	for {
		if !anyOpen(work) {
			result.Status = StatusPaidOff
			break
		}
		if result.MonthsSimulated >= limit {
			result.Status = StatusIterationLimit
			s.logger.Warn(fmt.Sprintf("loans still open after %d simulated months", limit),
				zap.String("op", "payoff.Run"),
			)
			break
		}

		budget := opts.Budget
		var pending []entry
		var activating []*workingLoan
		for _, w := range work {
			if !w.activated && w.startMonth == month {
				activating = append(activating, w)
				pending = append(pending, entry{
					month:      month,
					day:        w.StartDate.Day,
					kind:       KindActivation,
					loanID:     w.ID,
					loanName:   w.Name,
					principal:  -w.Principal,
					balance:    w.Principal,
					budgetLeft: budget,
				})
			}
		}

		inPlay := sorted(month)
		type portion struct{ principal, interest float64 }
		portions := make([]portion, len(inPlay))
		totalMinimum := 0.0
		for i, w := range inPlay {
			p, in := MinimumPortions(w.Loan)
			portions[i] = portion{p, in}
			totalMinimum += p + in
		}

		if totalMinimum-budget > constants.BalanceEpsilon {
			result.Status = StatusInsufficientBudget
			result.Shortfall = &Shortfall{
				Month:     month,
				Required:  mathutil.Cents(totalMinimum),
				Available: mathutil.Cents(budget),
			}
			s.logger.Debug(fmt.Sprintf("budget %.2f cannot cover minimums %.2f in %s", budget, totalMinimum, month),
				zap.String("op", "payoff.Run"),
			)
			break
		}

		for _, w := range activating {
			w.activated = true
			s.logger.Debug(fmt.Sprintf("activated %s in %s", w.label(), month),
				zap.String("op", "payoff.Run"),
			)
		}

		for i, w := range inPlay {
			part := portions[i]
			w.Principal -= part.principal
			budget -= part.principal + part.interest
			pending = append(pending, entry{
				month:      month,
				day:        w.StartDate.Day,
				kind:       KindMinimum,
				loanID:     w.ID,
				loanName:   w.Name,
				principal:  part.principal,
				interest:   part.interest,
				balance:    w.Principal,
				budgetLeft: mathutil.ClampNonNegative(budget),
			})
		}

		if mathutil.Round(budget) > 0 {
			if target := firstOpen(sorted(month)); target != nil {
				amount := math.Min(budget, target.Principal)
				target.Principal -= amount
				budget -= amount
				pending = append(pending, entry{
					month:      month,
					day:        target.StartDate.Day,
					kind:       KindSurplus,
					loanID:     target.ID,
					loanName:   target.Name,
					principal:  amount,
					balance:    target.Principal,
					budgetLeft: mathutil.ClampNonNegative(budget),
				})
				s.logger.Debug(fmt.Sprintf("applied surplus %.2f to %s in %s", amount, target.label(), month),
					zap.String("op", "payoff.Run"),
				)
			}
		}

		entries = append(entries, pending...)
		result.EndMonth = month
		result.MonthsSimulated++
		month = month.Next()
	}

	result.Ledger = assemble(entries, opening)
	result.Summaries = summarize(input, result.Ledger, work)
	result.Totals = totalsOf(result.Ledger)

	s.logger.Debug(fmt.Sprintf("simulation finished with status %s after %d months", result.Status, result.MonthsSimulated),
		zap.String("op", "payoff.Run"),
		zap.String("strategy", opts.Strategy.String()),
	)
	return result, nil
}

// Simulate runs a simulation without logging.
func Simulate(input []Loan, opts Options) (*Result, error) {
	return NewSimulator(nil).Run(input, opts)
}

func anyOpen(work []*workingLoan) bool {
	for _, w := range work {
		if w.Principal > 0 {
			return true
		}
	}
	return false
}

func firstOpen(loans []*workingLoan) *workingLoan {
	for _, w := range loans {
		if w.Principal > 0 {
			return w
		}
	}
	return nil
}
