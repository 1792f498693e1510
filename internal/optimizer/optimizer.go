// Package optimizer searches for the smallest monthly budget that retires a
// loan portfolio within a deadline.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/format"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultMaxIterations = 64

// Config bounds a budget search. Zero bounds are derived from the loans.
type Config struct {
	// TargetMonths is the most simulated months allowed, counting the
	// first simulated month.
	TargetMonths  int     `json:"targetMonths"`
	MinBudget     float64 `json:"minBudget,omitempty"`
	MaxBudget     float64 `json:"maxBudget,omitempty"`
	MaxIterations int     `json:"maxIterations,omitempty"`
}

// Summary captures the result of a budget search.
type Summary struct {
	Strategy        payoff.Strategy `json:"strategy"`
	TargetMonths    int             `json:"targetMonths"`
	Original        decimal.Decimal `json:"original"`
	Value           decimal.Decimal `json:"value"`
	MonthsSimulated int             `json:"monthsSimulated"`
	InterestPaid    decimal.Decimal `json:"interestPaid"`
	Iterations      int             `json:"iterations"`
	Converged       bool            `json:"converged"`
	Notes           []string        `json:"notes,omitempty"`
}

// ErrInvalidTarget is returned for a non-positive TargetMonths.
var ErrInvalidTarget = errors.New("target months must be positive")

type Runner struct {
	logger    *zap.Logger
	simulator *payoff.Simulator
}

type evaluation struct {
	cents  int64
	result *payoff.Result
}

func (e evaluation) feasible(target int) bool {
	return e.result.Status == payoff.StatusPaidOff && e.result.MonthsSimulated <= target
}

// NewRunner constructs a Runner that simulates with simulator.
func NewRunner(logger *zap.Logger, simulator *payoff.Simulator) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if simulator == nil {
		simulator = payoff.NewSimulator(logger)
	}
	return &Runner{logger: logger, simulator: simulator}
}

// MinimumBudget bisects over whole cents for the smallest budget whose
// simulation pays off every loan within cfg.TargetMonths. opts.Budget is
// reported as the original value and otherwise ignored.
func (r *Runner) MinimumBudget(ctx context.Context, loans []payoff.Loan, opts payoff.Options, cfg Config) (*Summary, error) {
	if cfg.TargetMonths <= 0 {
		return nil, ErrInvalidTarget
	}
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	lowerBound, upperBound := bounds(loans, cfg)
	summary := &Summary{
		Strategy:     opts.Strategy,
		TargetMonths: cfg.TargetMonths,
		Original:     mathutil.Cents(opts.Budget),
	}

	upper, err := r.evaluate(loans, opts, upperBound)
	if err != nil {
		return nil, err
	}
	if !upper.feasible(cfg.TargetMonths) {
		summary.apply(upper)
		summary.Notes = []string{fmt.Sprintf("unable to pay off within %d months with budgets from %s to %s",
			cfg.TargetMonths, format.Currency(centsToDecimal(lowerBound)), format.Currency(centsToDecimal(upperBound)))}
		return summary, nil
	}

	lower, err := r.evaluate(loans, opts, lowerBound)
	if err != nil {
		return nil, err
	}
	if lower.feasible(cfg.TargetMonths) {
		summary.apply(lower)
		summary.Converged = true
		return summary, nil
	}

	best := upper
	lo, hi := lower.cents, upper.cents
	for summary.Iterations < maxIterations && hi-lo > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mid, err := r.evaluate(loans, opts, lo+(hi-lo)/2)
		if err != nil {
			return nil, err
		}
		summary.Iterations++
		if mid.feasible(cfg.TargetMonths) {
			best = mid
			hi = mid.cents
		} else {
			lo = mid.cents
		}
	}

	summary.apply(best)
	summary.Converged = hi-lo <= 1
	if !summary.Converged {
		summary.Notes = []string{fmt.Sprintf("stopped after %d iterations; budget is within %s of the minimum",
			summary.Iterations, format.Currency(centsToDecimal(hi-lo)))}
	}

	r.logger.Debug(fmt.Sprintf("minimum budget %s for %d months after %d iterations", summary.Value, cfg.TargetMonths, summary.Iterations),
		zap.String("op", "optimizer.MinimumBudget"),
	)
	return summary, nil
}

func (s *Summary) apply(e evaluation) {
	s.Value = centsToDecimal(e.cents)
	s.MonthsSimulated = e.result.MonthsSimulated
	s.InterestPaid = e.result.Totals.InterestPaid
}

func (r *Runner) evaluate(loans []payoff.Loan, opts payoff.Options, cents int64) (evaluation, error) {
	opts.Budget = float64(cents) / 100
	result, err := r.simulator.Run(loans, opts)
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{cents: cents, result: result}, nil
}

// bounds returns the search range in cents. The default upper bound is every
// principal plus every minimum. Only one loan takes surplus each month, so
// even that budget needs a paying month per loan and can miss a short target.
func bounds(loans []payoff.Loan, cfg Config) (lower, upper int64) {
	var minimums, principal float64
	for _, loan := range loans {
		minimums += loan.MinimumPayment
		principal += loan.Principal
	}

	lower = 1
	if cfg.MinBudget > 0 {
		lower = toCents(cfg.MinBudget)
	}
	upper = toCents(principal + minimums)
	if cfg.MaxBudget > 0 {
		upper = toCents(cfg.MaxBudget)
	}
	lower = max(lower, 1)
	upper = max(upper, lower)
	return lower, upper
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
