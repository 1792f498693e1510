package payoff

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StrategyOutcome is one row of a strategy comparison.
type StrategyOutcome struct {
	Strategy        Strategy        `json:"strategy"`
	Status          Status          `json:"status"`
	MonthsSimulated int             `json:"monthsSimulated"`
	InterestPaid    decimal.Decimal `json:"interestPaid"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	// InterestOverBest and MonthsOverBest are relative to Comparison.Best.
	InterestOverBest decimal.Decimal `json:"interestOverBest"`
	MonthsOverBest   int             `json:"monthsOverBest"`
	Result           *Result         `json:"-"`
}

// Comparison holds one outcome per requested strategy, in request order.
type Comparison struct {
	Outcomes []StrategyOutcome `json:"outcomes"`
	// Best is the paid-off strategy with the least interest, then the fewest
	// months. It is nil when no strategy pays everything off.
	Best *Strategy `json:"best,omitempty"`
}

// Outcome returns the outcome for a strategy.
func (c *Comparison) Outcome(s Strategy) (StrategyOutcome, bool) {
	for _, o := range c.Outcomes {
		if o.Strategy == s {
			return o, true
		}
	}
	return StrategyOutcome{}, false
}

// CompareStrategies runs one simulation per strategy concurrently. opts.Strategy
// is ignored. An empty strategy list compares every strategy.
func (s *Simulator) CompareStrategies(ctx context.Context, input []Loan, opts Options, strategies ...Strategy) (*Comparison, error) {
	if len(strategies) == 0 {
		strategies = Strategies()
	}

	results := make([]*Result, len(strategies))
	g, ctx := errgroup.WithContext(ctx)
	for i, strategy := range strategies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			run := opts
			run.Strategy = strategy
			result, err := s.Run(input, run)
			if err != nil {
				return fmt.Errorf("strategy %s: %w", strategy, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	comparison := &Comparison{Outcomes: make([]StrategyOutcome, len(strategies))}
	bestIndex := -1
	for i, result := range results {
		comparison.Outcomes[i] = StrategyOutcome{
			Strategy:        result.Strategy,
			Status:          result.Status,
			MonthsSimulated: result.MonthsSimulated,
			InterestPaid:    result.Totals.InterestPaid,
			TotalPaid:       result.Totals.TotalPaid,
			Result:          result,
		}
		if result.Status != StatusPaidOff {
			continue
		}
		if bestIndex < 0 || better(result, results[bestIndex]) {
			bestIndex = i
		}
	}

	if bestIndex >= 0 {
		best := results[bestIndex]
		comparison.Best = &best.Strategy
		for i := range comparison.Outcomes {
			o := &comparison.Outcomes[i]
			o.InterestOverBest = o.InterestPaid.Sub(best.Totals.InterestPaid)
			o.MonthsOverBest = o.MonthsSimulated - best.MonthsSimulated
		}
	}

	s.logger.Debug(fmt.Sprintf("compared %d strategies", len(strategies)),
		zap.String("op", "payoff.CompareStrategies"),
	)
	return comparison, nil
}

func better(a, b *Result) bool {
	if c := a.Totals.InterestPaid.Cmp(b.Totals.InterestPaid); c != 0 {
		return c < 0
	}
	return a.MonthsSimulated < b.MonthsSimulated
}
