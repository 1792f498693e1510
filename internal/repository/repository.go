// Package repository supplies the loan portfolio to the payoff engine. Loans
// are read-only here; editing them is the job of whatever owns the source.
package repository

import (
	"context"
	"fmt"

	"github.com/iwvelando/debt-payoff/internal/config"
	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/constants"
	"go.uber.org/zap"
)

// LoanRepository loads the loan set for a simulation.
type LoanRepository interface {
	LoadLoans(ctx context.Context) ([]payoff.Loan, error)
	Close() error
}

// StaticRepository serves a fixed loan set, usually the one in the
// configuration file.
type StaticRepository struct {
	loans []payoff.Loan
}

// NewStaticRepository copies loans into a new repository.
func NewStaticRepository(loans []payoff.Loan) *StaticRepository {
	return &StaticRepository{loans: copyLoans(loans)}
}

// LoadLoans returns a copy of the stored loans.
func (r *StaticRepository) LoadLoans(ctx context.Context) ([]payoff.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return copyLoans(r.loans), nil
}

// Close is a no-op.
func (r *StaticRepository) Close() error {
	return nil
}

// New opens the repository selected by conf.Repository.Driver.
func New(conf *config.Configuration, logger *zap.Logger) (LoanRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch conf.Repository.Driver {
	case "", constants.RepositoryDriverConfig:
		loans, err := conf.ToLoans()
		if err != nil {
			return nil, fmt.Errorf("failed to read loans from configuration: %w", err)
		}
		logger.Debug(fmt.Sprintf("loaded %d loans from configuration", len(loans)),
			zap.String("op", "repository.New"),
		)
		return NewStaticRepository(loans), nil
	case constants.RepositoryDriverPostgres:
		return OpenPostgres(conf.Repository.Postgres, logger)
	}
	return nil, fmt.Errorf("unknown repository driver %q", conf.Repository.Driver)
}

func copyLoans(loans []payoff.Loan) []payoff.Loan {
	if loans == nil {
		return nil
	}
	out := make([]payoff.Loan, len(loans))
	for i, loan := range loans {
		out[i] = loan
		if loan.Priority != nil {
			p := *loan.Priority
			out[i].Priority = &p
		}
	}
	return out
}
