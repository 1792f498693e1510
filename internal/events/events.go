// Package events announces finished simulations to other services.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/debt-payoff/internal/config"
	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TypeSimulationCompleted is the type header of SimulationCompleted messages.
const TypeSimulationCompleted = "SimulationCompleted"

// SimulationCompleted summarizes one simulation run.
type SimulationCompleted struct {
	RunID           uuid.UUID         `json:"runId"`
	OccurredAt      time.Time         `json:"occurredAt"`
	Strategy        payoff.Strategy   `json:"strategy"`
	Status          payoff.Status     `json:"status"`
	Budget          decimal.Decimal   `json:"budget"`
	LoanCount       int               `json:"loanCount"`
	StartMonth      datetime.Month    `json:"startMonth"`
	EndMonth        datetime.Month    `json:"endMonth"`
	MonthsSimulated int               `json:"monthsSimulated"`
	InterestPaid    decimal.Decimal   `json:"interestPaid"`
	TotalPaid       decimal.Decimal   `json:"totalPaid"`
	Warnings        int               `json:"warnings"`
	Shortfall       *payoff.Shortfall `json:"shortfall,omitempty"`
	Cached          bool              `json:"cached"`
}

// NewSimulationCompleted builds the event for result with a fresh run id.
func NewSimulationCompleted(result *payoff.Result, loanCount int, cached bool, now time.Time) SimulationCompleted {
	return SimulationCompleted{
		RunID:           uuid.New(),
		OccurredAt:      now.UTC(),
		Strategy:        result.Strategy,
		Status:          result.Status,
		Budget:          result.Budget,
		LoanCount:       loanCount,
		StartMonth:      result.StartMonth,
		EndMonth:        result.EndMonth,
		MonthsSimulated: result.MonthsSimulated,
		InterestPaid:    result.Totals.InterestPaid,
		TotalPaid:       result.Totals.TotalPaid,
		Warnings:        len(result.Warnings),
		Shortfall:       result.Shortfall,
		Cached:          cached,
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event SimulationCompleted) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, SimulationCompleted) error { return nil }

func (NoopPublisher) Close() error { return nil }

// New returns a kafka publisher when brokers are configured, otherwise a
// NoopPublisher.
func New(cfg config.EventsConfig, logger *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg, logger)
}
