package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/debt-payoff/internal/cache"
	"github.com/iwvelando/debt-payoff/internal/config"
	"github.com/iwvelando/debt-payoff/internal/events"
	"github.com/iwvelando/debt-payoff/internal/logging"
	"github.com/iwvelando/debt-payoff/internal/optimizer"
	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/internal/repository"
	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/iwvelando/debt-payoff/pkg/output"
	"github.com/iwvelando/debt-payoff/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	strategyFlag := flag.String("strategy", "", "payoff strategy override (none, snowball, avalanche, priority, smart, lowest-priority)")
	budgetFlag := flag.Float64("budget", 0, "monthly budget override")
	compare := flag.Bool("compare", false, "compare every strategy instead of running one")
	targetMonths := flag.Int("target-months", 0, "report the smallest budget that pays everything off within this many months")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI overrides take precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if *strategyFlag != "" {
		conf.Strategy = *strategyFlag
	}
	if *budgetFlag > 0 {
		conf.Budget = *budgetFlag
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	opts, err := conf.Options()
	if err != nil {
		logger.Fatal("invalid run options",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	repo, err := repository.New(conf, logger)
	if err != nil {
		logger.Fatal("failed to open loan repository",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = repo.Close()
	}()

	loans, err := repo.LoadLoans(ctx)
	if err != nil {
		logger.Fatal("failed to load loans",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	simulator := payoff.NewSimulator(logger)

	if *compare {
		comparison, err := simulator.CompareStrategies(ctx, loans, opts)
		if err != nil {
			logger.Fatal("failed to compare strategies",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if err := output.RenderComparison(os.Stdout, outputFormat, comparison); err != nil {
			logger.Fatal("failed to write output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	if *targetMonths > 0 {
		summary, err := optimizer.NewRunner(logger, simulator).MinimumBudget(ctx, loans, opts, optimizer.Config{TargetMonths: *targetMonths})
		if err != nil {
			logger.Fatal("failed to search for a minimum budget",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if err := output.RenderBudgetSearch(os.Stdout, outputFormat, summary); err != nil {
			logger.Fatal("failed to write output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	result, cached, err := simulate(ctx, conf, simulator, loans, opts, logger)
	if err != nil {
		logger.Fatal("failed to simulate payoff",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range result.Warnings {
		logger.Warn(warning.Message,
			zap.String("op", "main"),
			zap.String("code", string(warning.Code)),
		)
	}

	publisher := events.New(conf.Events, logger)
	defer func() {
		_ = publisher.Close()
	}()
	if err := publisher.Publish(ctx, events.NewSimulationCompleted(result, len(loans), cached, time.Now())); err != nil {
		logger.Warn("failed to publish simulation event",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Render(os.Stdout, outputFormat, result); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// simulate runs through the redis ledger cache when one is configured.
func simulate(ctx context.Context, conf *config.Configuration, simulator *payoff.Simulator, loans []payoff.Loan, opts payoff.Options, logger *zap.Logger) (*payoff.Result, bool, error) {
	if conf.Cache.Address == "" {
		result, err := simulator.Run(loans, opts)
		return result, false, err
	}

	ledgerCache := cache.NewLedgerCache(cache.NewRedisStore(conf.Cache), conf.Cache.TTL, logger)
	defer func() {
		_ = ledgerCache.Close()
	}()
	return ledgerCache.Simulate(ctx, simulator, loans, opts)
}
