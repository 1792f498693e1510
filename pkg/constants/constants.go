// Package constants provides shared constants for the debt-payoff application.
package constants

import "time"

// Date layouts used in configuration files and output.
const (
	// MonthLayout identifies a calendar month, e.g. "2024-01".
	MonthLayout = "2006-01"

	// DateLayout identifies a calendar day, e.g. "2024-01-15".
	DateLayout = "2006-01-02"
)

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimal places written to the ledger
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// BalanceEpsilon absorbs float error when comparing a budget to the sum of
	// minimum payments.
	BalanceEpsilon = 1e-9
)

// Simulation limits
const (
	// MaxSimulationMonths caps the number of simulated months (100 years).
	MaxSimulationMonths = 1200
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. DEBT_PAYOFF_BUDGET.
	EnvPrefix = "DEBT_PAYOFF"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Repository drivers
const (
	// RepositoryDriverConfig reads loans from the configuration file.
	RepositoryDriverConfig = "config"

	// RepositoryDriverPostgres reads loans from a postgres table.
	RepositoryDriverPostgres = "postgres"
)

// Cache defaults
const (
	// DefaultCacheTTL is how long cached results are kept.
	DefaultCacheTTL = 24 * time.Hour
)

// Event defaults
const (
	// DefaultEventsTopic is the topic simulation events are published to.
	DefaultEventsTopic = "debt-payoff.simulation-completed"
)
