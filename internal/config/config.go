// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/iwvelando/debt-payoff/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for debt-payoff.
type Configuration struct {
	Budget     float64
	Strategy   string
	StartMonth string
	MaxMonths  int
	Loans      []Loan
	Repository RepositoryConfig `yaml:"repository,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	Events     EventsConfig     `yaml:"events,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// RepositoryConfig selects where loans are read from.
type RepositoryConfig struct {
	Driver   string         `yaml:"driver,omitempty"` // config, postgres
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// PostgresConfig locates the loans table. An empty DSN is assembled from the
// environment (and an optional .env file).
type PostgresConfig struct {
	DSN     string `yaml:"dsn,omitempty"`
	EnvFile string `yaml:"envFile,omitempty"`
	Table   string `yaml:"table,omitempty"`
}

// CacheConfig enables the redis ledger cache when Address is set.
type CacheConfig struct {
	Address  string        `yaml:"address,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// EventsConfig enables kafka publishing when Brokers is non-empty.
type EventsConfig struct {
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Any key can be overridden from the environment, e.g.
// DEBT_PAYOFF_BUDGET or DEBT_PAYOFF_OUTPUT_FORMAT.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper(true)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r. Documents
// read this way come from API clients, so the environment is not consulted.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper(false)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	if withEnv {
		v.SetEnvPrefix(constants.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	v.SetDefault("budget", 0)
	v.SetDefault("strategy", payoff.StrategySmart.String())
	v.SetDefault("startMonth", "")
	v.SetDefault("maxMonths", 0)
	v.SetDefault("repository.driver", constants.RepositoryDriverConfig)
	v.SetDefault("repository.postgres.table", "loans")
	v.SetDefault("repository.postgres.dsn", "")
	v.SetDefault("cache.address", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", constants.DefaultCacheTTL.String())
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", constants.DefaultEventsTopic)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		timeToStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// timeToStringHook turns YAML timestamps back into their date text so
// unquoted dates such as 2024-01-15 decode into string fields.
func timeToStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.String {
			return data, nil
		}
		if t, ok := data.(time.Time); ok {
			return t.Format(constants.DateLayout), nil
		}
		return data, nil
	}
}

// Options converts the run settings into simulation options.
func (c *Configuration) Options() (payoff.Options, error) {
	opts := payoff.Options{
		Budget:    c.Budget,
		MaxMonths: c.MaxMonths,
	}

	strategy, err := payoff.ParseStrategy(c.Strategy)
	if err != nil {
		return opts, err
	}
	opts.Strategy = strategy

	if c.StartMonth != "" {
		month, err := datetime.ParseMonth(c.StartMonth)
		if err != nil {
			return opts, fmt.Errorf("startMonth: %w", err)
		}
		opts.StartMonth = month
	}
	return opts, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Budget <= 0 {
		warnings = append(warnings, "budget is not set; simulations will be rejected")
	}
	if _, err := payoff.ParseStrategy(c.Strategy); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.StartMonth != "" {
		if _, err := datetime.ParseMonth(c.StartMonth); err != nil {
			warnings = append(warnings, fmt.Sprintf("startMonth: %v", err))
		}
	}
	if err := validation.ValidateRepositoryDriver(c.Repository.Driver); err != nil {
		warnings = append(warnings, err.Error())
	}
	driver := c.Repository.Driver
	if (driver == "" || driver == constants.RepositoryDriverConfig) && len(c.Loans) == 0 {
		warnings = append(warnings, "no loans configured")
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		warnings = append(warnings, err.Error())
	}
	if err := validation.ValidateBrokers(c.Events.Brokers); err != nil {
		warnings = append(warnings, err.Error())
	}

	seen := make(map[string]bool)
	for _, loan := range c.Loans {
		if seen[loan.Name] {
			warnings = append(warnings, fmt.Sprintf("loan name %q is used more than once", loan.Name))
		}
		seen[loan.Name] = true
		if _, err := datetime.ParseDate(loan.StartDate); err != nil {
			warnings = append(warnings, fmt.Sprintf("loan %s: %v", loan.Name, err))
		}
	}

	return warnings
}
