package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/debt-payoff/pkg/constants"
)

// ValidateRepositoryDriver checks that the loan source is one the application
// knows how to open. An empty driver selects the configuration file.
func ValidateRepositoryDriver(driver string) error {
	switch driver {
	case "", constants.RepositoryDriverConfig, constants.RepositoryDriverPostgres:
		return nil
	}
	return fmt.Errorf("expected repository driver of %s or %s, got %s",
		constants.RepositoryDriverConfig, constants.RepositoryDriverPostgres, driver)
}

// ValidateLogLevel checks a logging level name.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s", level)
}

// ValidateBrokers rejects blank broker addresses, which kafka would otherwise
// only report when the first message is written.
func ValidateBrokers(brokers []string) error {
	for i, broker := range brokers {
		if strings.TrimSpace(broker) == "" {
			return fmt.Errorf("events broker %d is empty", i)
		}
	}
	return nil
}
