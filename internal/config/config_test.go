package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/debt-payoff/internal/payoff"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test configuration",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
		{
			name:       "Example configuration",
			configPath: "../../config.yaml.example",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Budget != 1500 {
		t.Errorf("Expected Budget = 1500, got %v", config.Budget)
	}
	if config.Strategy != "avalanche" {
		t.Errorf("Expected Strategy = avalanche, got %v", config.Strategy)
	}
	if len(config.Loans) != 4 {
		t.Fatalf("Expected 4 loans, got %d", len(config.Loans))
	}

	card := config.Loans[0]
	if card.Name != "credit card" || card.InterestRate != 22.9 || card.MinimumPayment != 120 {
		t.Errorf("Unexpected first loan %+v", card)
	}
	if card.StartDate != "2024-01-05" {
		t.Errorf("Expected unquoted start date to decode as 2024-01-05, got %q", card.StartDate)
	}
	if card.Priority != nil {
		t.Errorf("Expected no priority on the first loan, got %d", *card.Priority)
	}
	if p := config.Loans[3].Priority; p == nil || *p != 1 {
		t.Errorf("Expected furniture priority 1, got %v", p)
	}

	if config.Logging.Level != "warn" {
		t.Errorf("Expected logging level warn, got %s", config.Logging.Level)
	}
	if config.Repository.Driver != "config" {
		t.Errorf("Expected default repository driver config, got %s", config.Repository.Driver)
	}
	if config.Cache.TTL != 24*time.Hour {
		t.Errorf("Expected default cache TTL 24h, got %v", config.Cache.TTL)
	}
	if config.Events.Topic == "" {
		t.Error("Expected a default events topic")
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("DEBT_PAYOFF_BUDGET", "2750.50")
	t.Setenv("DEBT_PAYOFF_OUTPUT_FORMAT", "json")
	t.Setenv("DEBT_PAYOFF_EVENTS_BROKERS", "kafka-1:9092,kafka-2:9092")

	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Budget != 2750.50 {
		t.Errorf("Expected Budget = 2750.50, got %v", config.Budget)
	}
	if config.Output.Format != "json" {
		t.Errorf("Expected output format json, got %s", config.Output.Format)
	}
	if len(config.Events.Brokers) != 2 || config.Events.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Expected two brokers, got %v", config.Events.Brokers)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yaml := `
budget: 800
strategy: 4s
startMonth: "2024-03"
loans:
  - name: phone
    principal: 600
    interestRate: 0
    minimumPayment: 50
    startDate: "2024-02-10"
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	opts, err := config.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if opts.Strategy != payoff.StrategySnowball {
		t.Errorf("Options().Strategy = %v, expected snowball", opts.Strategy)
	}
	if opts.StartMonth.String() != "2024-03" {
		t.Errorf("Options().StartMonth = %s, expected 2024-03", opts.StartMonth)
	}
	if opts.Budget != 800 {
		t.Errorf("Options().Budget = %v, expected 800", opts.Budget)
	}
}

func TestLoadConfigurationFromReaderIgnoresEnvironment(t *testing.T) {
	t.Setenv("DEBT_PAYOFF_BUDGET", "50")
	t.Setenv("DEBT_PAYOFF_STRATEGY", "none")

	config, err := LoadConfigurationFromReader(strings.NewReader("budget: 800\nstrategy: avalanche\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Budget != 800 {
		t.Errorf("Budget = %v, expected 800", config.Budget)
	}
	if config.Strategy != "avalanche" {
		t.Errorf("Strategy = %s, expected avalanche", config.Strategy)
	}
}

func TestOptionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Configuration
	}{
		{"Unknown strategy", Configuration{Budget: 100, Strategy: "random"}},
		{"Bad start month", Configuration{Budget: 100, Strategy: "smart", StartMonth: "March"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.config.Options(); err == nil {
				t.Error("Options() expected error but got none")
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name             string
		config           Configuration
		expectedWarnings int
	}{
		{
			name: "Clean configuration",
			config: Configuration{
				Budget:   1000,
				Strategy: "smart",
				Loans:    []Loan{{Name: "card", StartDate: "2024-01-01"}},
				Output:   OutputConfig{Format: "csv"},
			},
			expectedWarnings: 0,
		},
		{
			name: "Postgres driver without loans",
			config: Configuration{
				Budget:     1000,
				Strategy:   "smart",
				Repository: RepositoryConfig{Driver: "postgres"},
			},
			expectedWarnings: 0,
		},
		{
			name:             "Nothing configured",
			config:           Configuration{},
			expectedWarnings: 3, // budget, strategy, loans
		},
		{
			name: "Bad values everywhere",
			config: Configuration{
				Budget:     1000,
				Strategy:   "avalanche",
				StartMonth: "soon",
				Repository: RepositoryConfig{Driver: "sqlite"},
				Output:     OutputConfig{Format: "xml"},
				Logging:    LoggingConfig{Level: "loud"},
				Events:     EventsConfig{Brokers: []string{""}},
				Loans: []Loan{
					{Name: "card", StartDate: "2024-01-01"},
					{Name: "card", StartDate: "someday"},
				},
			},
			expectedWarnings: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.config.ValidateConfiguration()
			if len(warnings) != tt.expectedWarnings {
				t.Errorf("ValidateConfiguration() returned %d warnings, expected %d: %v",
					len(warnings), tt.expectedWarnings, warnings)
			}
		})
	}
}

func TestLoadConfigurationInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("budget: [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadConfiguration(path); err == nil {
		t.Error("LoadConfiguration() expected error for invalid YAML")
	}
}
