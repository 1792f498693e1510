package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/debt-payoff/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		expected  zapcore.Level
		expectErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARNING", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.expectErr != (err != nil) {
				t.Fatalf("ParseLevel(%q) error = %v, expectErr %v", tt.input, err, tt.expectErr)
			}
			if level != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		expectErr bool
		enabled   zapcore.Level
		disabled  zapcore.Level
	}{
		{"Defaults", config.LoggingConfig{}, "", false, zapcore.InfoLevel, zapcore.DebugLevel},
		{"Console warn", config.LoggingConfig{Level: "warn", Format: "console"}, "", false, zapcore.WarnLevel, zapcore.InfoLevel},
		{"Override wins", config.LoggingConfig{Level: "error"}, "debug", false, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"Bad level", config.LoggingConfig{Level: "loud"}, "", true, 0, 0},
		{"Bad format", config.LoggingConfig{Format: "xml"}, "", true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config, tt.override)
			if tt.expectErr {
				if err == nil {
					t.Error("New() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if logger.Core().Enabled(tt.disabled) {
				t.Errorf("level %v should be disabled", tt.disabled)
			}
		})
	}
}

func TestNewWithOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debt-payoff.log")
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q, expected the message", data)
	}
}
