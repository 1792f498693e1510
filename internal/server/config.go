package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/debt-payoff/internal/config"
	"github.com/iwvelando/debt-payoff/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config is the payoff API server's own settings file. Loan portfolios are
// never read from it; clients post those with each request.
type Config struct {
	Address       string               `yaml:"address"`
	MaxUploadSize string               `yaml:"maxUploadSize"`
	Logging       config.LoggingConfig `yaml:"logging"`
	// Cache enables redis memoization of simulations when Address is set.
	Cache config.CacheConfig `yaml:"cache"`
	// Events enables kafka notifications when Brokers is non-empty.
	Events config.EventsConfig `yaml:"events"`

	uploadLimit int64
}

// LoadConfig reads the server settings at path. A blank path or a missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes is the request body limit handed to NewHandler.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadLimit
}

func (c *Config) applyDefaults() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.Cache.Address != "" && c.Cache.TTL <= 0 {
		c.Cache.TTL = constants.DefaultCacheTTL
	}

	limit, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadLimit = limit
	c.MaxUploadSize = strconv.FormatInt(limit, 10)
	return nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize reads an upload limit such as "512", "256K" or "10MB". Units are
// binary and case-insensitive. A blank value is the default limit.
func ParseSize(value string) (int64, error) {
	text := strings.ToUpper(strings.TrimSpace(value))
	if text == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	digits := strings.TrimRight(text, "BKMG ")
	unit := strings.TrimSpace(text[len(digits):])
	digits = strings.TrimSpace(digits)
	if digits == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
