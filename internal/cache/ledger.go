package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/debt-payoff/internal/payoff"
	"go.uber.org/zap"
)

const keyPrefix = "debt-payoff:result:"

// LedgerCache memoizes simulation results in a Store. Store failures are
// logged and the simulation runs uncached.
type LedgerCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewLedgerCache creates a cache over store. A ttl of zero keeps entries
// until the store evicts them.
func NewLedgerCache(store Store, ttl time.Duration, logger *zap.Logger) *LedgerCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerCache{store: store, ttl: ttl, logger: logger}
}

// Key derives the cache key for a simulation input. Equal inputs, including
// loan order, give equal keys.
func Key(loans []payoff.Loan, opts payoff.Options) (string, error) {
	data, err := json.Marshal(struct {
		Loans   []payoff.Loan  `json:"loans"`
		Options payoff.Options `json:"options"`
	}{loans, opts})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	return fmt.Sprintf("%s%016x", keyPrefix, xxhash.Sum64(data)), nil
}

// Simulate returns the cached result for the input, or runs the simulator
// and caches what it returns. hit reports whether the cache answered.
// Validation errors are never cached.
func (c *LedgerCache) Simulate(ctx context.Context, sim *payoff.Simulator, loans []payoff.Loan, opts payoff.Options) (result *payoff.Result, hit bool, err error) {
	if err := payoff.Validate(loans, opts); err != nil {
		return nil, false, err
	}
	key, err := Key(loans, opts)
	if err != nil {
		return nil, false, err
	}

	cached, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("cache lookup failed",
			zap.String("op", "cache.Simulate"),
			zap.Error(err),
		)
	case ok:
		var stored payoff.Result
		if err := json.Unmarshal([]byte(cached), &stored); err == nil {
			c.logger.Debug("cache hit", zap.String("op", "cache.Simulate"), zap.String("key", key))
			return &stored, true, nil
		}
		c.logger.Warn("discarding undecodable cache entry",
			zap.String("op", "cache.Simulate"),
			zap.String("key", key),
		)
	}

	result, err = sim.Run(loans, opts)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode result: %w", err)
	}
	if err := c.store.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Warn("cache store failed",
			zap.String("op", "cache.Simulate"),
			zap.Error(err),
		)
	}
	return result, false, nil
}

// Close closes the underlying store.
func (c *LedgerCache) Close() error {
	return c.store.Close()
}
