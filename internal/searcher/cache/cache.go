// Package cache shares search results between searcher replicas through
// Redis. Keys include the index generation, so a reload makes every older
// entry unreachable without an explicit flush.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/resilience"
)

const keyPrefix = "search:"

// Backend is the key-value store behind the cache. *redis.Client
// implements it.
type Backend interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits            int64  `json:"hits"`
	Misses          int64  `json:"misses"`
	Errors          int64  `json:"errors"`
	Breaker         string `json:"breaker"`
	BreakerFailures int    `json:"breaker_failures"`
}

type QueryCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
	errors  atomic.Int64
}

// Option customizes a QueryCache.
type Option func(*resilience.CircuitBreakerConfig)

// WithBreakerHook reports circuit breaker transitions, typically to a
// metrics gauge.
func WithBreakerHook(fn func(name string, from, to resilience.State)) Option {
	return func(c *resilience.CircuitBreakerConfig) {
		c.OnStateChange = fn
	}
}

func New(backend Backend, cfg config.RedisConfig, opts ...Option) *QueryCache {
	cbCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cbCfg)
	}
	return &QueryCache{
		backend: backend,
		ttl:     cfg.CacheTTL,
		breaker: resilience.NewCircuitBreaker("query-cache", cbCfg),
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan, limit int, generation uint64) (*executor.SearchResult, bool) {
	key := buildKey(plan, limit, generation)
	var data string
	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		data, found, err = c.backend.Lookup(ctx, key)
		return err
	})
	if err != nil {
		c.recordError("get", key, err)
		c.misses.Add(1)
		return nil, false
	}
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", plan.RawQuery, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, limit int, result *executor.SearchResult) {
	key := buildKey(plan, limit, result.Generation)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.backend.Set(ctx, key, data, c.ttl)
	})
	if err != nil {
		c.recordError("set", key, err)
	}
}

// GetOrCompute returns the cached result for plan at generation, or runs
// computeFn once per key no matter how many callers ask concurrently. The
// boolean reports a cache hit. Results computed against a different
// generation are returned but not stored.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	limit int,
	generation uint64,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, plan, limit, generation); ok {
		return result, true, nil
	}
	key := buildKey(plan, limit, generation)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		if result.Generation == generation {
			c.Set(ctx, plan, limit, result)
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate deletes every cached search result.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() Stats {
	counts := c.breaker.Counts()
	return Stats{
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		Errors:          c.errors.Load(),
		Breaker:         counts.State.String(),
		BreakerFailures: counts.ConsecutiveFailures,
	}
}

func (c *QueryCache) recordError(op, key string, err error) {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return
	}
	c.errors.Add(1)
	c.logger.Error("cache "+op+" failed", "key", key, "error", err)
}

func buildKey(plan *parser.QueryPlan, limit int, generation uint64) string {
	raw := fmt.Sprintf("g=%d|%s|limit=%d", generation, plan.Key(), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
