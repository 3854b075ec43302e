package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultL1TTL = time.Minute

// MultiLevelCache reads from an in-process L1 before an optional redis L2.
// Calls to L2 pass through a circuit breaker so an unreachable redis costs
// one fast rejection per call instead of a dial timeout.
//
// A delete that fails on L2 is kept as pending and replayed before the next
// L2 call. Until the replay succeeds, L2 is neither read nor written, so a
// stale L2 entry cannot be copied back into L1.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	l1TTL   time.Duration
	breaker *CircuitBreaker
	metrics *CacheMetrics

	mu              sync.Mutex
	seq             uint64
	pendingKeys     map[string]uint64
	pendingPatterns map[string]uint64
}

type MultiLevelOption func(*MultiLevelCache)

// WithL1TTL caps how long an entry lives in L1.
func WithL1TTL(ttl time.Duration) MultiLevelOption {
	return func(c *MultiLevelCache) {
		if ttl > 0 {
			c.l1TTL = ttl
		}
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) MultiLevelOption {
	return func(c *MultiLevelCache) {
		if cb != nil {
			c.breaker = cb
		}
	}
}

// NewMultiLevelCache builds the cache. redisCache may be nil, in which case
// only L1 is used.
func NewMultiLevelCache(redisCache *RedisCache, opts ...MultiLevelOption) *MultiLevelCache {
	c := &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      redisCache,
		l1TTL:   defaultL1TTL,
		breaker: NewCircuitBreaker(nil),
		metrics: NewCacheMetrics(),

		pendingKeys:     make(map[string]uint64),
		pendingPatterns: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MultiLevelCache) Metrics() *CacheMetrics {
	return c.metrics
}

func (c *MultiLevelCache) localTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > c.l1TTL {
		return c.l1TTL
	}
	return ttl
}

func (c *MultiLevelCache) remote(ctx context.Context, fn func() error) error {
	err := c.breaker.Execute(func() error {
		if err := c.replayPending(ctx); err != nil {
			return err
		}
		return fn()
	})
	if err == nil {
		return nil
	}
	c.metrics.RecordError()
	if errors.Is(err, ErrCircuitBreakerOpen) {
		return ErrCacheDown
	}
	return err
}

func (c *MultiLevelCache) addPending(pending map[string]uint64, entries ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range entries {
		c.seq++
		pending[entry] = c.seq
	}
}

func copyPending(pending map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(pending))
	for k, v := range pending {
		out[k] = v
	}
	return out
}

// clearPending drops replayed entries unless they were re-added meanwhile.
func clearPending(pending, replayed map[string]uint64) {
	for k, v := range replayed {
		if pending[k] == v {
			delete(pending, k)
		}
	}
}

// PendingInvalidations reports how many L2 deletes are waiting for replay.
func (c *MultiLevelCache) PendingInvalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pendingKeys) + len(c.pendingPatterns)
}

func (c *MultiLevelCache) replayPending(ctx context.Context) error {
	c.mu.Lock()
	keys := copyPending(c.pendingKeys)
	patterns := copyPending(c.pendingPatterns)
	c.mu.Unlock()

	if len(keys) == 0 && len(patterns) == 0 {
		return nil
	}

	if len(keys) > 0 {
		names := make([]string, 0, len(keys))
		for k := range keys {
			names = append(names, k)
		}
		if err := c.l2.Delete(ctx, names...); err != nil {
			return fmt.Errorf("failed to replay pending deletes: %w", err)
		}
		c.mu.Lock()
		clearPending(c.pendingKeys, keys)
		c.mu.Unlock()
	}

	for pattern := range patterns {
		if err := c.l2.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to replay pending delete of %s: %w", pattern, err)
		}
		c.mu.Lock()
		clearPending(c.pendingPatterns, map[string]uint64{pattern: patterns[pattern]})
		c.mu.Unlock()
	}
	return nil
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, c.localTTL(ttl)); err != nil {
		c.metrics.RecordError()
		return err
	}
	c.metrics.RecordSet()

	if c.l2 == nil {
		return nil
	}
	return c.remote(ctx, func() error {
		return c.l2.Set(ctx, key, value, ttl)
	})
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordL1Hit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	missed := false
	err := c.remote(ctx, func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			missed = true
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if missed {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordL2Hit()
	if err := c.l1.Set(ctx, key, dest, c.l1TTL); err != nil {
		c.metrics.RecordError()
	}
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	_ = c.l1.Delete(ctx, keys...)
	c.metrics.RecordDelete()

	if c.l2 == nil {
		return nil
	}
	err := c.remote(ctx, func() error {
		return c.l2.Delete(ctx, keys...)
	})
	if err != nil {
		c.addPending(c.pendingKeys, keys...)
	}
	return err
}

func (c *MultiLevelCache) DeletePattern(ctx context.Context, pattern string) error {
	_ = c.l1.DeletePattern(ctx, pattern)
	c.metrics.RecordDelete()

	if c.l2 == nil {
		return nil
	}
	err := c.remote(ctx, func() error {
		return c.l2.DeletePattern(ctx, pattern)
	})
	if err != nil {
		c.addPending(c.pendingPatterns, pattern)
	}
	return err
}

// Health reports L2 reachability directly, bypassing the breaker.
func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	if err := c.l2.Health(ctx); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	snapshot := c.metrics.Snapshot()
	stats := map[string]interface{}{
		"l1":              c.l1.Stats(),
		"hits":            snapshot.Hits,
		"l1_hits":         snapshot.L1Hits,
		"l2_hits":         snapshot.L2Hits,
		"misses":          snapshot.Misses,
		"errors":          snapshot.Errors,
		"sets":            snapshot.Sets,
		"deletes":         snapshot.Deletes,
		"hit_rate":        c.metrics.HitRate(),
		"circuit_breaker": c.breaker.GetStats(),
		"pending":         c.PendingInvalidations(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

// RunJanitor purges expired L1 entries every interval until ctx is done.
func (c *MultiLevelCache) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.l1TTL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.l1.Purge()
		}
	}
}

func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
