// Package cache provides the process-wide TTL cache and the rate-limit
// aware API-key rotation pool. Both are safe for concurrent use.
package cache

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/hxuan190/omniswap-engine/internal/metrics"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a thread-safe map with per-entry absolute expiry and a
// background sweep evicting expired entries.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewTTLCache creates a cache and starts its sweep goroutine.
func NewTTLCache(sweepInterval time.Duration) *TTLCache {
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Second
	}
	c := &TTLCache{
		entries:       make(map[string]entry),
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the value for key, or false when absent or expired. An
// expired entry is treated as absent even before the sweeper removed it.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return e.value, true
}

// Set stores value under key with the given TTL.
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key if present.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// GetJSON unmarshals a cached JSON value into out.
func (c *TTLCache) GetJSON(key string, out any) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	return sonic.Unmarshal(raw, out) == nil
}

// SetJSON marshals value to JSON before storing it.
func (c *TTLCache) SetJSON(key string, value any, ttl time.Duration) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(key, raw, ttl)
	return nil
}

// Size returns the number of entries, expired ones included until swept.
func (c *TTLCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop terminates the sweep goroutine. Idempotent.
func (c *TTLCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTLCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
