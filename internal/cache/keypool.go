package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
)

// KeyPool rotates across a pool of quota-limited credentials. Rotation is
// an explicit bounded state machine: attempt counter, cursor, exhausted set.
type KeyPool struct {
	mu        sync.Mutex
	keys      []string
	exhausted map[int]struct{}
	cursor    int

	maxAttempts int
	retryDelay  time.Duration
}

// NewKeyPool builds a pool over the given credentials. maxAttempts bounds
// the rotate-and-retry loop of a single Execute call.
func NewKeyPool(keys []string, maxAttempts int, retryDelay time.Duration) *KeyPool {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &KeyPool{
		keys:        keys,
		exhausted:   make(map[int]struct{}),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Size returns the credential count.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// current returns the active credential index, skipping exhausted entries.
// Returns false when every credential is exhausted.
func (p *KeyPool) current() (int, bool) {
	for i := 0; i < len(p.keys); i++ {
		idx := (p.cursor + i) % len(p.keys)
		if _, dead := p.exhausted[idx]; !dead {
			p.cursor = idx
			return idx, true
		}
	}
	return 0, false
}

// markExhausted retires the credential at idx and advances the cursor.
func (p *KeyPool) markExhausted(idx int) {
	p.exhausted[idx] = struct{}{}
	p.cursor = (idx + 1) % len(p.keys)
	metrics.KeyRotations.Inc()
}

// Reset clears the exhausted set, e.g. after a quota window rolled over.
func (p *KeyPool) Reset() {
	p.mu.Lock()
	p.exhausted = make(map[int]struct{})
	p.mu.Unlock()
}

// Execute runs fn with the active credential. On common.ErrRateLimited the
// active credential is marked exhausted and the call retries with the next
// one, up to the bounded attempt count. When every credential is exhausted
// it fails with the terminal common.ErrAllKeysExhausted. Any other error
// from fn is returned as-is without rotation.
func (p *KeyPool) Execute(ctx context.Context, fn func(key string) error) error {
	if len(p.keys) == 0 {
		return common.ErrAllKeysExhausted
	}

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		p.mu.Lock()
		idx, ok := p.current()
		p.mu.Unlock()
		if !ok {
			metrics.KeyPoolExhaustions.Inc()
			return common.ErrAllKeysExhausted
		}

		err := fn(p.keys[idx])
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrRateLimited) {
			return err
		}
		lastErr = err

		log.Warn().Int("key_index", idx).Msg("[keyPool] credential rate limited, rotating")
		p.mu.Lock()
		p.markExhausted(idx)
		_, remaining := p.current()
		p.mu.Unlock()
		if !remaining {
			metrics.KeyPoolExhaustions.Inc()
			return common.ErrAllKeysExhausted
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}

	// Attempt budget ran out with live credentials remaining: surface the
	// rate limit rather than the terminal exhaustion error.
	return lastErr
}
