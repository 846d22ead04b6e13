package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/cache"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
	"github.com/hxuan190/omniswap-engine/internal/providers"
)

const enrichQueueSize = 256

// enrichTask asks the dispatcher to resolve one token against the routing
// API. done is optional; when set it receives the result exactly once.
type enrichTask struct {
	chainID domain.ChainID
	address string
	done    chan *domain.NormalizedToken
}

// Enricher resolves router-compatible token records in the background.
// One dispatcher goroutine drains the queue; results land in a TTL cache
// keyed by (chain, address) so repeat requests are free. When a pair index
// is supplied, records missing liquidity are supplemented from it.
type Enricher struct {
	lookup    providers.TokenLookup
	liquidity providers.PairSearcher
	results   *cache.TTLCache
	ttl       time.Duration

	tasks chan enrichTask
	stop  chan struct{}
}

func NewEnricher(lookup providers.TokenLookup, liquidity providers.PairSearcher, results *cache.TTLCache, ttl time.Duration) *Enricher {
	return &Enricher{
		lookup:    lookup,
		liquidity: liquidity,
		results:   results,
		ttl:       ttl,
		tasks:     make(chan enrichTask, enrichQueueSize),
		stop:      make(chan struct{}),
	}
}

func (e *Enricher) Start() error {
	go e.dispatch()
	return nil
}

func (e *Enricher) Stop() error {
	close(e.stop)
	return nil
}

func enrichKey(chainID domain.ChainID, address string) string {
	return fmt.Sprintf("enrich:%s:%s", chainID, address)
}

// Cached returns the enrichment result when one is already available.
func (e *Enricher) Cached(chainID domain.ChainID, address string) (*domain.NormalizedToken, bool) {
	v, ok := e.results.Get(enrichKey(chainID, address))
	if !ok {
		return nil, false
	}
	tok, ok := v.(*domain.NormalizedToken)
	return tok, ok
}

// EnrichAsync queues a lookup without waiting. A full queue drops the task:
// enrichment is best-effort and must never block a response path.
func (e *Enricher) EnrichAsync(chainID domain.ChainID, address string) {
	if _, ok := e.Cached(chainID, address); ok {
		return
	}
	select {
	case e.tasks <- enrichTask{chainID: chainID, address: address}:
	default:
		metrics.EnrichmentTasks.WithLabelValues("dropped").Inc()
	}
}

// EnrichOnDemand races the lookup against the deadline. When the deadline
// wins, nil is returned and the task keeps running so the cache is warm
// for the next caller.
func (e *Enricher) EnrichOnDemand(ctx context.Context, chainID domain.ChainID, address string, deadline time.Duration) *domain.NormalizedToken {
	if tok, ok := e.Cached(chainID, address); ok {
		return tok
	}

	done := make(chan *domain.NormalizedToken, 1)
	select {
	case e.tasks <- enrichTask{chainID: chainID, address: address, done: done}:
	default:
		metrics.EnrichmentTasks.WithLabelValues("dropped").Inc()
		return nil
	}

	timer := time.NewTimer(deadline)
	defer timer.Stop()
	select {
	case tok := <-done:
		return tok
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (e *Enricher) dispatch() {
	for {
		select {
		case <-e.stop:
			return
		case task := <-e.tasks:
			e.run(task)
		}
	}
}

func (e *Enricher) run(task enrichTask) {
	// Another task may have filled the cache while this one sat queued.
	if tok, ok := e.Cached(task.chainID, task.address); ok {
		e.deliver(task, tok)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tok, err := e.lookup.LookupToken(ctx, task.chainID, task.address)
	if err != nil {
		metrics.EnrichmentTasks.WithLabelValues("error").Inc()
		log.Debug().Err(err).
			Str("chain", string(task.chainID)).
			Str("address", task.address).
			Msg("[enricher] lookup failed")
		e.deliver(task, nil)
		return
	}

	if tok.Liquidity == 0 && e.liquidity != nil {
		tok.Liquidity = e.indexedLiquidity(ctx, task.chainID, task.address)
	}

	metrics.EnrichmentTasks.WithLabelValues("ok").Inc()
	e.results.Set(enrichKey(task.chainID, task.address), tok, e.ttl)
	e.deliver(task, tok)
}

// indexedLiquidity sums the token's pool liquidity reported by the pair
// index. Best-effort: lookup failures count as zero.
func (e *Enricher) indexedLiquidity(ctx context.Context, chainID domain.ChainID, address string) float64 {
	pairs, err := e.liquidity.SearchPairs(ctx, address, chainID, nil)
	if err != nil {
		log.Debug().Err(err).
			Str("chain", string(chainID)).
			Str("address", address).
			Msg("[enricher] liquidity lookup failed")
		return 0
	}
	total := 0.0
	for _, p := range pairs {
		total += p.LiquidityUSD
	}
	return total
}

func (e *Enricher) deliver(task enrichTask, tok *domain.NormalizedToken) {
	if task.done == nil {
		return
	}
	select {
	case task.done <- tok:
	default:
	}
}
