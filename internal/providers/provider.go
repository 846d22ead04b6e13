// Package providers wraps each external token/liquidity source behind a
// uniform fetch/normalize interface. Adapter failures never propagate:
// every adapter degrades to an empty result and logs locally.
package providers

import (
	"context"

	"github.com/hxuan190/omniswap-engine/internal/domain"
)

// Query describes one token fetch across the registry.
type Query struct {
	// ChainIDs restricts the fetch; empty means all configured chains.
	ChainIDs []domain.ChainID
	// Text is the optional free-text search term.
	Text string
	// Limit caps the result count a single adapter should return.
	Limit int
}

// Provider is the capability interface every source implements. Adapters
// normalize internally; raw provider shapes never leak past this boundary.
type Provider interface {
	Name() string
	FetchTokens(ctx context.Context, q Query) ([]domain.NormalizedToken, error)
}

// ChainLister is implemented by sources that can enumerate their supported
// chains, used to extend the built-in chain registry at startup.
type ChainLister interface {
	FetchChains(ctx context.Context) ([]domain.Chain, error)
}

// PairSearcher is implemented by the text-based pair index used both for
// token search and as the pair-discovery fallback.
type PairSearcher interface {
	SearchPairs(ctx context.Context, text string, chainID domain.ChainID, allowDexes []string) ([]domain.IndexedPair, error)
}

// TokenLookup resolves a single token to its router-compatible identifier,
// used by enrichment.
type TokenLookup interface {
	LookupToken(ctx context.Context, chainID domain.ChainID, address string) (*domain.NormalizedToken, error)
}

// Registry is the name-keyed provider registry built once at startup.
type Registry struct {
	byName map[string]Provider
	order  []string
}

func NewRegistry(provs ...Provider) *Registry {
	r := &Registry{byName: make(map[string]Provider, len(provs))}
	for _, p := range provs {
		r.byName[p.Name()] = p
		r.order = append(r.order, p.Name())
	}
	return r
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// All returns providers in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
