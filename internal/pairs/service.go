// Package pairs discovers and proves DEX pools for a token: factory lookup
// plus router simulation on-chain, with a text-search index as fallback.
package pairs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/omniswap-engine/internal/aggregator"
	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/config"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/evm"
	"github.com/hxuan190/omniswap-engine/internal/providers"
)

const PAIR_SERVICE = "pair-service"

// stableIntermediaries are the per-chain quote tokens tried alongside the
// wrapped native when discovering pools for a token.
var stableIntermediaries = map[domain.ChainID][]string{
	"1":     {"0xdac17f958d2ee523a2206206994597c13d831ec7", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}, // USDT, USDC
	"56":    {"0x55d398326f99059ff775485246999027b3197955", "0xe9e7cea3dedca5984780bafc599bd69add087d56"}, // USDT, BUSD
	"137":   {"0xc2132d05d31c914a87c6611c10748aeb04b58e8f", "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"}, // USDT, USDC.e
	"42161": {"0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9", "0xaf88d065e77c8cc2239327c5edb3a432268e5831"}, // USDT, USDC
	"8453":  {"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"},                                               // USDC
}

// Service coordinates pair verification: warm store first, on-chain proof
// second, indexer fallback last.
type Service struct {
	container.BaseDIInstance
	logger *common.ServiceLogger

	config      *config.AggregatorConfig
	chains      *domain.ChainRegistry
	dexes       *DEXRegistry
	verifier    *Verifier
	store       *Store
	fallback    providers.PairSearcher
	reverifyAge time.Duration
}

func (svc *Service) ID() string {
	return PAIR_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = common.NewServiceLogger(svc)
	svc.config = c.GetConfig(config.AGGREGATOR_CONFIG_KEY).(*config.AggregatorConfig)

	aggSvc := c.Instance(aggregator.AGGREGATOR_SERVICE).(*aggregator.Service)
	evmSvc := c.Instance(evm.EVM_CLIENT_SERVICE).(*evm.Service)

	svc.chains = aggSvc.Chains()
	svc.dexes = NewDEXRegistry(DefaultDEXes())
	svc.verifier = NewVerifier(func(chainID domain.ChainID) (evm.Caller, error) {
		return evmSvc.Registry().Client(chainID)
	})

	if p, ok := aggSvc.Providers().Get(providers.DexScreenerProviderName); ok {
		if searcher, ok := p.(providers.PairSearcher); ok {
			svc.fallback = searcher
		}
	}

	store, err := NewStore(svc.config.PairStorePath)
	if err != nil {
		return err
	}
	svc.store = store
	svc.reverifyAge = time.Duration(svc.config.PairReverifyAgeMs) * time.Millisecond
	return nil
}

// fresh reports whether a stored verification is still recent enough to
// stand in for the on-chain proof.
func (svc *Service) fresh(pair *domain.VerifiedPair) bool {
	if svc.reverifyAge <= 0 {
		return true
	}
	return !pair.VerifiedAt.IsZero() && time.Since(pair.VerifiedAt) < svc.reverifyAge
}

func (svc *Service) Start() error {
	pairs, err := svc.store.LoadAll()
	if err != nil {
		log.Warn().Err(err).Msg("[pairService] warm store load failed, starting cold")
		return nil
	}
	log.Info().Int("count", len(pairs)).Msg("[pairService] warm store loaded")
	return nil
}

func (svc *Service) Stop() error {
	return svc.store.Close()
}

// DiscoverPairsForToken finds tradable pools for one token: every
// (intermediary, exchange) combination is proven on-chain concurrently.
// When nothing verifies, the indexer fallback answers with unproven pools.
func (svc *Service) DiscoverPairsForToken(ctx context.Context, chainID domain.ChainID, token, symbol string) ([]*domain.VerifiedPair, []domain.IndexedPair, error) {
	chain, ok := svc.chains.Get(chainID)
	if !ok {
		return nil, nil, &common.UnsupportedChainError{ChainID: string(chainID)}
	}
	if chain.Family != domain.FamilyEVM {
		// No factory contracts to query; the indexer is the only source.
		indexed, err := svc.queryFallback(ctx, symbol, chainID)
		return nil, indexed, err
	}
	if common.IsNativeToken(token) {
		token = chain.WrappedNative
	}

	intermediaries := svc.intermediariesFor(chain, token)
	dexes := svc.dexes.ForChain(chainID)
	if len(dexes) == 0 {
		return nil, nil, fmt.Errorf("no exchanges registered for chain %s", chainID)
	}

	// Warm store hits skip the on-chain round trips entirely.
	verified := make([]*domain.VerifiedPair, 0, len(intermediaries)*len(dexes))
	jobs := make([]verifyJob, 0, len(intermediaries)*len(dexes))
	for _, dex := range dexes {
		for _, mid := range intermediaries {
			if cached, err := svc.store.Get(chainID, dex.ID, token, mid); err == nil && cached != nil && svc.fresh(cached) {
				verified = append(verified, cached)
				continue
			}
			jobs = append(jobs, verifyJob{dex: dex, tokenA: token, tokenB: mid})
		}
	}

	fresh := svc.verifier.VerifyBatch(ctx, jobs)
	for _, pair := range fresh {
		if err := svc.store.Save(pair); err != nil {
			log.Warn().Err(err).Str("pair", pair.PairAddress).Msg("[pairService] warm store save failed")
		}
	}
	verified = append(verified, fresh...)

	if len(verified) > 0 {
		return verified, nil, nil
	}

	indexed, err := svc.queryFallback(ctx, symbol, chainID)
	if err != nil {
		return nil, nil, err
	}
	return nil, indexed, nil
}

// VerifyPair proves one (tokenA, tokenB) pool on a named exchange. Returns
// common.ErrPairNotFound when the pool is absent or untradable; the warm
// store answers first and every fresh proof is persisted.
func (svc *Service) VerifyPair(ctx context.Context, chainID domain.ChainID, dexID, tokenA, tokenB string) (*domain.VerifiedPair, error) {
	chain, ok := svc.chains.Get(chainID)
	if !ok {
		return nil, &common.UnsupportedChainError{ChainID: string(chainID)}
	}
	if chain.Family != domain.FamilyEVM {
		return nil, &common.UnsupportedChainError{ChainID: string(chainID)}
	}
	dex, ok := svc.dexes.Get(chainID, dexID)
	if !ok {
		return nil, fmt.Errorf("unknown exchange %q on chain %s", dexID, chainID)
	}
	if common.IsNativeToken(tokenA) {
		tokenA = chain.WrappedNative
	}
	if common.IsNativeToken(tokenB) {
		tokenB = chain.WrappedNative
	}

	if cached, err := svc.store.Get(chainID, dexID, tokenA, tokenB); err == nil && cached != nil && svc.fresh(cached) {
		return cached, nil
	}

	pair, err := svc.verifier.Verify(ctx, dex, tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	if err := svc.store.Save(pair); err != nil {
		log.Warn().Err(err).Str("pair", pair.PairAddress).Msg("[pairService] warm store save failed")
	}
	return pair, nil
}

// QueryPairs searches the pair index by free text, constrained to the
// exchanges verification can also reach so results stay actionable.
func (svc *Service) QueryPairs(ctx context.Context, text string, chainID domain.ChainID) ([]domain.IndexedPair, error) {
	if _, ok := svc.chains.Get(chainID); !ok {
		return nil, &common.UnsupportedChainError{ChainID: string(chainID)}
	}
	return svc.queryFallback(ctx, text, chainID)
}

func (svc *Service) queryFallback(ctx context.Context, text string, chainID domain.ChainID) ([]domain.IndexedPair, error) {
	if svc.fallback == nil {
		return nil, common.ErrProviderUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return svc.fallback.SearchPairs(ctx, text, chainID, svc.dexes.IDsForChain(chainID))
}

// intermediariesFor returns the candidate counterparty tokens, excluding
// the token itself when it happens to be one of them.
func (svc *Service) intermediariesFor(chain *domain.Chain, token string) []string {
	candidates := make([]string, 0, 3)
	if chain.WrappedNative != "" {
		candidates = append(candidates, chain.WrappedNative)
	}
	candidates = append(candidates, stableIntermediaries[chain.ID]...)

	out := candidates[:0]
	for _, c := range candidates {
		if !strings.EqualFold(c, token) {
			out = append(out, c)
		}
	}
	return out
}
