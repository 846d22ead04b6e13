// Package aggregator merges token data from every configured provider into
// one ranked, deduplicated view.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/omniswap-engine/internal/cache"
	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/config"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
	"github.com/hxuan190/omniswap-engine/internal/providers"
)

const AGGREGATOR_SERVICE = "aggregator-service"

type Service struct {
	container.BaseDIInstance
	logger *common.ServiceLogger

	config   *config.AggregatorConfig
	chains   *domain.ChainRegistry
	registry *providers.Registry

	tokenCache *cache.TTLCache
	enricher   *Enricher
}

func (svc *Service) ID() string {
	return AGGREGATOR_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = common.NewServiceLogger(svc)
	svc.config = c.GetConfig(config.AGGREGATOR_CONFIG_KEY).(*config.AggregatorConfig)
	provCfg := c.GetConfig(config.PROVIDERS_CONFIG_KEY).(*config.ProvidersConfig)

	svc.chains = domain.NewChainRegistry(domain.DefaultChains())
	timeout := time.Duration(provCfg.HTTPTimeoutMs) * time.Millisecond

	lifi := providers.NewLiFiProvider(provCfg.LiFiBaseURL, timeout, svc.chains)
	dexscreener := providers.NewDexScreenerProvider(provCfg.DexScreenerBaseURL, timeout, svc.chains)

	provs := []providers.Provider{lifi, dexscreener}
	if len(provCfg.DeBankAPIKeys) > 0 {
		pool := cache.NewKeyPool(provCfg.DeBankAPIKeys,
			provCfg.KeyRetryAttempts,
			time.Duration(provCfg.KeyRetryDelayMs)*time.Millisecond)
		provs = append(provs, providers.NewDeBankProvider(provCfg.DeBankBaseURL, timeout, svc.chains, pool))
	} else {
		log.Warn().Msg("[aggregatorService] no debank credentials configured, portfolio source disabled")
	}
	svc.registry = providers.NewRegistry(provs...)

	svc.tokenCache = cache.NewTTLCache(30 * time.Second)
	svc.enricher = NewEnricher(lifi, dexscreener, svc.tokenCache,
		time.Duration(svc.config.EnrichCacheTTLMs)*time.Millisecond)
	return nil
}

func (svc *Service) Start() error {
	return svc.enricher.Start()
}

func (svc *Service) Stop() error {
	if err := svc.enricher.Stop(); err != nil {
		log.Error().Err(err).Msg("[aggregatorService] failed to stop enricher")
	}
	svc.tokenCache.Stop()
	return nil
}

func (svc *Service) Chains() *domain.ChainRegistry {
	return svc.chains
}

func (svc *Service) Providers() *providers.Registry {
	return svc.registry
}

// SearchTokens runs a free-text token search across every provider. Results
// are merged, ranked exact-first and trimmed to limit. Empty chainIDs means
// all configured chains, with balanced per-chain mixing applied.
func (svc *Service) SearchTokens(ctx context.Context, text string, chainIDs []domain.ChainID, limit int) ([]domain.NormalizedToken, error) {
	return svc.aggregate(ctx, "search", text, chainIDs, limit)
}

// GetTokensByChain lists tokens for a single chain ranked by liquidity.
func (svc *Service) GetTokensByChain(ctx context.Context, chainID domain.ChainID, limit int) ([]domain.NormalizedToken, error) {
	if _, ok := svc.chains.Get(chainID); !ok {
		return nil, &common.UnsupportedChainError{ChainID: string(chainID)}
	}
	return svc.aggregate(ctx, "chain", "", []domain.ChainID{chainID}, limit)
}

func (svc *Service) aggregate(ctx context.Context, kind, text string, chainIDs []domain.ChainID, limit int) ([]domain.NormalizedToken, error) {
	start := time.Now()
	if limit <= 0 {
		limit = svc.config.DefaultLimit
	}

	allNetworks := len(chainIDs) == 0
	if allNetworks {
		for _, c := range svc.chains.All() {
			chainIDs = append(chainIDs, c.ID)
		}
	}

	cacheKey := aggregateCacheKey(kind, text, chainIDs, limit)
	if v, ok := svc.tokenCache.Get(cacheKey); ok {
		metrics.SearchRequests.WithLabelValues(kind, "cached").Inc()
		return v.([]domain.NormalizedToken), nil
	}

	tokens, err := svc.fanOut(ctx, text, chainIDs, limit)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(kind, "error").Inc()
		return nil, err
	}

	ranked := svc.rank(tokens, text)
	if allNetworks {
		ranked = mixBalanced(ranked, limit,
			svc.config.PerChainCap, svc.config.PriorityCap,
			domain.ChainID(svc.config.PriorityChain))
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	raceDeadline := time.Duration(svc.config.EnrichRaceDeadlineMs) * time.Millisecond
	for i := range ranked {
		if ranked[i].RouterToken != "" || domain.FamilyOf(ranked[i].ChainID) != domain.FamilyEVM {
			continue
		}
		// The top search hit is supplemented synchronously within a short
		// deadline; everything else enriches in the background. A lost race
		// still leaves the task running to warm the cache.
		if i == 0 && kind == "search" && raceDeadline > 0 {
			if tok := svc.enricher.EnrichOnDemand(ctx, ranked[i].ChainID, ranked[i].Address, raceDeadline); tok != nil {
				ranked[i].Merge(tok)
			}
			continue
		}
		svc.enricher.EnrichAsync(ranked[i].ChainID, ranked[i].Address)
	}

	svc.tokenCache.Set(cacheKey, ranked, time.Duration(svc.config.TokenCacheTTLMs)*time.Millisecond)
	metrics.SearchRequests.WithLabelValues(kind, "ok").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.TokensReturned.Observe(float64(len(ranked)))
	return ranked, nil
}

// fanOut queries every provider concurrently and waits for all of them.
// Individual failures degrade to empty contributions; the call fails only
// when every provider failed.
func (svc *Service) fanOut(ctx context.Context, text string, chainIDs []domain.ChainID, limit int) ([]domain.NormalizedToken, error) {
	provs := svc.registry.All()
	q := providers.Query{ChainIDs: chainIDs, Text: text, Limit: limit}

	type result struct {
		name   string
		tokens []domain.NormalizedToken
		err    error
	}
	results := make([]result, len(provs))

	var wg sync.WaitGroup
	for i, p := range provs {
		wg.Add(1)
		go func(i int, p providers.Provider) {
			defer wg.Done()
			tokens, err := p.FetchTokens(ctx, q)
			results[i] = result{name: p.Name(), tokens: tokens, err: err}
		}(i, p)
	}
	wg.Wait()

	merged := make(map[domain.TokenKey]*domain.NormalizedToken)
	var order []domain.TokenKey
	failures := 0
	for _, r := range results {
		if r.err != nil {
			failures++
			log.Debug().Err(r.err).Str("provider", r.name).Msg("[aggregatorService] provider fetch failed")
			continue
		}
		for i := range r.tokens {
			key := r.tokens[i].Key()
			if existing, ok := merged[key]; ok {
				existing.Merge(&r.tokens[i])
				continue
			}
			t := r.tokens[i]
			merged[key] = &t
			order = append(order, key)
		}
	}

	if failures == len(provs) && len(provs) > 0 {
		return nil, fmt.Errorf("%w: all %d token sources failed", common.ErrProviderUnavailable, failures)
	}

	out := make([]domain.NormalizedToken, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}
	return out, nil
}

// rank orders tokens exact-match first, then by similarity, then liquidity.
// Non-exact matches below the similarity threshold are dropped entirely.
func (svc *Service) rank(tokens []domain.NormalizedToken, text string) []domain.NormalizedToken {
	hasQuery := strings.TrimSpace(text) != ""

	type scored struct {
		token domain.NormalizedToken
		score matchScore
	}
	kept := make([]scored, 0, len(tokens))
	for i := range tokens {
		s := scoreToken(&tokens[i], text)
		if hasQuery && !s.exact && s.similarity < svc.config.SimilarityThreshold {
			continue
		}
		kept = append(kept, scored{token: tokens[i], score: s})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.score.exact != b.score.exact {
			return a.score.exact
		}
		if a.score.similarity != b.score.similarity {
			return a.score.similarity > b.score.similarity
		}
		return a.token.Liquidity > b.token.Liquidity
	})

	out := make([]domain.NormalizedToken, 0, len(kept))
	for _, s := range kept {
		out = append(out, s.token)
	}
	return out
}

func aggregateCacheKey(kind, text string, chainIDs []domain.ChainID, limit int) string {
	ids := make([]string, 0, len(chainIDs))
	for _, cid := range chainIDs {
		ids = append(ids, string(cid))
	}
	sort.Strings(ids)
	return fmt.Sprintf("agg:%s:%s:%s:%d", kind, strings.ToLower(text), strings.Join(ids, ","), limit)
}
