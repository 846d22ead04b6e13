package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/domain"
)

const DexScreenerProviderName = "dexscreener"

// minQueryPrefix is the shortest prefix progressive narrowing will try.
const minQueryPrefix = 2

// DexScreenerProvider adapts the public pair-index search API. It serves
// two roles: a token source for text search, and the fallback pair index
// when on-chain discovery finds nothing.
type DexScreenerProvider struct {
	baseURL string
	http    *httpClient
	chains  *domain.ChainRegistry
}

func NewDexScreenerProvider(baseURL string, timeout time.Duration, chains *domain.ChainRegistry) *DexScreenerProvider {
	return &DexScreenerProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(DexScreenerProviderName, timeout),
		chains:  chains,
	}
}

func (p *DexScreenerProvider) Name() string {
	return DexScreenerProviderName
}

type dsToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type dsPair struct {
	ChainID     string  `json:"chainId"`
	DexID       string  `json:"dexId"`
	PairAddress string  `json:"pairAddress"`
	BaseToken   dsToken `json:"baseToken"`
	QuoteToken  dsToken `json:"quoteToken"`
	PriceUSD    string  `json:"priceUsd"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Info struct {
		ImageURL string `json:"imageUrl"`
	} `json:"info"`
}

type dsSearchResponse struct {
	Pairs []dsPair `json:"pairs"`
}

// FetchTokens maps indexed pairs onto tokens for free-text search. Without
// a search term this source has nothing to contribute.
func (p *DexScreenerProvider) FetchTokens(ctx context.Context, q Query) ([]domain.NormalizedToken, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil
	}

	wanted := make(map[domain.ChainID]struct{}, len(q.ChainIDs))
	for _, cid := range q.ChainIDs {
		wanted[cid] = struct{}{}
	}

	pairs, err := p.searchNarrowed(ctx, q.Text, func(found []dsPair) []dsPair {
		kept := found[:0:0]
		for _, pr := range found {
			canonical, ok := p.canonicalChain(pr.ChainID)
			if !ok {
				continue
			}
			if len(wanted) > 0 {
				if _, ok := wanted[canonical]; !ok {
					continue
				}
			}
			kept = append(kept, pr)
		}
		return kept
	})
	if err != nil {
		log.Warn().Err(err).Msg("[dexscreener] token search failed, degrading to empty")
		return nil, err
	}

	seen := make(map[domain.TokenKey]struct{})
	out := make([]domain.NormalizedToken, 0, len(pairs))
	for i := range pairs {
		canonical, ok := p.canonicalChain(pairs[i].ChainID)
		if !ok {
			continue
		}
		tok := p.pairToToken(&pairs[i], canonical)
		if tok == nil {
			continue
		}
		key := tok.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, *tok)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// SearchPairs is the pair-discovery fallback: text search over the index
// with progressive query narrowing, deduplicated by pool address and
// sorted by indexed liquidity descending.
func (p *DexScreenerProvider) SearchPairs(ctx context.Context, text string, chainID domain.ChainID, allowDexes []string) ([]domain.IndexedPair, error) {
	chain, ok := p.chains.Get(chainID)
	if !ok {
		return nil, fmt.Errorf("unknown chain %s", chainID)
	}
	providerChain := chain.ProviderID(DexScreenerProviderName)

	allowed := make(map[string]struct{}, len(allowDexes))
	for _, d := range allowDexes {
		allowed[strings.ToLower(d)] = struct{}{}
	}

	pairs, err := p.searchNarrowed(ctx, text, func(found []dsPair) []dsPair {
		return p.filterPairs(found, providerChain, allowed)
	})
	if err != nil {
		return nil, err
	}

	// Dedupe by pool address, keeping the entry with higher liquidity.
	best := make(map[string]*dsPair, len(pairs))
	for i := range pairs {
		key := strings.ToLower(pairs[i].PairAddress)
		if prev, ok := best[key]; !ok || pairs[i].Liquidity.USD > prev.Liquidity.USD {
			best[key] = &pairs[i]
		}
	}

	out := make([]domain.IndexedPair, 0, len(best))
	for _, pr := range best {
		out = append(out, domain.IndexedPair{
			ChainID:      chainID,
			DexID:        pr.DexID,
			PairAddress:  pr.PairAddress,
			BaseToken:    pr.BaseToken.Address,
			BaseSymbol:   pr.BaseToken.Symbol,
			QuoteToken:   pr.QuoteToken.Address,
			QuoteSymbol:  pr.QuoteToken.Symbol,
			LiquidityUSD: pr.Liquidity.USD,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LiquidityUSD > out[j].LiquidityUSD
	})
	return out, nil
}

// searchNarrowed runs the index search with progressive query narrowing:
// the full term first, then shorter prefixes until the filtered result is
// non-empty or the prefix would drop below the minimum length.
func (p *DexScreenerProvider) searchNarrowed(ctx context.Context, text string, filter func([]dsPair) []dsPair) ([]dsPair, error) {
	term := strings.TrimSpace(text)
	for len(term) >= minQueryPrefix {
		found, err := p.search(ctx, term)
		if err != nil {
			return nil, err
		}
		if kept := filter(found); len(kept) > 0 {
			return kept, nil
		}
		term = term[:len(term)-1]
	}
	return nil, nil
}

func (p *DexScreenerProvider) search(ctx context.Context, term string) ([]dsPair, error) {
	u := fmt.Sprintf("%s/latest/dex/search?q=%s", p.baseURL, url.QueryEscape(term))
	var resp dsSearchResponse
	if err := p.http.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Pairs, nil
}

func (p *DexScreenerProvider) filterPairs(pairs []dsPair, providerChain string, allowed map[string]struct{}) []dsPair {
	out := pairs[:0:0]
	for _, pr := range pairs {
		if !strings.EqualFold(pr.ChainID, providerChain) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToLower(pr.DexID)]; !ok {
				continue
			}
		}
		out = append(out, pr)
	}
	return out
}

func (p *DexScreenerProvider) pairToToken(pr *dsPair, chainID domain.ChainID) *domain.NormalizedToken {
	if pr.BaseToken.Address == "" || pr.BaseToken.Symbol == "" {
		return nil
	}
	price := parseFloatLoose(pr.PriceUSD)
	return &domain.NormalizedToken{
		ChainID:   chainID,
		Address:   pr.BaseToken.Address,
		Symbol:    pr.BaseToken.Symbol,
		Name:      pr.BaseToken.Name,
		LogoURI:   pr.Info.ImageURL,
		PriceUSD:  price,
		Liquidity: pr.Liquidity.USD,
		Volume24h: pr.Volume.H24,
		Providers: []string{DexScreenerProviderName},
	}
}

func (p *DexScreenerProvider) canonicalChain(providerChainID string) (domain.ChainID, bool) {
	for _, c := range p.chains.All() {
		if strings.EqualFold(c.ProviderID(DexScreenerProviderName), providerChainID) {
			return c.ID, true
		}
	}
	return "", false
}

func parseFloatLoose(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
