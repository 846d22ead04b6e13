package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/domain"
)

const LiFiProviderName = "lifi"

// LiFiProvider adapts the token/chain-list aggregation API. It is the
// primary per-chain token source and the enrichment token lookup.
type LiFiProvider struct {
	baseURL string
	http    *httpClient
	chains  *domain.ChainRegistry
}

func NewLiFiProvider(baseURL string, timeout time.Duration, chains *domain.ChainRegistry) *LiFiProvider {
	return &LiFiProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(LiFiProviderName, timeout),
		chains:  chains,
	}
}

func (p *LiFiProvider) Name() string {
	return LiFiProviderName
}

// lifiToken is the raw token shape as returned by the source. Owned by
// this adapter until normalization.
type lifiToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	ChainID  any    `json:"chainId"` // number for EVM, string for others
	PriceUSD string `json:"priceUSD"`
	LogoURI  string `json:"logoURI"`
}

type lifiTokensResponse struct {
	Tokens map[string][]lifiToken `json:"tokens"`
}

type lifiChain struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type lifiChainsResponse struct {
	Chains []lifiChain `json:"chains"`
}

// FetchTokens returns the token list for the queried chains. Failures
// degrade to an empty result.
func (p *LiFiProvider) FetchTokens(ctx context.Context, q Query) ([]domain.NormalizedToken, error) {
	ids := make([]string, 0, len(q.ChainIDs))
	for _, cid := range q.ChainIDs {
		chain, ok := p.chains.Get(cid)
		if !ok {
			continue
		}
		ids = append(ids, chain.ProviderID(LiFiProviderName))
	}
	if len(ids) == 0 {
		return nil, nil
	}

	u := fmt.Sprintf("%s/tokens?chains=%s", p.baseURL, url.QueryEscape(strings.Join(ids, ",")))
	var resp lifiTokensResponse
	if err := p.http.getJSON(ctx, u, nil, &resp); err != nil {
		log.Warn().Err(err).Msg("[lifi] token fetch failed, degrading to empty")
		return nil, err
	}

	out := make([]domain.NormalizedToken, 0, 256)
	for providerChainID, tokens := range resp.Tokens {
		canonical, ok := p.canonicalChain(providerChainID)
		if !ok {
			continue
		}
		for i := range tokens {
			if t := p.normalizeToken(&tokens[i], canonical); t != nil {
				out = append(out, *t)
				if q.Limit > 0 && len(out) >= q.Limit*4 {
					// Keep a healthy oversample for merge/rank; the
					// aggregator truncates to the final limit.
					return out, nil
				}
			}
		}
	}
	return out, nil
}

// LookupToken resolves one token to its router-compatible record.
func (p *LiFiProvider) LookupToken(ctx context.Context, chainID domain.ChainID, address string) (*domain.NormalizedToken, error) {
	chain, ok := p.chains.Get(chainID)
	if !ok {
		return nil, fmt.Errorf("unknown chain %s", chainID)
	}
	u := fmt.Sprintf("%s/token?chain=%s&token=%s",
		p.baseURL, url.QueryEscape(chain.ProviderID(LiFiProviderName)), url.QueryEscape(address))

	var raw lifiToken
	if err := p.http.getJSON(ctx, u, nil, &raw); err != nil {
		return nil, err
	}
	tok := p.normalizeToken(&raw, chainID)
	if tok == nil {
		return nil, fmt.Errorf("token %s not resolvable on chain %s", address, chainID)
	}
	tok.RouterToken = raw.Address
	return tok, nil
}

// FetchChains enumerates the chains the routing API supports.
func (p *LiFiProvider) FetchChains(ctx context.Context) ([]domain.Chain, error) {
	var resp lifiChainsResponse
	if err := p.http.getJSON(ctx, p.baseURL+"/chains", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Chain, 0, len(resp.Chains))
	for _, c := range resp.Chains {
		out = append(out, p.normalizeChain(c))
	}
	return out, nil
}

func (p *LiFiProvider) normalizeChain(c lifiChain) domain.Chain {
	id := domain.ChainID(strconv.FormatInt(c.ID, 10))
	family := domain.FamilyEVM
	if strings.EqualFold(c.Key, "sol") {
		id = domain.ChainSolana
		family = domain.FamilySolana
	}
	return domain.Chain{
		ID:          id,
		Name:        c.Name,
		Family:      family,
		ProviderIDs: map[string]string{LiFiProviderName: strconv.FormatInt(c.ID, 10)},
	}
}

func (p *LiFiProvider) normalizeToken(raw *lifiToken, chainID domain.ChainID) *domain.NormalizedToken {
	if raw.Address == "" || raw.Symbol == "" {
		return nil
	}
	price, _ := strconv.ParseFloat(raw.PriceUSD, 64)
	return &domain.NormalizedToken{
		ChainID:   chainID,
		Address:   raw.Address,
		Symbol:    raw.Symbol,
		Name:      raw.Name,
		Decimals:  raw.Decimals,
		LogoURI:   raw.LogoURI,
		PriceUSD:  price,
		Providers: []string{LiFiProviderName},
	}
}

// canonicalChain maps the provider's chain key back to the canonical id.
func (p *LiFiProvider) canonicalChain(providerChainID string) (domain.ChainID, bool) {
	for _, c := range p.chains.All() {
		if c.ProviderID(LiFiProviderName) == providerChainID {
			return c.ID, true
		}
	}
	return "", false
}
