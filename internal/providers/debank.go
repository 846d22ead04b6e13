package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/cache"
	"github.com/hxuan190/omniswap-engine/internal/domain"
)

const DeBankProviderName = "debank"

// DeBankProvider adapts the credentialed portfolio API. Every call goes
// through the key pool so quota-limited credentials rotate transparently.
type DeBankProvider struct {
	baseURL string
	http    *httpClient
	chains  *domain.ChainRegistry
	keys    *cache.KeyPool
}

func NewDeBankProvider(baseURL string, timeout time.Duration, chains *domain.ChainRegistry, keys *cache.KeyPool) *DeBankProvider {
	return &DeBankProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(DeBankProviderName, timeout),
		chains:  chains,
		keys:    keys,
	}
}

func (p *DeBankProvider) Name() string {
	return DeBankProviderName
}

type debankToken struct {
	ID       string  `json:"id"`
	Chain    string  `json:"chain"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
	LogoURL  string  `json:"logo_url"`
	Price    float64 `json:"price"`
}

// FetchTokens resolves address-shaped search terms against the portfolio
// API. This source has no free-text index, so anything that is not an
// address contributes nothing.
func (p *DeBankProvider) FetchTokens(ctx context.Context, q Query) ([]domain.NormalizedToken, error) {
	addr := strings.TrimSpace(q.Text)
	if !looksLikeEVMAddress(addr) {
		return nil, nil
	}

	chainIDs := q.ChainIDs
	if len(chainIDs) == 0 {
		chainIDs = p.chains.EVMChainIDs()
	}

	out := make([]domain.NormalizedToken, 0, len(chainIDs))
	for _, cid := range chainIDs {
		if domain.FamilyOf(cid) != domain.FamilyEVM {
			continue
		}
		tok, err := p.LookupToken(ctx, cid, addr)
		if err != nil {
			log.Debug().Err(err).Str("chain", string(cid)).Msg("[debank] address lookup miss")
			continue
		}
		out = append(out, *tok)
	}
	return out, nil
}

// LookupToken fetches a single token record by address through the key pool.
func (p *DeBankProvider) LookupToken(ctx context.Context, chainID domain.ChainID, address string) (*domain.NormalizedToken, error) {
	chain, ok := p.chains.Get(chainID)
	if !ok {
		return nil, fmt.Errorf("unknown chain %s", chainID)
	}
	u := fmt.Sprintf("%s/token?chain_id=%s&id=%s",
		p.baseURL, url.QueryEscape(chain.ProviderID(DeBankProviderName)), url.QueryEscape(address))

	var raw debankToken
	err := p.keys.Execute(ctx, func(key string) error {
		return p.http.getJSON(ctx, u, map[string]string{"AccessKey": key}, &raw)
	})
	if err != nil {
		return nil, err
	}
	if raw.ID == "" || raw.Symbol == "" {
		return nil, fmt.Errorf("token %s not found on chain %s", address, chainID)
	}
	return &domain.NormalizedToken{
		ChainID:   chainID,
		Address:   raw.ID,
		Symbol:    raw.Symbol,
		Name:      raw.Name,
		Decimals:  raw.Decimals,
		LogoURI:   raw.LogoURL,
		PriceUSD:  raw.Price,
		Providers: []string{DeBankProviderName},
	}, nil
}

func looksLikeEVMAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
