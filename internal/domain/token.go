package domain

import "strings"

// NormalizedToken is the canonical token record merged from one or more
// providers. Unique by (ChainID, lowercased Address).
type NormalizedToken struct {
	ChainID   ChainID  `json:"chainId"`
	Address   string   `json:"address"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Decimals  uint8    `json:"decimals"`
	LogoURI   string   `json:"logoURI,omitempty"`
	PriceUSD  float64  `json:"priceUsd,omitempty"`
	Liquidity float64  `json:"liquidity,omitempty"`
	Volume24h float64  `json:"volume24h,omitempty"`
	Providers []string `json:"providers,omitempty"`

	// RouterToken is set by enrichment when the routing API confirmed this
	// token under a (possibly checksummed or remapped) identifier.
	RouterToken string `json:"routerToken,omitempty"`
}

// TokenKey identifies a token across providers.
type TokenKey struct {
	ChainID ChainID
	Address string
}

// Key returns the dedup key: chain id plus lowercased address.
func (t *NormalizedToken) Key() TokenKey {
	return TokenKey{ChainID: t.ChainID, Address: strings.ToLower(t.Address)}
}

// Merge folds another record describing the same token into t. Fields keep
// the first non-empty value; provider lists are unioned.
func (t *NormalizedToken) Merge(other *NormalizedToken) {
	if t.Symbol == "" {
		t.Symbol = other.Symbol
	}
	if t.Name == "" {
		t.Name = other.Name
	}
	if t.Decimals == 0 {
		t.Decimals = other.Decimals
	}
	if t.LogoURI == "" {
		t.LogoURI = other.LogoURI
	}
	if t.PriceUSD == 0 {
		t.PriceUSD = other.PriceUSD
	}
	if t.Liquidity == 0 {
		t.Liquidity = other.Liquidity
	}
	if t.Volume24h == 0 {
		t.Volume24h = other.Volume24h
	}
	if t.RouterToken == "" {
		t.RouterToken = other.RouterToken
	}
	t.Providers = unionProviders(t.Providers, other.Providers)
}

func unionProviders(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
