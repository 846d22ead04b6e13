package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenKeyIsCaseInsensitive(t *testing.T) {
	a := NormalizedToken{ChainID: "56", Address: "0xABCDef"}
	b := NormalizedToken{ChainID: "56", Address: "0xabcdef"}
	assert.Equal(t, a.Key(), b.Key())

	c := NormalizedToken{ChainID: "1", Address: "0xabcdef"}
	assert.NotEqual(t, a.Key(), c.Key(), "same address on another chain is another token")
}

func TestTokenMergeFirstNonEmptyWins(t *testing.T) {
	dst := NormalizedToken{
		ChainID:   "56",
		Address:   "0xcake",
		Symbol:    "CAKE",
		PriceUSD:  2.5,
		Providers: []string{"lifi"},
	}
	src := NormalizedToken{
		ChainID:   "56",
		Address:   "0xCAKE",
		Symbol:    "PANCAKE",
		Name:      "PancakeSwap Token",
		Decimals:  18,
		PriceUSD:  2.4,
		Liquidity: 1_000_000,
		Providers: []string{"dexscreener"},
	}

	dst.Merge(&src)

	assert.Equal(t, "CAKE", dst.Symbol, "existing symbol must win")
	assert.Equal(t, "PancakeSwap Token", dst.Name, "missing name fills from the other record")
	assert.Equal(t, uint8(18), dst.Decimals)
	assert.Equal(t, 2.5, dst.PriceUSD, "existing price must win")
	assert.Equal(t, 1_000_000.0, dst.Liquidity)
	assert.Equal(t, []string{"lifi", "dexscreener"}, dst.Providers)
}

func TestTokenMergeProviderUnionDeduplicates(t *testing.T) {
	dst := NormalizedToken{Providers: []string{"lifi", "dexscreener"}}
	src := NormalizedToken{Providers: []string{"dexscreener", "debank"}}

	dst.Merge(&src)
	assert.Equal(t, []string{"lifi", "dexscreener", "debank"}, dst.Providers)
}

func TestRouteExpiry(t *testing.T) {
	now := time.Now()

	live := Route{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, live.Expired(now))

	stale := Route{ExpiresAt: now.Add(-time.Second)}
	assert.True(t, stale.Expired(now))

	unset := Route{}
	assert.False(t, unset.Expired(now), "routes without expiry never expire")
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilySolana, FamilyOf(ChainSolana))
	assert.Equal(t, FamilyEVM, FamilyOf("56"))
	assert.Equal(t, FamilyEVM, FamilyOf("1"))
}

func TestChainProviderIDFallback(t *testing.T) {
	chain := Chain{ID: "56", ProviderIDs: map[string]string{"dexscreener": "bsc"}}
	assert.Equal(t, "bsc", chain.ProviderID("dexscreener"))
	assert.Equal(t, "56", chain.ProviderID("unknown-provider"))
}

func TestStepKindExecutable(t *testing.T) {
	assert.True(t, StepSwap.Executable())
	assert.True(t, StepBridge.Executable())
	assert.True(t, StepWrap.Executable())
	assert.False(t, StepApprove.Executable())
	assert.False(t, StepOther.Executable())
}
