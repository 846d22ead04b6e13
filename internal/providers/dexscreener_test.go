package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
)

func testChains() *domain.ChainRegistry {
	return domain.NewChainRegistry(domain.DefaultChains())
}

func TestSearchPairsNarrowsQueryUntilHit(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		if q != "CAK" {
			w.Write([]byte(`{"pairs":[]}`))
			return
		}
		w.Write([]byte(`{"pairs":[
			{"chainId":"bsc","dexId":"pancakeswap","pairAddress":"0xpool1",
			 "baseToken":{"address":"0xcake","symbol":"CAKE","name":"PancakeSwap"},
			 "quoteToken":{"address":"0xwbnb","symbol":"WBNB"},
			 "liquidity":{"usd":1000000}}
		]}`))
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	pairs, err := p.SearchPairs(context.Background(), "CAKEX", "56", nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"CAKEX", "CAKE", "CAK"}, queries, "query narrows one character at a time")
	assert.Equal(t, "0xpool1", pairs[0].PairAddress)
	assert.Equal(t, "pancakeswap", pairs[0].DexID)
}

func TestSearchPairsStopsAtMinimumPrefix(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"pairs":[]}`))
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	pairs, err := p.SearchPairs(context.Background(), "ABCD", "56", nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	// ABCD, ABC, AB: the single-character prefix is never queried.
	assert.Equal(t, 3, requests)
}

func TestSearchPairsDeduplicatesByPoolKeepingHigherLiquidity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[
			{"chainId":"bsc","dexId":"pancakeswap","pairAddress":"0xPOOL",
			 "baseToken":{"address":"0xcake","symbol":"CAKE"},
			 "quoteToken":{"address":"0xwbnb","symbol":"WBNB"},
			 "liquidity":{"usd":100}},
			{"chainId":"bsc","dexId":"pancakeswap","pairAddress":"0xpool",
			 "baseToken":{"address":"0xcake","symbol":"CAKE"},
			 "quoteToken":{"address":"0xwbnb","symbol":"WBNB"},
			 "liquidity":{"usd":5000}},
			{"chainId":"bsc","dexId":"biswap","pairAddress":"0xother",
			 "baseToken":{"address":"0xcake","symbol":"CAKE"},
			 "quoteToken":{"address":"0xusdt","symbol":"USDT"},
			 "liquidity":{"usd":900}}
		]}`))
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	pairs, err := p.SearchPairs(context.Background(), "CAKE", "56", nil)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, 5000.0, pairs[0].LiquidityUSD, "duplicates keep the higher liquidity, sorted first")
	assert.Equal(t, 900.0, pairs[1].LiquidityUSD)
}

func TestSearchPairsFiltersChainAndDex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[
			{"chainId":"ethereum","dexId":"uniswap","pairAddress":"0x1",
			 "baseToken":{"address":"0xa","symbol":"CAKE"},"quoteToken":{"address":"0xb","symbol":"WETH"},
			 "liquidity":{"usd":100}},
			{"chainId":"bsc","dexId":"someforked","pairAddress":"0x2",
			 "baseToken":{"address":"0xa","symbol":"CAKE"},"quoteToken":{"address":"0xb","symbol":"WBNB"},
			 "liquidity":{"usd":100}},
			{"chainId":"bsc","dexId":"pancakeswap","pairAddress":"0x3",
			 "baseToken":{"address":"0xa","symbol":"CAKE"},"quoteToken":{"address":"0xb","symbol":"WBNB"},
			 "liquidity":{"usd":100}}
		]}`))
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	pairs, err := p.SearchPairs(context.Background(), "CAKE", "56", []string{"pancakeswap"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "0x3", pairs[0].PairAddress)
}

func TestFetchTokensMapsPairsToTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[
			{"chainId":"bsc","dexId":"pancakeswap","pairAddress":"0xpool",
			 "baseToken":{"address":"0xcake","symbol":"CAKE","name":"PancakeSwap"},
			 "quoteToken":{"address":"0xwbnb","symbol":"WBNB"},
			 "priceUsd":"2.41","liquidity":{"usd":1000000},"volume":{"h24":50000}},
			{"chainId":"bsc","dexId":"biswap","pairAddress":"0xpool2",
			 "baseToken":{"address":"0xCAKE","symbol":"CAKE","name":"PancakeSwap"},
			 "quoteToken":{"address":"0xusdt","symbol":"USDT"},
			 "liquidity":{"usd":400}}
		]}`))
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	tokens, err := p.FetchTokens(context.Background(), Query{Text: "CAKE", ChainIDs: []domain.ChainID{"56"}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tokens, 1, "same base token across pools dedupes")
	assert.Equal(t, domain.ChainID("56"), tokens[0].ChainID)
	assert.Equal(t, 2.41, tokens[0].PriceUSD)
	assert.Equal(t, 1_000_000.0, tokens[0].Liquidity)
}

func TestFetchTokensNarrowsQueryUntilHit(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		if q != "PANCAKE" {
			w.Write([]byte(`{"pairs":[]}`))
			return
		}
		w.Write([]byte(`{"pairs":[
			{"chainId":"bsc","dexId":"pancakeswap","pairAddress":"0xpool",
			 "baseToken":{"address":"0xcake","symbol":"CAKE","name":"PancakeSwap"},
			 "quoteToken":{"address":"0xwbnb","symbol":"WBNB"},
			 "liquidity":{"usd":1000000}}
		]}`))
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	tokens, err := p.FetchTokens(context.Background(), Query{Text: "PANCAKESW", ChainIDs: []domain.ChainID{"56"}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, []string{"PANCAKESW", "PANCAKES", "PANCAKE"}, queries, "token search narrows like the pair search")
	assert.Equal(t, "CAKE", tokens[0].Symbol)
}

func TestFetchTokensNarrowsPastOtherChainHits(t *testing.T) {
	// The full term matches only on a chain the query excludes; narrowing
	// must keep going until a wanted-chain result appears.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "CAKEX" {
			w.Write([]byte(`{"pairs":[
				{"chainId":"ethereum","dexId":"uniswap","pairAddress":"0xeth",
				 "baseToken":{"address":"0xa","symbol":"CAKEX"},"quoteToken":{"address":"0xb","symbol":"WETH"},
				 "liquidity":{"usd":100}}
			]}`))
			return
		}
		w.Write([]byte(`{"pairs":[
			{"chainId":"bsc","dexId":"pancakeswap","pairAddress":"0xpool",
			 "baseToken":{"address":"0xcake","symbol":"CAKE","name":"PancakeSwap"},
			 "quoteToken":{"address":"0xwbnb","symbol":"WBNB"},
			 "liquidity":{"usd":1000000}}
		]}`))
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	tokens, err := p.FetchTokens(context.Background(), Query{Text: "CAKEX", ChainIDs: []domain.ChainID{"56"}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, domain.ChainID("56"), tokens[0].ChainID)
}

func TestFetchTokensWithoutQueryContributesNothing(t *testing.T) {
	p := NewDexScreenerProvider("http://invalid.local", time.Second, testChains())
	tokens, err := p.FetchTokens(context.Background(), Query{ChainIDs: []domain.ChainID{"56"}})
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestRateLimitedResponseMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewDexScreenerProvider(srv.URL, time.Second, testChains())
	_, err := p.SearchPairs(context.Background(), "CAKE", "56", nil)
	assert.ErrorIs(t, err, common.ErrRateLimited)
}
