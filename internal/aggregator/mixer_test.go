package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hxuan190/omniswap-engine/internal/domain"
)

func tokensOn(chainID domain.ChainID, n int) []domain.NormalizedToken {
	out := make([]domain.NormalizedToken, n)
	for i := range out {
		out[i] = domain.NormalizedToken{ChainID: chainID, Address: string(rune('a' + i))}
	}
	return out
}

func countByChain(tokens []domain.NormalizedToken) map[domain.ChainID]int {
	counts := make(map[domain.ChainID]int)
	for _, t := range tokens {
		counts[t.ChainID]++
	}
	return counts
}

func TestMixBalancedCapsOrdinaryChains(t *testing.T) {
	var input []domain.NormalizedToken
	input = append(input, tokensOn("1", 8)...)
	input = append(input, tokensOn("137", 8)...)

	out := mixBalanced(input, 6, 3, 10, "56")
	counts := countByChain(out)
	assert.Equal(t, 3, counts["1"])
	assert.Equal(t, 3, counts["137"])
}

func TestMixBalancedPriorityChainGetsLargerCap(t *testing.T) {
	var input []domain.NormalizedToken
	input = append(input, tokensOn("56", 15)...)
	input = append(input, tokensOn("1", 15)...)

	out := mixBalanced(input, 13, 3, 10, "56")
	counts := countByChain(out)
	assert.Equal(t, 10, counts["56"])
	assert.Equal(t, 3, counts["1"])
}

func TestMixBalancedRefillsRoundRobinUpToLimit(t *testing.T) {
	var input []domain.NormalizedToken
	input = append(input, tokensOn("56", 10)...)
	input = append(input, tokensOn("1", 10)...)

	out := mixBalanced(input, 15, 3, 5, "56")
	assert.Len(t, out, 15, "leftover slots are refilled from capped-out tokens")

	counts := countByChain(out)
	// 5+3 capped, then 7 refill slots split 4/3 between the two chains.
	assert.Equal(t, 9, counts["56"])
	assert.Equal(t, 6, counts["1"])
}

func TestMixBalancedRefillStopsWhenCandidatesRunOut(t *testing.T) {
	var input []domain.NormalizedToken
	input = append(input, tokensOn("1", 4)...)
	input = append(input, tokensOn("137", 2)...)

	out := mixBalanced(input, 50, 3, 10, "56")
	assert.Len(t, out, 6)
}

func TestMixBalancedPreservesOrderWithinCaps(t *testing.T) {
	input := []domain.NormalizedToken{
		{ChainID: "1", Address: "first"},
		{ChainID: "137", Address: "second"},
		{ChainID: "1", Address: "third"},
	}
	out := mixBalanced(input, 3, 3, 10, "56")
	assert.Equal(t, "first", out[0].Address)
	assert.Equal(t, "second", out[1].Address)
	assert.Equal(t, "third", out[2].Address)
}

func TestMixBalancedZeroCapDisablesMixing(t *testing.T) {
	input := tokensOn("1", 5)
	out := mixBalanced(input, 5, 0, 10, "56")
	assert.Len(t, out, 5)
}
