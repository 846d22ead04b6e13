package domain

import (
	"math/big"
	"time"
)

// VerifiedPair is a DEX pool whose existence was confirmed against the
// factory contract and whose tradability was proven by a router simulation.
// It is never constructed from indexer data alone.
type VerifiedPair struct {
	ChainID     ChainID `json:"chainId"`
	DexID       string  `json:"dexId"`
	PairAddress string  `json:"pairAddress"`
	Router      string  `json:"router"`
	TokenA      string  `json:"tokenA"`
	TokenB      string  `json:"tokenB"`

	// OutputAmount is the proof output from the simulation that verified
	// the pair, for the probe input that first produced a positive result.
	OutputAmount *big.Int `json:"outputAmount"`
	ProbeAmount  *big.Int `json:"probeAmount"`

	// VerifiedAt is when the proof was produced. Reserves drift, so a proof
	// only stands in for the on-chain round trip while it is recent.
	VerifiedAt time.Time `json:"verifiedAt"`
}

// IndexedPair is a pool reported by the text-search fallback. Unlike
// VerifiedPair it carries no on-chain proof, only indexer liquidity.
type IndexedPair struct {
	ChainID      ChainID `json:"chainId"`
	DexID        string  `json:"dexId"`
	PairAddress  string  `json:"pairAddress"`
	BaseToken    string  `json:"baseToken"`
	BaseSymbol   string  `json:"baseSymbol"`
	QuoteToken   string  `json:"quoteToken"`
	QuoteSymbol  string  `json:"quoteSymbol"`
	LiquidityUSD float64 `json:"liquidityUsd"`
}
