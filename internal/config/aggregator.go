package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

// AggregatorConfig holds the token aggregation and mixing policy.
// The mixing caps are policy, not constants: operators tune them per
// deployment.
type AggregatorConfig struct {
	// DefaultLimit caps a response when the caller does not pass a limit.
	DefaultLimit int

	// SimilarityThreshold discards non-exact query matches scoring below it.
	SimilarityThreshold float64

	// PerChainCap limits tokens per ordinary chain in an all-networks
	// request; PriorityChain gets PriorityCap instead.
	PerChainCap   int
	PriorityChain string
	PriorityCap   int

	// TokenCacheTTLMs is the TTL for aggregated token lists.
	TokenCacheTTLMs int
	// EnrichCacheTTLMs is the TTL for enrichment results.
	EnrichCacheTTLMs int

	// EnrichRaceDeadlineMs bounds the synchronous enrichment supplement so
	// the primary response stays fast.
	EnrichRaceDeadlineMs int

	// PairStorePath is the BoltDB file for the verified-pair warm store.
	PairStorePath string

	// PairReverifyAgeMs is how long a stored verification stands in for the
	// on-chain proof before the pair is re-verified.
	PairReverifyAgeMs int
}

func (c *AggregatorConfig) Key() string {
	return AGGREGATOR_CONFIG_KEY
}

func (c *AggregatorConfig) Load() error {
	c.DefaultLimit = common.GetEnvOrDefaultInt("AGG_DEFAULT_LIMIT", 50)
	c.SimilarityThreshold = float64(common.GetEnvOrDefaultInt("AGG_SIMILARITY_THRESHOLD_PCT", 50)) / 100
	c.PerChainCap = common.GetEnvOrDefaultInt("AGG_PER_CHAIN_CAP", 3)
	c.PriorityChain = common.GetEnvOrDefault("AGG_PRIORITY_CHAIN", "56")
	c.PriorityCap = common.GetEnvOrDefaultInt("AGG_PRIORITY_CAP", 10)
	c.TokenCacheTTLMs = common.GetEnvOrDefaultInt("AGG_TOKEN_CACHE_TTL_MS", 60_000)
	c.EnrichCacheTTLMs = common.GetEnvOrDefaultInt("AGG_ENRICH_CACHE_TTL_MS", 300_000)
	c.EnrichRaceDeadlineMs = common.GetEnvOrDefaultInt("AGG_ENRICH_RACE_DEADLINE_MS", 800)
	c.PairStorePath = common.GetEnvOrDefault("AGG_PAIR_STORE_PATH", "./data/pairs.db")
	c.PairReverifyAgeMs = common.GetEnvOrDefaultInt("AGG_PAIR_REVERIFY_AGE_MS", 3_600_000)
	return nil
}

func (c *AggregatorConfig) Validate() error {
	if c.PriorityCap <= c.PerChainCap {
		return errors.New("invalid aggregator config: priority cap must exceed per-chain cap")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return errors.New("invalid aggregator config: similarity threshold out of range")
	}
	return nil
}
