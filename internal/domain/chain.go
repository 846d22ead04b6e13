// Package domain holds the canonical data model shared by all services.
package domain

// ExecutionFamily classifies how transactions are built, signed and
// confirmed on a chain.
type ExecutionFamily uint8

const (
	FamilyEVM ExecutionFamily = iota
	FamilySolana
	FamilyOther
)

func (f ExecutionFamily) String() string {
	switch f {
	case FamilyEVM:
		return "evm"
	case FamilySolana:
		return "solana"
	default:
		return "other"
	}
}

// ChainID is the canonical chain identifier, independent of any provider's
// own numbering. EVM chains use their decimal chain id ("56", "1"),
// Solana uses "solana".
type ChainID string

const ChainSolana ChainID = "solana"

// Chain describes one supported network. Instances are created at startup
// (or resolved from the chain-list provider) and never mutated afterwards.
type Chain struct {
	ID     ChainID
	Name   string
	Family ExecutionFamily

	// ProviderIDs maps a provider name to that provider's own identifier
	// for this chain (e.g. dexscreener uses "bsc" for chain 56).
	ProviderIDs map[string]string

	// WrappedNative is the wrapped gas token address, used as a default
	// intermediary for pair discovery. Empty for non-EVM chains.
	WrappedNative string
}

// ProviderID returns the provider-specific chain identifier, falling back
// to the canonical id when the provider has no mapping.
func (c *Chain) ProviderID(provider string) string {
	if id, ok := c.ProviderIDs[provider]; ok {
		return id
	}
	return string(c.ID)
}

// FamilyOf resolves the execution family from a canonical chain id alone.
// Anything that is not Solana is treated as EVM: the engine only ever sees
// chain ids that came from its own registry or from an EVM quote.
func FamilyOf(id ChainID) ExecutionFamily {
	if id == ChainSolana {
		return FamilySolana
	}
	return FamilyEVM
}

// DefaultChains is the built-in registry. The chain-list provider can extend
// it at runtime, but these are always available without a network call.
func DefaultChains() []Chain {
	return []Chain{
		{
			ID: "1", Name: "Ethereum", Family: FamilyEVM,
			ProviderIDs:   map[string]string{"dexscreener": "ethereum", "lifi": "1", "debank": "eth"},
			WrappedNative: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		},
		{
			ID: "56", Name: "BNB Smart Chain", Family: FamilyEVM,
			ProviderIDs:   map[string]string{"dexscreener": "bsc", "lifi": "56", "debank": "bsc"},
			WrappedNative: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c",
		},
		{
			ID: "137", Name: "Polygon", Family: FamilyEVM,
			ProviderIDs:   map[string]string{"dexscreener": "polygon", "lifi": "137", "debank": "matic"},
			WrappedNative: "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270",
		},
		{
			ID: "42161", Name: "Arbitrum One", Family: FamilyEVM,
			ProviderIDs:   map[string]string{"dexscreener": "arbitrum", "lifi": "42161", "debank": "arb"},
			WrappedNative: "0x82af49447d8a07e3bd95bd0d56f35241523fbab1",
		},
		{
			ID: "8453", Name: "Base", Family: FamilyEVM,
			ProviderIDs:   map[string]string{"dexscreener": "base", "lifi": "8453", "debank": "base"},
			WrappedNative: "0x4200000000000000000000000000000000000006",
		},
		{
			ID: "solana", Name: "Solana", Family: FamilySolana,
			ProviderIDs: map[string]string{"dexscreener": "solana", "lifi": "1151111081099710", "debank": "sol"},
		},
	}
}

// ChainRegistry is an immutable lookup over the known chains.
type ChainRegistry struct {
	byID map[ChainID]*Chain
	all  []Chain
}

func NewChainRegistry(chains []Chain) *ChainRegistry {
	r := &ChainRegistry{byID: make(map[ChainID]*Chain, len(chains)), all: chains}
	for i := range chains {
		r.byID[chains[i].ID] = &chains[i]
	}
	return r
}

func (r *ChainRegistry) Get(id ChainID) (*Chain, bool) {
	c, ok := r.byID[id]
	return c, ok
}

func (r *ChainRegistry) All() []Chain {
	return r.all
}

// EVMChainIDs returns the canonical ids of every EVM chain in the registry.
func (r *ChainRegistry) EVMChainIDs() []ChainID {
	ids := make([]ChainID, 0, len(r.all))
	for _, c := range r.all {
		if c.Family == FamilyEVM {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
