package pairs

import "github.com/hxuan190/omniswap-engine/internal/domain"

// DEX is one V2-style exchange deployment on a chain.
type DEX struct {
	ID      string
	ChainID domain.ChainID
	Factory string
	Router  string
}

// DefaultDEXes is the built-in exchange registry for pair verification.
// Addresses are the canonical V2 deployments.
func DefaultDEXes() []DEX {
	return []DEX{
		{ID: "pancakeswap", ChainID: "56", Factory: "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73", Router: "0x10ED43C718714eb63d5aA57B78B54704E256024E"},
		{ID: "biswap", ChainID: "56", Factory: "0x858E3312ed3A876947EA49d572A7C42DE08af7EE", Router: "0x3a6d8cA21D1CF76F653A67577FA0D27453350dD8"},
		{ID: "uniswap", ChainID: "1", Factory: "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f", Router: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"},
		{ID: "sushiswap", ChainID: "1", Factory: "0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac", Router: "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F"},
		{ID: "quickswap", ChainID: "137", Factory: "0x5757371414417b8C6CAad45bAeF941aBc7d3Ab32", Router: "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff"},
		{ID: "sushiswap", ChainID: "42161", Factory: "0xc35DADB65012eC5796536bD9864eD8773aBc74C4", Router: "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"},
		{ID: "baseswap", ChainID: "8453", Factory: "0xFDa619b6d20975be80A10332cD39b9a4b0FAa8BB", Router: "0x327Df1E6de05895d2ab08513aaDD9313Fe505d86"},
	}
}

// DEXRegistry indexes exchanges by chain.
type DEXRegistry struct {
	byChain map[domain.ChainID][]DEX
}

func NewDEXRegistry(dexes []DEX) *DEXRegistry {
	r := &DEXRegistry{byChain: make(map[domain.ChainID][]DEX)}
	for _, d := range dexes {
		r.byChain[d.ChainID] = append(r.byChain[d.ChainID], d)
	}
	return r
}

// ForChain returns the exchanges deployed on chainID in registry order.
func (r *DEXRegistry) ForChain(chainID domain.ChainID) []DEX {
	return r.byChain[chainID]
}

// Get looks up one exchange by identifier on a chain.
func (r *DEXRegistry) Get(chainID domain.ChainID, dexID string) (DEX, bool) {
	for _, d := range r.byChain[chainID] {
		if d.ID == dexID {
			return d, true
		}
	}
	return DEX{}, false
}

// IDsForChain returns just the exchange identifiers, used to constrain the
// text-search fallback to exchanges verification could also reach.
func (r *DEXRegistry) IDsForChain(chainID domain.ChainID) []string {
	dexes := r.byChain[chainID]
	ids := make([]string, 0, len(dexes))
	for _, d := range dexes {
		ids = append(ids, d.ID)
	}
	return ids
}
