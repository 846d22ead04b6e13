package aggregator

import "github.com/hxuan190/omniswap-engine/internal/domain"

// mixBalanced applies the per-chain caps for all-networks responses so no
// single chain crowds out the rest, then refills remaining slots up to
// limit round-robin from the capped-out tokens. Input order is preserved
// within and across chains; the priority chain gets a larger cap.
func mixBalanced(tokens []domain.NormalizedToken, limit, perChainCap, priorityCap int, priorityChain domain.ChainID) []domain.NormalizedToken {
	if perChainCap <= 0 {
		return tokens
	}
	if limit <= 0 || limit > len(tokens) {
		limit = len(tokens)
	}

	counts := make(map[domain.ChainID]int)
	out := make([]domain.NormalizedToken, 0, limit)
	overflow := make(map[domain.ChainID][]domain.NormalizedToken)
	var overflowChains []domain.ChainID

	for _, t := range tokens {
		quota := perChainCap
		if t.ChainID == priorityChain {
			quota = priorityCap
		}
		if counts[t.ChainID] >= quota {
			if _, ok := overflow[t.ChainID]; !ok {
				overflowChains = append(overflowChains, t.ChainID)
			}
			overflow[t.ChainID] = append(overflow[t.ChainID], t)
			continue
		}
		counts[t.ChainID]++
		out = append(out, t)
	}

	// Capping alone can leave the response short of the requested limit.
	// Distribute the leftover slots one chain at a time so the refill stays
	// balanced too.
	for len(out) < limit {
		refilled := false
		for _, cid := range overflowChains {
			if len(out) >= limit {
				break
			}
			rest := overflow[cid]
			if len(rest) == 0 {
				continue
			}
			out = append(out, rest[0])
			overflow[cid] = rest[1:]
			refilled = true
		}
		if !refilled {
			break
		}
	}
	return out
}
