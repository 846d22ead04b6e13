package aggregator

import (
	"strings"

	"github.com/hxuan190/omniswap-engine/internal/domain"
)

// matchScore grades a token against a free-text query. Exact symbol, name
// or address hits outrank everything; otherwise the best of the substring
// similarities over symbol, name and address decides.
type matchScore struct {
	exact      bool
	similarity float64
}

func scoreToken(t *domain.NormalizedToken, query string) matchScore {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return matchScore{similarity: 1}
	}

	sym := strings.ToLower(t.Symbol)
	name := strings.ToLower(t.Name)
	addr := strings.ToLower(t.Address)

	if sym == q || name == q || addr == q {
		return matchScore{exact: true, similarity: 1}
	}

	s := substringSimilarity(sym, q)
	if v := substringSimilarity(name, q); v > s {
		s = v
	}
	if v := substringSimilarity(addr, q); v > s {
		s = v
	}
	return matchScore{similarity: s}
}

// substringSimilarity is the query-coverage ratio: when the query occurs
// in the candidate, the score is len(query)/len(candidate), so tighter
// matches score higher. No occurrence scores zero.
func substringSimilarity(candidate, query string) float64 {
	if candidate == "" || !strings.Contains(candidate, query) {
		return 0
	}
	return float64(len(query)) / float64(len(candidate))
}
