package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/http/httputil"
	"github.com/hxuan190/omniswap-engine/internal/pairs"
)

type PairHandler struct {
	pairSvc *pairs.Service
}

func NewPairHandler(pairSvc *pairs.Service) *PairHandler {
	return &PairHandler{pairSvc: pairSvc}
}

func (h *PairHandler) Root() string {
	return "/pairs"
}

func (h *PairHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/query", h.queryPairs)
	pub.GET("/verify", h.verifyPair)
	pub.POST("/token", h.discoverPairs)
}

// PairQueryRequest represents a free-text pair index search
type PairQueryRequest struct {
	// Free-text query, usually a token symbol
	Q string `form:"q" binding:"required" example:"CAKE"`

	// Canonical chain id the results must belong to
	ChainID string `form:"chainId" binding:"required" example:"56"`
}

// queryPairs godoc
// @Summary Search the pair index by text
// @Description Indexed pools matching the query, constrained to supported exchanges and sorted by liquidity
// @Tags pairs
// @Produce json
// @Param q query string true "Free-text query"
// @Param chainId query string true "Canonical chain id"
// @Success 200 {object} httputil.Response{data=[]domain.IndexedPair}
// @Failure 400 {object} httputil.Response
// @Failure 502 {object} httputil.Response
// @Router /pairs/query [get]
func (h *PairHandler) queryPairs(c *gin.Context) {
	var req PairQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	indexed, err := h.pairSvc.QueryPairs(c.Request.Context(), req.Q, domain.ChainID(req.ChainID))
	if err != nil {
		writeAggregationError(c, err)
		return
	}
	httputil.Success(c, indexed)
}

// PairVerifyRequest identifies one pool on one exchange
type PairVerifyRequest struct {
	// First token contract address
	TokenA string `form:"tokenA" binding:"required" example:"0x55d398326f99059ff775485246999027b3197955"`

	// Second token contract address
	TokenB string `form:"tokenB" binding:"required" example:"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"`

	// Canonical chain id
	ChainID string `form:"chainId" binding:"required" example:"56"`

	// Exchange identifier
	DexID string `form:"dexId" binding:"required" example:"pancakeswap"`
}

// verifyPair godoc
// @Summary Verify one pool on one exchange
// @Description Proves the pool exists and trades via factory lookup and router simulation; 404 means absent or untradable
// @Tags pairs
// @Produce json
// @Param tokenA query string true "First token address"
// @Param tokenB query string true "Second token address"
// @Param chainId query string true "Canonical chain id"
// @Param dexId query string true "Exchange identifier"
// @Success 200 {object} httputil.Response{data=domain.VerifiedPair}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /pairs/verify [get]
func (h *PairHandler) verifyPair(c *gin.Context) {
	var req PairVerifyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	pair, err := h.pairSvc.VerifyPair(
		c.Request.Context(), domain.ChainID(req.ChainID), req.DexID, req.TokenA, req.TokenB)
	if err != nil {
		if errors.Is(err, common.ErrPairNotFound) {
			httputil.NotFound(c, err.Error())
			return
		}
		writeAggregationError(c, err)
		return
	}
	httputil.Success(c, pair)
}

// PairDiscoveryRequest asks for tradable pools for one token
type PairDiscoveryRequest struct {
	// Canonical chain id
	ChainID string `json:"chainId" binding:"required" example:"56"`

	// Token contract address
	Address string `json:"address" binding:"required" example:"0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82"`

	// Token symbol, used by the index fallback when on-chain discovery
	// finds nothing
	Symbol string `json:"symbol" example:"CAKE"`
}

// PairDiscoveryResponse carries both result tiers: proven pools and, when
// none verified, unproven indexer pools.
type PairDiscoveryResponse struct {
	Verified []*domain.VerifiedPair `json:"verified"`
	Indexed  []domain.IndexedPair   `json:"indexed,omitempty"`
}

// discoverPairs godoc
// @Summary Discover tradable pools for a token
// @Description Proves pools on-chain via factory lookup and router simulation; falls back to the pair index when nothing verifies
// @Tags pairs
// @Accept json
// @Produce json
// @Param request body PairDiscoveryRequest true "Token to discover pools for"
// @Success 200 {object} httputil.Response{data=PairDiscoveryResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /pairs/token [post]
func (h *PairHandler) discoverPairs(c *gin.Context) {
	var req PairDiscoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	verified, indexed, err := h.pairSvc.DiscoverPairsForToken(
		c.Request.Context(), domain.ChainID(req.ChainID), req.Address, req.Symbol)
	if err != nil {
		if errors.Is(err, common.ErrPairNotFound) {
			httputil.NotFound(c, err.Error())
			return
		}
		writeAggregationError(c, err)
		return
	}
	if len(verified) == 0 && len(indexed) == 0 {
		httputil.NotFound(c, common.ErrPairNotFound.Error())
		return
	}
	httputil.Success(c, PairDiscoveryResponse{Verified: verified, Indexed: indexed})
}
