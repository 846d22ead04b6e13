package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/omniswap-engine/internal/aggregator"
	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/http/httputil"
)

type TokenHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewTokenHandler(aggregatorSvc *aggregator.Service) *TokenHandler {
	return &TokenHandler{aggregatorSvc: aggregatorSvc}
}

func (h *TokenHandler) Root() string {
	return "/tokens"
}

func (h *TokenHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/search", h.searchTokens)
	pub.GET("/chain/:chainId", h.getTokensByChain)
}

// TokenSearchRequest represents the parameters for a free-text token search
type TokenSearchRequest struct {
	// Free-text query: symbol, name or contract address
	Q string `form:"q" binding:"required" example:"CAKE"`

	// Comma-separated canonical chain ids; empty searches all networks
	Chains string `form:"chains" example:"56,1"`

	// Maximum number of tokens to return
	Limit int `form:"limit" example:"50"`
}

// searchTokens godoc
// @Summary Search tokens across all providers
// @Description Free-text token search merged from every configured source, ranked exact-match first
// @Tags tokens
// @Produce json
// @Param q query string true "Symbol, name or contract address"
// @Param chains query string false "Comma-separated chain ids, empty for all networks"
// @Param limit query int false "Maximum result count"
// @Success 200 {object} httputil.Response{data=[]domain.NormalizedToken}
// @Failure 400 {object} httputil.Response
// @Failure 502 {object} httputil.Response
// @Router /tokens/search [get]
func (h *TokenHandler) searchTokens(c *gin.Context) {
	var req TokenSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	var chainIDs []domain.ChainID
	if strings.TrimSpace(req.Chains) != "" {
		for _, part := range strings.Split(req.Chains, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				chainIDs = append(chainIDs, domain.ChainID(part))
			}
		}
	}

	tokens, err := h.aggregatorSvc.SearchTokens(c.Request.Context(), req.Q, chainIDs, req.Limit)
	if err != nil {
		writeAggregationError(c, err)
		return
	}
	httputil.Success(c, tokens)
}

// getTokensByChain godoc
// @Summary List tokens for one chain
// @Description Tokens for a single chain ranked by liquidity
// @Tags tokens
// @Produce json
// @Param chainId path string true "Canonical chain id"
// @Param limit query int false "Maximum result count"
// @Success 200 {object} httputil.Response{data=[]domain.NormalizedToken}
// @Failure 400 {object} httputil.Response
// @Failure 502 {object} httputil.Response
// @Router /tokens/chain/{chainId} [get]
func (h *TokenHandler) getTokensByChain(c *gin.Context) {
	chainID := domain.ChainID(c.Param("chainId"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	tokens, err := h.aggregatorSvc.GetTokensByChain(c.Request.Context(), chainID, limit)
	if err != nil {
		writeAggregationError(c, err)
		return
	}
	httputil.Success(c, tokens)
}

func writeAggregationError(c *gin.Context, err error) {
	var unsupported *common.UnsupportedChainError
	switch {
	case errors.As(err, &unsupported):
		httputil.BadRequest(c, err.Error())
	case errors.Is(err, common.ErrProviderUnavailable):
		httputil.Error(c, 502, err.Error())
	case errors.Is(err, common.ErrAllKeysExhausted), errors.Is(err, common.ErrRateLimited):
		httputil.TooManyRequests(c, err.Error())
	default:
		httputil.InternalError(c, err.Error())
	}
}
