package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/executor"
	"github.com/hxuan190/omniswap-engine/internal/http/httputil"
)

type SwapHandler struct {
	executorSvc *executor.Service
}

func NewSwapHandler(executorSvc *executor.Service) *SwapHandler {
	return &SwapHandler{executorSvc: executorSvc}
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	private.POST("/execute", h.executeSwap)
}

// SwapExecuteRequest submits a quoted route for execution
type SwapExecuteRequest struct {
	// Account address a wallet was registered under
	Account string `json:"account" binding:"required" example:"0x8894e0a0c962cb723c1976a4421c95949be2d4e3"`

	// The quoted route to execute, exactly as the quoting pass returned it
	Route domain.Route `json:"route" binding:"required"`
}

// executeSwap godoc
// @Summary Execute a quoted route
// @Description Runs every route step sequentially through the registered wallet. Partial progress is preserved on failure.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapExecuteRequest true "Route and executing account"
// @Success 200 {object} httputil.Response{data=executor.ExecutionResult}
// @Failure 400 {object} httputil.Response
// @Failure 409 {object} httputil.Response
// @Router /swap/execute [post]
func (h *SwapHandler) executeSwap(c *gin.Context) {
	var req SwapExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	result, err := h.executorSvc.ExecuteRoute(c.Request.Context(), &req.Route, req.Account)
	if err != nil {
		if errors.Is(err, common.ErrQuoteExpired) {
			httputil.Conflict(c, err.Error())
			return
		}
		if result != nil {
			// Step failures still return the partial result alongside the
			// error so callers can resume or refund from the right point.
			c.JSON(422, httputil.Response{Success: false, Data: result, Error: err.Error()})
			return
		}
		httputil.BadRequest(c, err.Error())
		return
	}
	httputil.Success(c, result)
}
