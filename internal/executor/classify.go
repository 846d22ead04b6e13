package executor

import (
	"strings"

	"github.com/hxuan190/omniswap-engine/internal/common"
)

// classifyRevert maps a simulation failure onto an actionable reason using
// the revert strings routers and token contracts conventionally emit.
func classifyRevert(err error) *common.SimulationError {
	msg := err.Error()
	upper := strings.ToUpper(msg)

	switch {
	case strings.Contains(upper, "TRANSFER_FROM_FAILED"),
		strings.Contains(upper, "TRANSFERFROM_FAILED"),
		strings.Contains(upper, "INSUFFICIENT ALLOWANCE"),
		strings.Contains(upper, "EXCEEDS ALLOWANCE"):
		return &common.SimulationError{Reason: common.ReasonMissingApproval, Detail: msg}

	case strings.Contains(upper, "INSUFFICIENT FUNDS"),
		strings.Contains(upper, "EXCEEDS BALANCE"),
		strings.Contains(upper, "TRANSFER_FAILED"),
		strings.Contains(upper, "SUBTRACTION OVERFLOW"):
		return &common.SimulationError{Reason: common.ReasonInsufficientBalance, Detail: msg}

	default:
		return &common.SimulationError{Reason: common.ReasonGenericRevert, Detail: msg}
	}
}
