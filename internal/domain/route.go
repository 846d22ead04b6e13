package domain

import "time"

// StepKind describes the unit of on-chain work a step performs.
type StepKind string

const (
	StepSwap    StepKind = "swap"
	StepBridge  StepKind = "bridge"
	StepWrap    StepKind = "wrap"
	StepUnwrap  StepKind = "unwrap"
	StepApprove StepKind = "approve"
	StepOther   StepKind = "other"
)

// Executable reports whether a step of this kind may run without a prebuilt
// transaction. Anything outside the swap family is only executable when the
// quoting pass already attached a transaction template.
func (k StepKind) Executable() bool {
	switch k {
	case StepSwap, StepBridge, StepWrap, StepUnwrap:
		return true
	default:
		return false
	}
}

// TxTemplate carries the raw transaction for one step. Exactly one of the
// two representations is populated, matching the step's execution family.
type TxTemplate struct {
	// EVM fields. Numeric fields may arrive as decimal or 0x-hex strings;
	// the executor normalizes them before submission.
	To       string `json:"to,omitempty"`
	Data     string `json:"data,omitempty"`
	Value    string `json:"value,omitempty"`
	GasLimit string `json:"gasLimit,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`

	// SolanaTx is the base64-encoded serialized transaction.
	SolanaTx string `json:"solanaTx,omitempty"`
}

// Step is one unit of on-chain work inside a Route. Steps never run in
// parallel: each depends on the previous step's confirmed state.
type Step struct {
	ID        string   `json:"id"`
	Kind      StepKind `json:"kind"`
	ChainID   ChainID  `json:"chainId"`
	FromToken string   `json:"fromToken"`
	ToToken   string   `json:"toToken"`

	// SubSteps (e.g. token approvals) run before the step itself.
	SubSteps []Step `json:"subSteps,omitempty"`

	// Tx is the prebuilt transaction template, or nil when the executor
	// must request one from the step's tx source at execution time.
	Tx *TxTemplate `json:"tx,omitempty"`
}

// Family classifies the step by its chain id.
func (s *Step) Family() ExecutionFamily {
	return FamilyOf(s.ChainID)
}

// Route is an ordered, immutable sequence of steps produced by a quoting
// pass. A route past its expiry must never begin execution.
type Route struct {
	ID        string    `json:"id"`
	Steps     []Step    `json:"steps"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the route's quote is no longer valid.
func (r *Route) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}
