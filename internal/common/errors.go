// Package common provides shared utilities used across all features
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the aggregation and execution paths.
var (
	// ErrRateLimited marks a provider response that hit a credential quota.
	// The key pool reacts by rotating to the next credential.
	ErrRateLimited = errors.New("rate limited")

	// ErrAllKeysExhausted is terminal: every credential in the pool was
	// marked exhausted during one bounded retry loop.
	ErrAllKeysExhausted = errors.New("all api keys exhausted")

	// ErrProviderUnavailable covers network or malformed-response failures
	// from a single source. Absorbed at the adapter boundary.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrPairNotFound is the normal absent result of pair discovery.
	ErrPairNotFound = errors.New("pair not found")

	// ErrQuoteExpired rejects a route whose expiry passed before the first
	// step executed.
	ErrQuoteExpired = errors.New("quote expired")

	// ErrUserRejected means the wallet declined to sign or send.
	ErrUserRejected = errors.New("user rejected request")

	// ErrNoTransaction means a step had neither a prebuilt transaction nor
	// a source to request one from.
	ErrNoTransaction = errors.New("step has no transaction template")
)

// UnsupportedChainError rejects a request for a chain outside the registry.
type UnsupportedChainError struct {
	ChainID string
}

func (e *UnsupportedChainError) Error() string {
	return fmt.Sprintf("unsupported chain %q", e.ChainID)
}

// ChainMismatchError means the connected wallet sits on the wrong chain and
// neither switching nor adding the chain succeeded.
type ChainMismatchError struct {
	WalletChain   string
	RequiredChain string
}

func (e *ChainMismatchError) Error() string {
	return fmt.Sprintf("wallet is on chain %s but step requires chain %s", e.WalletChain, e.RequiredChain)
}

// SimulationReason is the heuristic classification of a pre-send revert.
type SimulationReason string

const (
	ReasonMissingApproval     SimulationReason = "missing-approval"
	ReasonInsufficientBalance SimulationReason = "insufficient-balance"
	ReasonGenericRevert       SimulationReason = "generic-revert"
)

// SimulationError reports that gas simulation predicted the transaction
// would revert, with a classified reason for the caller to act on.
type SimulationError struct {
	Reason SimulationReason
	Detail string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation would fail (%s): %s", e.Reason, e.Detail)
}

