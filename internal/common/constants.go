// Package common contains common constants and variables used across services
package common

import "strings"

// EVM addresses the engine treats specially.
const (
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// NativeTokenSentinel is the pseudo-address providers use for a chain's
	// gas token.
	NativeTokenSentinel = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
)

// IsNativeToken reports whether addr is one of the pseudo-addresses that
// stand in for a chain's gas token. Contract operations must substitute the
// wrapped native address for these.
func IsNativeToken(addr string) bool {
	return strings.EqualFold(addr, ZeroAddress) || strings.EqualFold(addr, NativeTokenSentinel)
}
