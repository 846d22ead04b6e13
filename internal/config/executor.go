package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

// ExecutorConfig holds the swap execution timeouts and delays.
type ExecutorConfig struct {
	// EVMConfirmTimeoutMs bounds the wait for an EVM receipt per step.
	EVMConfirmTimeoutMs int
	// SolanaConfirmTimeoutMs bounds the wait for a Solana signature status.
	SolanaConfirmTimeoutMs int
	// ApprovalSettleDelayMs is the fixed pause after an approval sub-step
	// before the dependent step runs.
	ApprovalSettleDelayMs int
	// ConfirmPollIntervalMs is how often confirmation is polled.
	ConfirmPollIntervalMs int
}

func (c *ExecutorConfig) Key() string {
	return EXECUTOR_CONFIG_KEY
}

func (c *ExecutorConfig) Load() error {
	c.EVMConfirmTimeoutMs = common.GetEnvOrDefaultInt("EXEC_EVM_CONFIRM_TIMEOUT_MS", 120_000)
	c.SolanaConfirmTimeoutMs = common.GetEnvOrDefaultInt("EXEC_SOLANA_CONFIRM_TIMEOUT_MS", 60_000)
	c.ApprovalSettleDelayMs = common.GetEnvOrDefaultInt("EXEC_APPROVAL_SETTLE_DELAY_MS", 2_000)
	c.ConfirmPollIntervalMs = common.GetEnvOrDefaultInt("EXEC_CONFIRM_POLL_INTERVAL_MS", 1_500)
	return nil
}

func (c *ExecutorConfig) Validate() error {
	if c.EVMConfirmTimeoutMs <= 0 || c.SolanaConfirmTimeoutMs <= 0 {
		return errors.New("invalid executor config: confirm timeouts must be positive")
	}
	return nil
}
