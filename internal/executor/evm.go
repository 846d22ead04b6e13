package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/evm"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
)

// evmRunner executes one EVM step: chain alignment, numeric normalization,
// gas simulation, wallet submission, bounded receipt polling.
type evmRunner struct {
	readers        func(chainID domain.ChainID) (evm.TxReader, error)
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// ensureChain aligns the wallet session with the step's chain. A switch
// rejection escalates to add-then-switch before giving up.
func (r *evmRunner) ensureChain(ctx context.Context, wallet EVMWallet, chain *domain.Chain) error {
	current, err := wallet.ChainID(ctx)
	if err != nil {
		return err
	}
	if current == chain.ID {
		return nil
	}

	if err := wallet.SwitchChain(ctx, chain.ID); err == nil {
		return nil
	} else if errors.Is(err, common.ErrUserRejected) {
		return err
	}

	if err := wallet.AddChain(ctx, *chain); err != nil {
		return &common.ChainMismatchError{WalletChain: string(current), RequiredChain: string(chain.ID)}
	}
	if err := wallet.SwitchChain(ctx, chain.ID); err != nil {
		if errors.Is(err, common.ErrUserRejected) {
			return err
		}
		return &common.ChainMismatchError{WalletChain: string(current), RequiredChain: string(chain.ID)}
	}
	return nil
}

// buildRequest normalizes the loose tx template into a typed request.
// Value defaults to zero when absent.
func buildRequest(tpl *domain.TxTemplate) (*EVMTxRequest, error) {
	if tpl == nil || tpl.To == "" {
		return nil, common.ErrNoTransaction
	}

	value, err := parseQuantity(tpl.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid tx value %q: %w", tpl.Value, err)
	}
	gasPrice, err := parseQuantity(tpl.GasPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid gas price %q: %w", tpl.GasPrice, err)
	}
	gasLimit, err := parseQuantity(tpl.GasLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid gas limit %q: %w", tpl.GasLimit, err)
	}

	var data []byte
	if tpl.Data != "" {
		data, err = hexutil.Decode(tpl.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid tx data: %w", err)
		}
	}

	return &EVMTxRequest{
		To:       tpl.To,
		Data:     data,
		Value:    value,
		GasLimit: gasLimit.Uint64(),
		GasPrice: gasPrice,
	}, nil
}

// parseQuantity accepts decimal and 0x-hex string forms. Empty means zero.
func parseQuantity(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uint256.NewInt(0), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return uint256.FromHex(strings.ToLower(s))
	}
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, err
	}
	return v, nil
}

// simulate estimates gas for the request. A predicted revert is classified
// so the caller knows whether an approval or balance is the blocker.
func (r *evmRunner) simulate(ctx context.Context, chainID domain.ChainID, from string, req *EVMTxRequest) error {
	reader, err := r.readers(chainID)
	if err != nil {
		return err
	}

	to := ethcommon.HexToAddress(req.To)
	msg := ethereum.CallMsg{
		From:  ethcommon.HexToAddress(from),
		To:    &to,
		Data:  req.Data,
		Value: req.Value.ToBig(),
	}
	gas, err := reader.EstimateGas(ctx, msg)
	if err != nil {
		return classifyRevert(err)
	}
	if req.GasLimit == 0 {
		// Headroom over the estimate for state drift between now and send.
		req.GasLimit = gas + gas/5
	}
	return nil
}

// waitReceipt polls for the receipt until the confirmation timeout. A
// receipt with failed status is an execution failure, not a timeout.
func (r *evmRunner) waitReceipt(ctx context.Context, chainID domain.ChainID, txHash string) error {
	reader, err := r.readers(chainID)
	if err != nil {
		return err
	}

	start := time.Now()
	deadline := start.Add(r.confirmTimeout)
	hash := ethcommon.HexToHash(txHash)

	for {
		receipt, err := reader.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			metrics.ConfirmDuration.WithLabelValues("evm").Observe(time.Since(start).Seconds())
			if receipt.Status != 1 {
				return fmt.Errorf("transaction %s reverted on-chain", txHash)
			}
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s not confirmed within %s", txHash, r.confirmTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}
}

// Run executes one EVM step end to end and returns the transaction hash.
func (r *evmRunner) Run(ctx context.Context, wallet EVMWallet, chain *domain.Chain, step *domain.Step) (string, error) {
	if err := r.ensureChain(ctx, wallet, chain); err != nil {
		return "", err
	}

	req, err := buildRequest(step.Tx)
	if err != nil {
		return "", err
	}
	if err := r.simulate(ctx, chain.ID, wallet.Address(), req); err != nil {
		return "", err
	}

	txHash, err := wallet.SendTransaction(ctx, chain.ID, req)
	if err != nil {
		return "", err
	}
	log.Info().
		Str("step", step.ID).
		Str("chain", string(chain.ID)).
		Str("tx", txHash).
		Msg("[evmRunner] transaction submitted")

	if err := r.waitReceipt(ctx, chain.ID, txHash); err != nil {
		return txHash, err
	}
	return txHash, nil
}
