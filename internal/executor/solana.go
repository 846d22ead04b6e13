package executor

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
)

// solanaRunner executes one Solana step: decode the prebuilt transaction,
// refresh the blockhash, sign through the wallet, broadcast and poll.
type solanaRunner struct {
	client         *rpc.Client
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

func (r *solanaRunner) Run(ctx context.Context, wallet SolanaWallet, step *domain.Step) (string, error) {
	tx, err := decodeSolanaTx(step.Tx)
	if err != nil {
		return "", err
	}

	// Quotes age out fast; a stale blockhash guarantees rejection, so the
	// transaction always gets a fresh one right before signing.
	recent, err := r.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = recent.Value.Blockhash

	if err := setFeePayer(tx, wallet.PublicKey()); err != nil {
		return "", err
	}

	signed, err := wallet.SignTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	sig, err := r.client.SendTransactionWithOpts(ctx, signed, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return "", fmt.Errorf("broadcast: %w", err)
	}
	log.Info().
		Str("step", step.ID).
		Str("signature", sig.String()).
		Msg("[solanaRunner] transaction submitted")

	if err := r.waitConfirmed(ctx, sig); err != nil {
		return sig.String(), err
	}
	return sig.String(), nil
}

// setFeePayer fills the fee payer slot when the prebuilt transaction left
// it empty. A payer the builder already set is kept: overwriting it would
// invalidate any instruction that references the original key.
func setFeePayer(tx *solana.Transaction, payer solana.PublicKey) error {
	if len(tx.Message.AccountKeys) == 0 {
		return common.ErrNoTransaction
	}
	if tx.Message.AccountKeys[0].IsZero() {
		tx.Message.AccountKeys[0] = payer
	}
	return nil
}

func decodeSolanaTx(tpl *domain.TxTemplate) (*solana.Transaction, error) {
	if tpl == nil || tpl.SolanaTx == "" {
		return nil, common.ErrNoTransaction
	}
	raw, err := base64.StdEncoding.DecodeString(tpl.SolanaTx)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction encoding: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("deserialize transaction: %w", err)
	}
	return tx, nil
}

// waitConfirmed polls signature status until confirmed or the timeout.
func (r *solanaRunner) waitConfirmed(ctx context.Context, sig solana.Signature) error {
	start := time.Now()
	deadline := start.Add(r.confirmTimeout)

	for {
		out, err := r.client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				metrics.ConfirmDuration.WithLabelValues("solana").Observe(time.Since(start).Seconds())
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s not confirmed within %s", sig, r.confirmTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}
}
