package executor

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
)

func TestSetFeePayerFillsEmptySlot(t *testing.T) {
	payer := solana.SystemProgramID
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{{}, solana.TokenProgramID},
		},
	}

	require.NoError(t, setFeePayer(tx, payer))
	assert.Equal(t, payer, tx.Message.AccountKeys[0])
}

func TestSetFeePayerKeepsExistingPayer(t *testing.T) {
	original := solana.TokenProgramID
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{original, solana.SystemProgramID},
		},
	}

	require.NoError(t, setFeePayer(tx, solana.SystemProgramID))
	assert.Equal(t, original, tx.Message.AccountKeys[0])
}

func TestSetFeePayerRejectsEmptyTransaction(t *testing.T) {
	tx := &solana.Transaction{}

	err := setFeePayer(tx, solana.SystemProgramID)
	assert.ErrorIs(t, err, common.ErrNoTransaction)
}

func TestDecodeSolanaTxRejectsMissingPayload(t *testing.T) {
	_, err := decodeSolanaTx(nil)
	assert.ErrorIs(t, err, common.ErrNoTransaction)

	_, err = decodeSolanaTx(&domain.TxTemplate{})
	assert.ErrorIs(t, err, common.ErrNoTransaction)
}

func TestDecodeSolanaTxRejectsBadEncoding(t *testing.T) {
	_, err := decodeSolanaTx(&domain.TxTemplate{SolanaTx: "not base64!!!"})
	assert.ErrorContains(t, err, "invalid transaction encoding")
}
