package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
)

func TestParseQuantityForms(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"", 0},
		{"0", 0},
		{"1000000000", 1_000_000_000},
		{"0x0", 0},
		{"0x10", 16},
		{"0X10", 16},
		{" 42 ", 42},
	}
	for _, tc := range cases {
		v, err := parseQuantity(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, v.Uint64(), tc.in)
	}
}

func TestParseQuantityRejectsGarbage(t *testing.T) {
	_, err := parseQuantity("not-a-number")
	assert.Error(t, err)
}

func TestBuildRequestDefaultsValueToZero(t *testing.T) {
	req, err := buildRequest(&domain.TxTemplate{
		To:   "0x10ed43c718714eb63d5aa57b78b54704e256024e",
		Data: "0xdeadbeef",
	})
	require.NoError(t, err)
	assert.True(t, req.Value.IsZero())
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, req.Data)
}

func TestBuildRequestWithoutTargetFails(t *testing.T) {
	_, err := buildRequest(&domain.TxTemplate{})
	assert.ErrorIs(t, err, common.ErrNoTransaction)

	_, err = buildRequest(nil)
	assert.ErrorIs(t, err, common.ErrNoTransaction)
}

func TestClassifyRevert(t *testing.T) {
	cases := []struct {
		msg  string
		want common.SimulationReason
	}{
		{"execution reverted: TransferHelper: TRANSFER_FROM_FAILED", common.ReasonMissingApproval},
		{"execution reverted: BEP20: transfer amount exceeds allowance", common.ReasonMissingApproval},
		{"insufficient funds for gas * price + value", common.ReasonInsufficientBalance},
		{"execution reverted: BEP20: transfer amount exceeds balance", common.ReasonInsufficientBalance},
		{"execution reverted: TransferHelper: TRANSFER_FAILED", common.ReasonInsufficientBalance},
		{"execution reverted", common.ReasonGenericRevert},
		{"something else entirely", common.ReasonGenericRevert},
	}
	for _, tc := range cases {
		got := classifyRevert(errors.New(tc.msg))
		assert.Equal(t, tc.want, got.Reason, tc.msg)
	}
}
