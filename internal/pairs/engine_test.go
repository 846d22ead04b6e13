package pairs

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/evm"
)

var (
	tokenA = "0x00000000000000000000000000000000000000aa"
	tokenB = "0x00000000000000000000000000000000000000bb"
	pool   = ethcommon.HexToAddress("0x00000000000000000000000000000000000000cc")

	testDex = DEX{
		ID:      "pancakeswap",
		ChainID: "56",
		Factory: "0x00000000000000000000000000000000000000f0",
		Router:  "0x00000000000000000000000000000000000000f1",
	}
)

// fakeCaller answers the three contract reads verification performs.
type fakeCaller struct {
	getPair    func(a, b ethcommon.Address) ethcommon.Address
	reserves   [2]*big.Int
	amountsOut func(amountIn *big.Int) ([]*big.Int, error)
}

func (f *fakeCaller) CodeAt(ctx context.Context, contract ethcommon.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	data := msg.Data
	switch {
	case bytes.HasPrefix(data, factoryABI.Methods["getPair"].ID):
		args, err := factoryABI.Methods["getPair"].Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		addr := f.getPair(args[0].(ethcommon.Address), args[1].(ethcommon.Address))
		return factoryABI.Methods["getPair"].Outputs.Pack(addr)

	case bytes.HasPrefix(data, pairABI.Methods["getReserves"].ID):
		return pairABI.Methods["getReserves"].Outputs.Pack(f.reserves[0], f.reserves[1], uint32(0))

	case bytes.HasPrefix(data, routerABI.Methods["getAmountsOut"].ID):
		args, err := routerABI.Methods["getAmountsOut"].Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		amounts, err := f.amountsOut(args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		return routerABI.Methods["getAmountsOut"].Outputs.Pack(amounts)
	}
	return nil, errors.New("unexpected call")
}

func verifierFor(f *fakeCaller, probes ...*big.Int) *Verifier {
	return NewVerifier(func(chainID domain.ChainID) (evm.Caller, error) {
		return f, nil
	}, probes...)
}

func quoteAll(f *fakeCaller) {
	f.amountsOut = func(in *big.Int) ([]*big.Int, error) {
		out := new(big.Int).Mul(in, big.NewInt(2))
		return []*big.Int{in, out}, nil
	}
}

func TestVerifyHappyPath(t *testing.T) {
	f := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address {
			return pool
		},
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
	}
	quoteAll(f)

	pair, err := verifierFor(f).Verify(context.Background(), testDex, tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, pool.Hex(), pair.PairAddress)
	assert.Equal(t, testDex.Router, pair.Router)
	assert.Equal(t, "pancakeswap", pair.DexID)
	require.NotNil(t, pair.OutputAmount)
	assert.Positive(t, pair.OutputAmount.Sign())
}

func TestVerifyRetriesSwappedTokenOrder(t *testing.T) {
	addrA := ethcommon.HexToAddress(tokenA)
	f := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address {
			// Only the swapped order resolves.
			if a == addrA {
				return ethcommon.Address{}
			}
			return pool
		},
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
	}
	quoteAll(f)

	pair, err := verifierFor(f).Verify(context.Background(), testDex, tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, pool.Hex(), pair.PairAddress)
}

func TestVerifyNoPoolInEitherOrder(t *testing.T) {
	f := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address {
			return ethcommon.Address{}
		},
	}

	_, err := verifierFor(f).Verify(context.Background(), testDex, tokenA, tokenB)
	assert.ErrorIs(t, err, common.ErrPairNotFound)
}

func TestVerifyDrainedReservesAreAbsent(t *testing.T) {
	f := &fakeCaller{
		getPair:  func(a, b ethcommon.Address) ethcommon.Address { return pool },
		reserves: [2]*big.Int{big.NewInt(0), big.NewInt(2000)},
	}

	_, err := verifierFor(f).Verify(context.Background(), testDex, tokenA, tokenB)
	assert.ErrorIs(t, err, common.ErrPairNotFound)
}

func TestVerifyEscalatesProbeAmounts(t *testing.T) {
	threshold := big.NewInt(1_000_000_000)
	var probed []*big.Int
	f := &fakeCaller{
		getPair:  func(a, b ethcommon.Address) ethcommon.Address { return pool },
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
		amountsOut: func(in *big.Int) ([]*big.Int, error) {
			probed = append(probed, in)
			if in.Cmp(threshold) < 0 {
				return nil, errors.New("execution reverted: PancakeLibrary: INSUFFICIENT_INPUT_AMOUNT")
			}
			return []*big.Int{in, big.NewInt(42)}, nil
		},
	}

	pair, err := verifierFor(f).Verify(context.Background(), testDex, tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, 0, pair.ProbeAmount.Cmp(threshold), "first succeeding rung is recorded as the probe")
	assert.Len(t, probed, 3, "1e3 and 1e6 revert before 1e9 succeeds")
}

func TestVerifyNonLiquidityRevertAborts(t *testing.T) {
	f := &fakeCaller{
		getPair:  func(a, b ethcommon.Address) ethcommon.Address { return pool },
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
		amountsOut: func(in *big.Int) ([]*big.Int, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := verifierFor(f).Verify(context.Background(), testDex, tokenA, tokenB)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrPairNotFound)
}

func TestVerifyCustomProbeLadder(t *testing.T) {
	var probed []*big.Int
	f := &fakeCaller{
		getPair:  func(a, b ethcommon.Address) ethcommon.Address { return pool },
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
		amountsOut: func(in *big.Int) ([]*big.Int, error) {
			probed = append(probed, in)
			return []*big.Int{in, big.NewInt(1)}, nil
		},
	}

	_, err := verifierFor(f, big.NewInt(777)).Verify(context.Background(), testDex, tokenA, tokenB)
	require.NoError(t, err)
	require.Len(t, probed, 1)
	assert.Equal(t, int64(777), probed[0].Int64())
}

func TestVerifyBatchKeepsSuccessesOnly(t *testing.T) {
	okCaller := &fakeCaller{
		getPair:  func(a, b ethcommon.Address) ethcommon.Address { return pool },
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
	}
	quoteAll(okCaller)

	missing := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address { return ethcommon.Address{} },
	}

	missDex := DEX{
		ID:      "biswap",
		ChainID: "56",
		Factory: "0x00000000000000000000000000000000000000f2",
		Router:  "0x00000000000000000000000000000000000000f3",
	}
	byFactory := map[ethcommon.Address]*fakeCaller{
		ethcommon.HexToAddress(testDex.Factory): okCaller,
		ethcommon.HexToAddress(missDex.Factory): missing,
	}
	v := NewVerifier(func(chainID domain.ChainID) (evm.Caller, error) {
		return &routedCaller{byFactory: byFactory, fallback: okCaller}, nil
	})

	jobs := []verifyJob{
		{dex: testDex, tokenA: tokenA, tokenB: tokenB},
		{dex: missDex, tokenA: tokenA, tokenB: tokenB},
	}
	verified := v.VerifyBatch(context.Background(), jobs)
	require.Len(t, verified, 1)
	assert.Equal(t, "pancakeswap", verified[0].DexID)
}

// routedCaller picks the fake by factory address; pair and router reads go
// to the fallback.
type routedCaller struct {
	byFactory map[ethcommon.Address]*fakeCaller
	fallback  *fakeCaller
}

func (r *routedCaller) CodeAt(ctx context.Context, contract ethcommon.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (r *routedCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if msg.To != nil {
		if f, ok := r.byFactory[*msg.To]; ok {
			return f.CallContract(ctx, msg, blockNumber)
		}
	}
	return r.fallback.CallContract(ctx, msg, blockNumber)
}
