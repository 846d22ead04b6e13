package pairs

import (
	"context"
	"math/big"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/evm"
)

func newTestService(t *testing.T, f *fakeCaller) *Service {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "pairs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &Service{
		chains: domain.NewChainRegistry(domain.DefaultChains()),
		dexes:  NewDEXRegistry(DefaultDEXes()),
		verifier: NewVerifier(func(chainID domain.ChainID) (evm.Caller, error) {
			return f, nil
		}),
		store:       store,
		reverifyAge: time.Hour,
	}
}

func TestDiscoverPairsReverifiesStaleEntries(t *testing.T) {
	var factoryCalls atomic.Int32
	f := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address {
			factoryCalls.Add(1)
			return pool
		},
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
	}
	quoteAll(f)
	svc := newTestService(t, f)

	chain, _ := svc.chains.Get("56")
	stale := &domain.VerifiedPair{
		ChainID:      "56",
		DexID:        "pancakeswap",
		PairAddress:  pool.Hex(),
		TokenA:       tokenA,
		TokenB:       chain.WrappedNative,
		OutputAmount: big.NewInt(1),
		VerifiedAt:   time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, svc.store.Save(stale))

	verified, _, err := svc.DiscoverPairsForToken(context.Background(), "56", tokenA, "TKA")
	require.NoError(t, err)
	require.NotEmpty(t, verified)
	// Every returned proof is recent; the stale entry was re-proven on-chain.
	assert.Positive(t, factoryCalls.Load())
	for _, pair := range verified {
		assert.WithinDuration(t, time.Now(), pair.VerifiedAt, time.Minute)
	}
}

func TestVerifyPairProvesAndPersists(t *testing.T) {
	factoryCalls := 0
	f := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address {
			factoryCalls++
			return pool
		},
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
	}
	quoteAll(f)
	svc := newTestService(t, f)

	pair, err := svc.VerifyPair(context.Background(), "56", "pancakeswap", tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, pool.Hex(), pair.PairAddress)
	assert.Positive(t, pair.OutputAmount.Sign())
	require.Equal(t, 1, factoryCalls)

	// The second call is answered from the warm store without touching
	// the chain, regardless of token order.
	again, err := svc.VerifyPair(context.Background(), "56", "pancakeswap", tokenB, tokenA)
	require.NoError(t, err)
	assert.Equal(t, pair.PairAddress, again.PairAddress)
	assert.Equal(t, 1, factoryCalls)
}

func TestVerifyPairReverifiesStaleEntry(t *testing.T) {
	factoryCalls := 0
	f := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address {
			factoryCalls++
			return pool
		},
		reserves: [2]*big.Int{big.NewInt(1000), big.NewInt(2000)},
	}
	quoteAll(f)
	svc := newTestService(t, f)

	// A verification older than the re-verify age no longer stands in for
	// the on-chain proof.
	stale := &domain.VerifiedPair{
		ChainID:      "56",
		DexID:        "pancakeswap",
		PairAddress:  pool.Hex(),
		TokenA:       tokenA,
		TokenB:       tokenB,
		OutputAmount: big.NewInt(1),
		VerifiedAt:   time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, svc.store.Save(stale))

	pair, err := svc.VerifyPair(context.Background(), "56", "pancakeswap", tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, 1, factoryCalls)
	assert.WithinDuration(t, time.Now(), pair.VerifiedAt, time.Minute)

	// The refreshed proof replaced the stale entry, so the warm store
	// answers again.
	_, err = svc.VerifyPair(context.Background(), "56", "pancakeswap", tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, 1, factoryCalls)
}

func TestVerifyPairAbsentPool(t *testing.T) {
	f := &fakeCaller{
		getPair: func(a, b ethcommon.Address) ethcommon.Address {
			return ethcommon.Address{}
		},
	}
	svc := newTestService(t, f)

	_, err := svc.VerifyPair(context.Background(), "56", "pancakeswap", tokenA, tokenB)
	assert.ErrorIs(t, err, common.ErrPairNotFound)
}

func TestVerifyPairUnknownExchange(t *testing.T) {
	svc := newTestService(t, &fakeCaller{})

	_, err := svc.VerifyPair(context.Background(), "56", "no-such-dex", tokenA, tokenB)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrPairNotFound)
}

func TestVerifyPairUnsupportedChain(t *testing.T) {
	svc := newTestService(t, &fakeCaller{})

	var unsupported *common.UnsupportedChainError
	_, err := svc.VerifyPair(context.Background(), "999999", "pancakeswap", tokenA, tokenB)
	require.ErrorAs(t, err, &unsupported)

	_, err = svc.VerifyPair(context.Background(), domain.ChainSolana, "pancakeswap", tokenA, tokenB)
	require.ErrorAs(t, err, &unsupported)
}
