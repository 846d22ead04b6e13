package pairs

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/evm"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
)

// CallerFn resolves the read-only RPC client for a chain.
type CallerFn func(chainID domain.ChainID) (evm.Caller, error)

// defaultProbeAmounts is the escalating ladder of router probe inputs, from
// dust up to one full 18-decimal unit. Small probes revert on thin pools,
// so the ladder climbs until the router produces a real quote.
func defaultProbeAmounts() []*big.Int {
	out := make([]*big.Int, 0, 6)
	for _, exp := range []int64{3, 6, 9, 12, 15, 18} {
		out = append(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil))
	}
	return out
}

// Verifier proves pairs on-chain: factory lookup for existence, reserve
// read for liveness, router simulation for tradability. Indexer data never
// substitutes for this proof.
type Verifier struct {
	callers CallerFn
	probes  []*big.Int
}

// NewVerifier builds a verifier. Passing no probe amounts selects the
// default escalation ladder.
func NewVerifier(callers CallerFn, probes ...*big.Int) *Verifier {
	if len(probes) == 0 {
		probes = defaultProbeAmounts()
	}
	return &Verifier{callers: callers, probes: probes}
}

// Verify confirms the (tokenA, tokenB) pool on one exchange. Returns
// common.ErrPairNotFound when the factory has no pool or its reserves are
// drained; returns the verified pair with its proof quote otherwise.
func (v *Verifier) Verify(ctx context.Context, dex DEX, tokenA, tokenB string) (*domain.VerifiedPair, error) {
	start := time.Now()
	pair, err := v.verify(ctx, dex, tokenA, tokenB)
	metrics.PairVerifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if err == common.ErrPairNotFound {
			outcome = "not_found"
		}
		metrics.PairVerifications.WithLabelValues(dex.ID, outcome).Inc()
		return nil, err
	}
	metrics.PairVerifications.WithLabelValues(dex.ID, "verified").Inc()
	return pair, nil
}

func (v *Verifier) verify(ctx context.Context, dex DEX, tokenA, tokenB string) (*domain.VerifiedPair, error) {
	caller, err := v.callers(dex.ChainID)
	if err != nil {
		return nil, err
	}

	a := ethcommon.HexToAddress(tokenA)
	b := ethcommon.HexToAddress(tokenB)

	pairAddr, err := v.factoryGetPair(ctx, caller, dex, a, b)
	if err != nil {
		return nil, err
	}
	if isZeroAddress(pairAddr) {
		// Some factories are sensitive to argument order.
		pairAddr, err = v.factoryGetPair(ctx, caller, dex, b, a)
		if err != nil {
			return nil, err
		}
	}
	if isZeroAddress(pairAddr) {
		return nil, common.ErrPairNotFound
	}

	reserve0, reserve1, err := v.pairReserves(ctx, caller, pairAddr)
	if err != nil {
		return nil, err
	}
	if reserve0.Sign() == 0 || reserve1.Sign() == 0 {
		// A pool with a drained side exists on-chain but cannot trade.
		return nil, common.ErrPairNotFound
	}

	output, probe, err := v.routerQuote(ctx, caller, dex, a, b)
	if err != nil {
		return nil, err
	}

	return &domain.VerifiedPair{
		ChainID:      dex.ChainID,
		DexID:        dex.ID,
		PairAddress:  pairAddr.Hex(),
		Router:       dex.Router,
		TokenA:       tokenA,
		TokenB:       tokenB,
		OutputAmount: output,
		ProbeAmount:  probe,
		VerifiedAt:   time.Now(),
	}, nil
}

func (v *Verifier) factoryGetPair(ctx context.Context, caller evm.Caller, dex DEX, a, b ethcommon.Address) (ethcommon.Address, error) {
	contract := bind.NewBoundContract(ethcommon.HexToAddress(dex.Factory), factoryABI, caller, nil, nil)
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "getPair", a, b); err != nil {
		return ethcommon.Address{}, err
	}
	return *abi.ConvertType(out[0], new(ethcommon.Address)).(*ethcommon.Address), nil
}

func (v *Verifier) pairReserves(ctx context.Context, caller evm.Caller, pairAddr ethcommon.Address) (*big.Int, *big.Int, error) {
	contract := bind.NewBoundContract(pairAddr, pairABI, caller, nil, nil)
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "getReserves"); err != nil {
		return nil, nil, err
	}
	reserve0 := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	reserve1 := abi.ConvertType(out[1], new(big.Int)).(*big.Int)
	return reserve0, reserve1, nil
}

// routerQuote walks the probe ladder until the router returns a positive
// output. Liquidity reverts advance the ladder; anything else aborts.
func (v *Verifier) routerQuote(ctx context.Context, caller evm.Caller, dex DEX, a, b ethcommon.Address) (*big.Int, *big.Int, error) {
	contract := bind.NewBoundContract(ethcommon.HexToAddress(dex.Router), routerABI, caller, nil, nil)
	path := []ethcommon.Address{a, b}

	var lastErr error
	for _, probe := range v.probes {
		var out []interface{}
		err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAmountsOut", probe, path)
		if err != nil {
			if !isLiquidityRevert(err) {
				return nil, nil, err
			}
			lastErr = err
			continue
		}
		amounts := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
		if len(amounts) == 0 {
			continue
		}
		final := amounts[len(amounts)-1]
		if final.Sign() > 0 {
			return final, probe, nil
		}
	}

	log.Debug().Err(lastErr).Str("dex", dex.ID).Msg("[pairVerifier] probe ladder exhausted")
	return nil, nil, common.ErrPairNotFound
}

// isLiquidityRevert recognizes the revert strings V2 routers and their
// math libraries emit when a probe amount is too small or the pool too thin.
func isLiquidityRevert(err error) bool {
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "INSUFFICIENT_LIQUIDITY") ||
		strings.Contains(msg, "INSUFFICIENT_INPUT_AMOUNT") ||
		strings.Contains(msg, "INSUFFICIENT_OUTPUT_AMOUNT") ||
		strings.Contains(msg, "DS-MATH")
}

func isZeroAddress(addr ethcommon.Address) bool {
	return addr == (ethcommon.Address{})
}

// verifyJob is one (exchange, counterparty) combination in a batch.
type verifyJob struct {
	dex     DEX
	tokenA  string
	tokenB  string
}

// VerifyBatch runs the jobs concurrently and returns every pair that
// verified. Individual failures are dropped; batch discovery is best-effort
// by construction.
func (v *Verifier) VerifyBatch(ctx context.Context, jobs []verifyJob) []*domain.VerifiedPair {
	results := make([]*domain.VerifiedPair, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job verifyJob) {
			defer wg.Done()
			pair, err := v.Verify(ctx, job.dex, job.tokenA, job.tokenB)
			if err != nil {
				if err != common.ErrPairNotFound {
					log.Debug().Err(err).
						Str("dex", job.dex.ID).
						Str("tokenA", job.tokenA).
						Str("tokenB", job.tokenB).
						Msg("[pairVerifier] batch job failed")
				}
				return
			}
			results[i] = pair
		}(i, job)
	}
	wg.Wait()

	out := make([]*domain.VerifiedPair, 0, len(jobs))
	for _, p := range results {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
