// Package executor runs quoted routes step by step through injected
// wallets. Steps are strictly sequential: each one depends on the
// previous step's confirmed on-chain state.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/omniswap-engine/internal/aggregator"
	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/config"
	"github.com/hxuan190/omniswap-engine/internal/domain"
	"github.com/hxuan190/omniswap-engine/internal/evm"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
)

const EXECUTOR_SERVICE = "executor-service"

// StepTxSource builds a transaction for a step that arrived without one,
// typically by re-requesting it from the quoting API at execution time.
type StepTxSource interface {
	BuildStepTx(ctx context.Context, step *domain.Step, account string) (*domain.TxTemplate, error)
}

type StepStatus string

const (
	StepConfirmed StepStatus = "confirmed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// StepResult records the outcome of one step or sub-step.
type StepResult struct {
	StepID  string          `json:"stepId"`
	Kind    domain.StepKind `json:"kind"`
	ChainID domain.ChainID  `json:"chainId"`
	TxHash  string          `json:"txHash,omitempty"`
	Status  StepStatus      `json:"status"`
	Error   string          `json:"error,omitempty"`
}

// ExecutionResult is the full outcome of one route execution. Partial
// progress is preserved: steps confirmed before a failure stay recorded.
type ExecutionResult struct {
	RouteID   string       `json:"routeId"`
	Completed bool         `json:"completed"`
	Steps     []StepResult `json:"steps"`
}

type Service struct {
	container.BaseDIInstance
	logger *common.ServiceLogger

	config  *config.ExecutorConfig
	chains  *domain.ChainRegistry
	wallets *WalletRegistry

	evmRunner    *evmRunner
	solanaRunner *solanaRunner
	txSource     StepTxSource
}

func (svc *Service) ID() string {
	return EXECUTOR_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = common.NewServiceLogger(svc)
	svc.config = c.GetConfig(config.EXECUTOR_CONFIG_KEY).(*config.ExecutorConfig)
	rpcCfg := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)

	aggSvc := c.Instance(aggregator.AGGREGATOR_SERVICE).(*aggregator.Service)
	evmSvc := c.Instance(evm.EVM_CLIENT_SERVICE).(*evm.Service)

	svc.chains = aggSvc.Chains()
	svc.wallets = NewWalletRegistry()

	poll := time.Duration(svc.config.ConfirmPollIntervalMs) * time.Millisecond
	svc.evmRunner = &evmRunner{
		readers: func(chainID domain.ChainID) (evm.TxReader, error) {
			return evmSvc.Registry().Client(chainID)
		},
		confirmTimeout: time.Duration(svc.config.EVMConfirmTimeoutMs) * time.Millisecond,
		pollInterval:   poll,
	}
	svc.solanaRunner = &solanaRunner{
		client:         rpc.New(rpcCfg.SolanaRPCUrl),
		confirmTimeout: time.Duration(svc.config.SolanaConfirmTimeoutMs) * time.Millisecond,
		pollInterval:   poll,
	}
	return nil
}

func (svc *Service) Start() error {
	return nil
}

func (svc *Service) Stop() error {
	return nil
}

func (svc *Service) Wallets() *WalletRegistry {
	return svc.wallets
}

// SetTxSource installs the builder for steps that arrive without a
// transaction template.
func (svc *Service) SetTxSource(src StepTxSource) {
	svc.txSource = src
}

// ExecuteRoute runs every step of the route in order through the wallet
// registered for account. Execution stops at the first failure; the result
// keeps everything confirmed up to that point.
func (svc *Service) ExecuteRoute(ctx context.Context, route *domain.Route, account string) (*ExecutionResult, error) {
	if route == nil || len(route.Steps) == 0 {
		return nil, fmt.Errorf("route has no steps")
	}
	if route.Expired(time.Now()) {
		metrics.SwapRoutes.WithLabelValues("expired").Inc()
		return nil, common.ErrQuoteExpired
	}
	wallet, ok := svc.wallets.Get(account)
	if !ok {
		return nil, fmt.Errorf("no wallet registered for account %s", account)
	}

	result := &ExecutionResult{RouteID: route.ID}
	for i := range route.Steps {
		step := &route.Steps[i]

		for j := range step.SubSteps {
			sub := &step.SubSteps[j]
			subResult := svc.executeStep(ctx, wallet, account, sub)
			result.Steps = append(result.Steps, subResult)
			if subResult.Status == StepFailed {
				metrics.SwapRoutes.WithLabelValues("failed").Inc()
				return result, fmt.Errorf("sub-step %s failed: %s", sub.ID, subResult.Error)
			}
			if subResult.Status == StepConfirmed && sub.Kind == domain.StepApprove {
				// Approvals need a settle window before the dependent swap
				// simulates against updated allowance state.
				svc.settle(ctx)
			}
		}

		stepResult := svc.executeStep(ctx, wallet, account, step)
		result.Steps = append(result.Steps, stepResult)
		if stepResult.Status == StepFailed {
			metrics.SwapRoutes.WithLabelValues("failed").Inc()
			return result, fmt.Errorf("step %s failed: %s", step.ID, stepResult.Error)
		}
	}

	result.Completed = true
	metrics.SwapRoutes.WithLabelValues("completed").Inc()
	return result, nil
}

func (svc *Service) executeStep(ctx context.Context, wallet Wallet, account string, step *domain.Step) StepResult {
	res := StepResult{StepID: step.ID, Kind: step.Kind, ChainID: step.ChainID}
	family := step.Family()

	if step.Tx == nil {
		if !step.Kind.Executable() {
			res.Status = StepSkipped
			metrics.SwapSteps.WithLabelValues(family.String(), "skipped").Inc()
			return res
		}
		if svc.txSource == nil {
			return svc.fail(res, family, common.ErrNoTransaction)
		}
		tpl, err := svc.txSource.BuildStepTx(ctx, step, account)
		if err != nil {
			return svc.fail(res, family, err)
		}
		step.Tx = tpl
	}

	var txHash string
	var err error
	switch family {
	case domain.FamilyEVM:
		evmWallet, ok := wallet.(EVMWallet)
		if !ok {
			return svc.fail(res, family, fmt.Errorf("wallet %s cannot sign evm transactions", account))
		}
		chain, ok := svc.chains.Get(step.ChainID)
		if !ok {
			return svc.fail(res, family, &common.UnsupportedChainError{ChainID: string(step.ChainID)})
		}
		txHash, err = svc.evmRunner.Run(ctx, evmWallet, chain, step)

	case domain.FamilySolana:
		solWallet, ok := wallet.(SolanaWallet)
		if !ok {
			return svc.fail(res, family, fmt.Errorf("wallet %s cannot sign solana transactions", account))
		}
		txHash, err = svc.solanaRunner.Run(ctx, solWallet, step)

	default:
		return svc.fail(res, family, fmt.Errorf("unsupported execution family %s", family))
	}

	res.TxHash = txHash
	if err != nil {
		return svc.fail(res, family, err)
	}

	res.Status = StepConfirmed
	metrics.SwapSteps.WithLabelValues(family.String(), "confirmed").Inc()
	log.Info().
		Str("step", step.ID).
		Str("kind", string(step.Kind)).
		Str("tx", txHash).
		Msg("[executorService] step confirmed")
	return res
}

func (svc *Service) fail(res StepResult, family domain.ExecutionFamily, err error) StepResult {
	res.Status = StepFailed
	res.Error = err.Error()
	metrics.SwapSteps.WithLabelValues(family.String(), "failed").Inc()
	return res
}

func (svc *Service) settle(ctx context.Context) {
	delay := time.Duration(svc.config.ApprovalSettleDelayMs) * time.Millisecond
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
