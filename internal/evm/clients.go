// Package evm owns the JSON-RPC client registry shared by pair discovery
// and swap execution.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/domain"
)

// Caller is the read-only surface pair verification needs. *ethclient.Client
// satisfies it; tests substitute a fake.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, contract ethcommon.Address, blockNumber *big.Int) ([]byte, error)
}

// TxReader is the surface swap execution needs for simulation and
// confirmation polling.
type TxReader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
}

// ClientRegistry lazily dials one client per configured EVM chain and
// caches it for the process lifetime.
type ClientRegistry struct {
	mu        sync.Mutex
	endpoints map[domain.ChainID]string
	clients   map[domain.ChainID]*ethclient.Client
}

func NewClientRegistry(endpoints map[string]string) *ClientRegistry {
	eps := make(map[domain.ChainID]string, len(endpoints))
	for k, v := range endpoints {
		eps[domain.ChainID(k)] = v
	}
	return &ClientRegistry{
		endpoints: eps,
		clients:   make(map[domain.ChainID]*ethclient.Client, len(eps)),
	}
}

// Client returns the cached client for chainID, dialing on first use.
func (r *ClientRegistry) Client(chainID domain.ChainID) (*ethclient.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[chainID]; ok {
		return c, nil
	}
	endpoint, ok := r.endpoints[chainID]
	if !ok {
		return nil, &common.UnsupportedChainError{ChainID: string(chainID)}
	}
	c, err := ethclient.Dial(endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial chain %s: %w", chainID, err)
	}
	log.Info().Str("chain", string(chainID)).Msg("[evmClients] dialed rpc endpoint")
	r.clients[chainID] = c
	return c, nil
}

// Chains lists every chain the registry has an endpoint for.
func (r *ClientRegistry) Chains() []domain.ChainID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ChainID, 0, len(r.endpoints))
	for cid := range r.endpoints {
		out = append(out, cid)
	}
	return out
}

func (r *ClientRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.Close()
	}
	r.clients = make(map[domain.ChainID]*ethclient.Client)
}
