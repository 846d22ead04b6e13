package executor

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/omniswap-engine/internal/domain"
)

// EVMTxRequest is a fully normalized transaction handed to a wallet for
// signing and submission. Numeric fields are already parsed; the wallet
// never sees the loose string forms.
type EVMTxRequest struct {
	To       string
	Data     []byte
	Value    *uint256.Int
	GasLimit uint64
	GasPrice *uint256.Int
}

// Wallet is an injected signing capability addressed by account. The engine
// never holds private keys; signing happens wherever the wallet lives.
type Wallet interface {
	Address() string
}

// EVMWallet signs and submits EVM transactions and manages which chain the
// wallet session is connected to.
type EVMWallet interface {
	Wallet

	// ChainID reports the chain the wallet session is currently on.
	ChainID(ctx context.Context) (domain.ChainID, error)
	// SwitchChain moves the session to chainID. Wallets reject chains they
	// do not know about.
	SwitchChain(ctx context.Context, chainID domain.ChainID) error
	// AddChain registers a chain with the wallet so a follow-up switch can
	// succeed.
	AddChain(ctx context.Context, chain domain.Chain) error
	// SendTransaction signs and broadcasts, returning the transaction hash.
	SendTransaction(ctx context.Context, chainID domain.ChainID, tx *EVMTxRequest) (string, error)
}

// SolanaWallet signs Solana transactions in the wallet's custody.
type SolanaWallet interface {
	Wallet

	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// WalletRegistry maps account addresses to injected wallets so transport
// layers can reference a wallet without carrying the capability itself.
type WalletRegistry struct {
	mu      sync.RWMutex
	wallets map[string]Wallet
}

func NewWalletRegistry() *WalletRegistry {
	return &WalletRegistry{wallets: make(map[string]Wallet)}
}

func (r *WalletRegistry) Register(w Wallet) {
	r.mu.Lock()
	r.wallets[w.Address()] = w
	r.mu.Unlock()
}

func (r *WalletRegistry) Unregister(address string) {
	r.mu.Lock()
	delete(r.wallets, address)
	r.mu.Unlock()
}

func (r *WalletRegistry) Get(address string) (Wallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[address]
	return w, ok
}
