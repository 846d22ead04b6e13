package config

import (
	"errors"
	"os"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
)

// RPCConfig holds the JSON-RPC endpoints for every supported chain.
//
// EVM endpoints load from EVM_RPC_URLS as a comma-separated list of
// chainId=url entries, e.g.
//
//	EVM_RPC_URLS=56=https://bsc.example,1=https://eth.example
type RPCConfig struct {
	EVMEndpoints map[string]string
	SolanaRPCUrl string
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.EVMEndpoints = make(map[string]string)
	for _, entry := range strings.Split(os.Getenv("EVM_RPC_URLS"), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		chainID, url, ok := strings.Cut(entry, "=")
		if !ok || chainID == "" || url == "" {
			return errors.New("malformed EVM_RPC_URLS entry: " + entry)
		}
		r.EVMEndpoints[chainID] = url
	}
	r.SolanaRPCUrl = common.GetEnvOrDefault("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	return nil
}

func (r *RPCConfig) Validate() error {
	if len(r.EVMEndpoints) == 0 {
		return errors.New("invalid rpc config: no EVM endpoints configured")
	}
	if r.SolanaRPCUrl == "" {
		return errors.New("invalid rpc config: no Solana endpoint configured")
	}
	return nil
}
