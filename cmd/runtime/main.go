package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/omniswap-engine/internal/aggregator"
	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/config"
	"github.com/hxuan190/omniswap-engine/internal/evm"
	"github.com/hxuan190/omniswap-engine/internal/executor"
	"github.com/hxuan190/omniswap-engine/internal/http"
	"github.com/hxuan190/omniswap-engine/internal/pairs"
)

// @title OmniSwap Engine API
// @version 1.0-beta
// @description Cross-chain token discovery and swap execution engine.
// @description
// @description ## - Features
// @description - **Multi-Provider Token Search**: Merged, deduplicated tokens from routing, indexer and portfolio sources
// @description - **Balanced Mixing**: Per-chain caps keep all-networks results representative
// @description - **Proven Pair Discovery**: Factory lookup plus router simulation, never indexer data alone
// @description - **Sequential Swap Execution**: EVM and Solana routes through injected wallets
// @description - **Credential Rotation**: Quota-limited provider keys rotate transparently
// @description
// @description ## - API Status
// @description - **Version**: 1.0-beta
// @description - **Rate Limit**: 10 requests/second (burst: 20)
// @BasePath /
// @schemes https http
// @tag.name tokens
// @tag.description Search and discover token metadata across chains
// @tag.name pairs
// @tag.description Discover and verify DEX pools for a token
// @tag.name swap
// @tag.description Execute quoted routes through registered wallets

func main() {
	common.InitRuntime()

	// load env
	err := godotenv.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load env")
		return
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.RPCConfig{},
		&config.ProvidersConfig{},
		&config.AggregatorConfig{},
		&config.ExecutorConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&evm.Service{},
		&aggregator.Service{},
		&pairs.Service{},
		&executor.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
