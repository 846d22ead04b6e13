package evm

import (
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/omniswap-engine/internal/config"
)

const EVM_CLIENT_SERVICE = "evm-client-service"

// Service exposes the shared client registry through the DI container so
// pair verification and swap execution dial each chain once.
type Service struct {
	container.BaseDIInstance
	registry *ClientRegistry
}

func (svc *Service) ID() string {
	return EVM_CLIENT_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	rpcCfg := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	svc.registry = NewClientRegistry(rpcCfg.EVMEndpoints)
	return nil
}

func (svc *Service) Start() error {
	return nil
}

func (svc *Service) Stop() error {
	svc.registry.Close()
	return nil
}

func (svc *Service) Registry() *ClientRegistry {
	return svc.registry
}
