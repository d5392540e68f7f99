package deploy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// DappChainInput configures the DAppChain stage.
type DappChainInput struct {
	GatewayAddress common.Address
	MaxSupply      *big.Int
}

// Validate checks the input before any chain call.
func (in DappChainInput) Validate() error {
	if in.GatewayAddress == (common.Address{}) {
		return invalid("gateway address is required")
	}
	if !positive(in.MaxSupply) {
		return invalid("max supply must be positive")
	}
	return nil
}

// DappChainOutput is the result of the DAppChain stage.
type DappChainOutput struct {
	ChainID uint64
	Gateway common.Address
	Token   chain.Deployment
	Reused  bool
}

// ResolveGateway reads the gateway address artifact named name. A missing or
// malformed artifact yields artifact.ErrNotFound or artifact.ErrInvalid.
func ResolveGateway(store *artifact.Store, name string) (common.Address, error) {
	addr, err := store.Address(name)
	if err != nil {
		return common.Address{}, fmt.Errorf("resolve gateway: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("resolve gateway: %w: %s holds the zero address", artifact.ErrInvalid, name)
	}
	return addr, nil
}

// DappChainFromArtifact resolves the gateway from the artifact named name and then
// runs the DAppChain stage. Nothing is deployed or written if resolution fails.
func (s *Sequencer) DappChainFromArtifact(ctx context.Context, c DappChainChain, name string, maxSupply *big.Int) (*DappChainOutput, error) {
	gateway, err := ResolveGateway(s.store, name)
	if err != nil {
		return nil, err
	}
	return s.DappChain(ctx, c, DappChainInput{GatewayAddress: gateway, MaxSupply: maxSupply})
}

// DappChain deploys the mirrored token against in.GatewayAddress and records
// game_token_dappchain_address.
func (s *Sequencer) DappChain(ctx context.Context, c DappChainChain, in DappChainInput) (*DappChainOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	chainID := c.ChainID()
	log := s.logger.With("network", NetworkDappChain, "chain_id", chainID)

	if s.reuse {
		rec, ok, err := s.reusable(ctx, c, chainID, artifact.DappChainTokenAddress)
		if err != nil {
			return nil, fmt.Errorf("reuse check: %w", err)
		}
		if ok {
			addr := common.HexToAddress(rec.Value)
			log.Info("reusing recorded dappchain token", "token", addr.Hex())
			return &DappChainOutput{
				ChainID: chainID,
				Gateway: in.GatewayAddress,
				Token:   chain.Deployment{Address: addr},
				Reused:  true,
			}, nil
		}
	}

	log.Info("deploying dappchain token", "gateway", in.GatewayAddress.Hex(), "max_supply", in.MaxSupply)
	tok, err := c.DeployToken(ctx, in.MaxSupply, in.GatewayAddress)
	if err != nil {
		return nil, fmt.Errorf("deploy dappchain token: %w", err)
	}
	log.Info("dappchain token deployed", "address", tok.Address.Hex(), "tx_hash", tok.TxHash.Hex())

	err = s.store.Put(artifact.AddressRecord(artifact.DappChainTokenAddress, tok.Address, NetworkDappChain, chainID))
	if err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}
	return &DappChainOutput{ChainID: chainID, Gateway: in.GatewayAddress, Token: tok}, nil
}
