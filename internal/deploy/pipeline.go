package deploy

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/ethereum/go-ethereum/common"
)

// GatewaySource selects where the DAppChain stage takes its gateway address from.
type GatewaySource string

const (
	FromArtifact GatewaySource = "artifact"
	FromMainnet  GatewaySource = "mainnet"
)

// AllInput configures a combined run.
type AllInput struct {
	Mainnet         MainnetInput
	GatewaySource   GatewaySource
	GatewayArtifact string
}

// AllOutput is the result of a combined run.
type AllOutput struct {
	Mainnet   *MainnetOutput
	DappChain *DappChainOutput
}

// All runs the mainnet stage and then the DAppChain stage in one process. With
// FromMainnet the gateway address is passed directly; with FromArtifact it is read
// from the store. An artifact the mainnet stage writes is read after that stage,
// any other one before it.
func (s *Sequencer) All(ctx context.Context, m MainnetChain, d DappChainChain, in AllInput) (*AllOutput, error) {
	switch in.GatewaySource {
	case FromMainnet, FromArtifact:
	default:
		return nil, invalid("unknown gateway source %q", in.GatewaySource)
	}
	if err := in.Mainnet.Validate(); err != nil {
		return nil, err
	}

	// An artifact the mainnet stage does not produce must exist before anything
	// is deployed.
	var (
		gateway  common.Address
		resolved bool
	)
	if in.GatewaySource == FromArtifact && !writtenByMainnet(in.GatewayArtifact) {
		addr, err := ResolveGateway(s.store, in.GatewayArtifact)
		if err != nil {
			return nil, fmt.Errorf("dappchain stage: %w", err)
		}
		gateway, resolved = addr, true
	}

	mOut, err := s.Mainnet(ctx, m, in.Mainnet)
	if err != nil {
		return nil, fmt.Errorf("mainnet stage: %w", err)
	}

	switch {
	case in.GatewaySource == FromMainnet:
		gateway = mOut.GatewayAddress()
	case !resolved:
		gateway, err = ResolveGateway(s.store, in.GatewayArtifact)
		if err != nil {
			return nil, fmt.Errorf("dappchain stage: %w", err)
		}
	}

	// A fresh mainnet gateway invalidates any recorded DAppChain token.
	stage := s
	if s.reuse && !mOut.Reused {
		stage = &Sequencer{store: s.store, logger: s.logger}
	}

	dOut, err := stage.DappChain(ctx, d, DappChainInput{GatewayAddress: gateway, MaxSupply: in.Mainnet.MaxSupply})
	if err != nil {
		return nil, fmt.Errorf("dappchain stage: %w", err)
	}
	return &AllOutput{Mainnet: mOut, DappChain: dOut}, nil
}

func writtenByMainnet(name string) bool {
	return name == artifact.GatewayAddress || name == artifact.TokenAddress
}
