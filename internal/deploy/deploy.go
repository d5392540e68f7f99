// Package deploy sequences the mainnet and DAppChain contract deployments and
// hands the gateway address from one stage to the other.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/Mohsinsiddi/springbridge/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidInput is returned when stage input fails validation. No chain call is made.
var ErrInvalidInput = errors.New("invalid deployment input")

// Network labels recorded with each artifact.
const (
	NetworkMainnet   = "mainnet"
	NetworkDappChain = "dappchain"
)

// MainnetChain is what the mainnet stage needs from the network.
type MainnetChain interface {
	ChainID() uint64
	HasCode(ctx context.Context, addr common.Address) (bool, error)
	DeployGateway(ctx context.Context, validators []common.Address, num, den *big.Int) (chain.Deployment, error)
	DeployToken(ctx context.Context, maxSupply *big.Int, gateway common.Address) (chain.Deployment, error)
	ToggleToken(ctx context.Context, gateway, token, validator common.Address) (common.Hash, error)
	MintToken(ctx context.Context, token common.Address, amount *big.Int) (common.Hash, error)
	Transfer(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error)
}

// DappChainChain is what the DAppChain stage needs from the network.
type DappChainChain interface {
	ChainID() uint64
	HasCode(ctx context.Context, addr common.Address) (bool, error)
	DeployToken(ctx context.Context, maxSupply *big.Int, gateway common.Address) (chain.Deployment, error)
}

var (
	_ MainnetChain   = (*chain.Mainnet)(nil)
	_ DappChainChain = (*chain.DappChain)(nil)
)

// Sequencer runs deployment stages and records their artifacts.
type Sequencer struct {
	store  *artifact.Store
	reuse  bool
	logger *slog.Logger
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithReuse skips a stage whose artifacts are recorded for the same chain and
// still have code on chain.
func WithReuse(reuse bool) Option {
	return func(s *Sequencer) {
		s.reuse = reuse
	}
}

// NewSequencer creates a Sequencer writing to store.
func NewSequencer(store *artifact.Store, opts ...Option) *Sequencer {
	s := &Sequencer{
		store:  store,
		logger: logger.Named("deploy"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// reusable returns the address recorded under name when it was written for chainID
// and code is still deployed there.
func (s *Sequencer) reusable(ctx context.Context, c interface {
	HasCode(context.Context, common.Address) (bool, error)
}, chainID uint64, name string) (artifact.Record, bool, error) {
	rec, err := s.store.Get(name)
	if errors.Is(err, artifact.ErrNotFound) {
		return artifact.Record{}, false, nil
	}
	if err != nil {
		return artifact.Record{}, false, err
	}
	if rec.ChainID != chainID {
		s.logger.Info("recorded artifact belongs to another chain", "artifact", name, "recorded_chain_id", rec.ChainID)
		return rec, false, nil
	}
	if rec.Kind != artifact.KindAddress {
		return rec, true, nil
	}
	addr, err := rec.Address()
	if err != nil {
		return rec, false, err
	}
	ok, err := c.HasCode(ctx, addr)
	if err != nil {
		return rec, false, fmt.Errorf("checking code at %s: %w", addr.Hex(), err)
	}
	if !ok {
		s.logger.Info("recorded contract has no code", "artifact", name, "address", addr.Hex())
	}
	return rec, ok, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
