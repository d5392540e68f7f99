package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// MainnetInput configures the mainnet stage.
type MainnetInput struct {
	Validators     []common.Address
	Validator      common.Address // sends toggleToken; must be in Validators
	ThresholdNum   *big.Int
	ThresholdDen   *big.Int
	MaxSupply      *big.Int
	MintAmount     *big.Int
	TransferAmount *big.Int
	TestUser       common.Address
}

// Validate checks the input before any chain call.
func (in MainnetInput) Validate() error {
	var errs []error
	if len(in.Validators) == 0 {
		errs = append(errs, invalid("validator set is empty"))
	}
	if slices.Contains(in.Validators, common.Address{}) {
		errs = append(errs, invalid("validator set contains the zero address"))
	}
	if !slices.Contains(in.Validators, in.Validator) {
		errs = append(errs, invalid("toggle validator %s is not in the validator set", in.Validator.Hex()))
	}
	if !positive(in.ThresholdNum) || !positive(in.ThresholdDen) || in.ThresholdNum.Cmp(in.ThresholdDen) > 0 {
		errs = append(errs, invalid("threshold %s/%s must satisfy 0 < num <= den", in.ThresholdNum, in.ThresholdDen))
	}
	if !positive(in.MaxSupply) {
		errs = append(errs, invalid("max supply must be positive"))
	}
	if !positive(in.MintAmount) {
		errs = append(errs, invalid("mint amount must be positive"))
	} else if positive(in.MaxSupply) && in.MintAmount.Cmp(in.MaxSupply) > 0 {
		errs = append(errs, invalid("mint amount %s exceeds max supply %s", in.MintAmount, in.MaxSupply))
	}
	if in.TransferAmount == nil || in.TransferAmount.Sign() < 0 {
		errs = append(errs, invalid("transfer amount must not be negative"))
	} else if positive(in.MintAmount) && in.TransferAmount.Cmp(in.MintAmount) > 0 {
		errs = append(errs, invalid("transfer amount %s exceeds mint amount %s", in.TransferAmount, in.MintAmount))
	}
	if in.TestUser == (common.Address{}) {
		errs = append(errs, invalid("test user address is required"))
	}
	return errors.Join(errs...)
}

// MainnetOutput is the result of the mainnet stage.
type MainnetOutput struct {
	ChainID    uint64
	Gateway    chain.Deployment
	Token      chain.Deployment
	ToggleTx   common.Hash
	MintTx     common.Hash
	TransferTx common.Hash
	Reused     bool
}

// GatewayAddress is the value handed to the DAppChain stage.
func (o *MainnetOutput) GatewayAddress() common.Address {
	return o.Gateway.Address
}

// Mainnet deploys the gateway and token, registers the token with the gateway, mints,
// funds the test user, and records gateway_address, game_token_address and
// game_token_tx_hash. Steps run in order; the first failure stops the stage and
// nothing is rolled back.
func (s *Sequencer) Mainnet(ctx context.Context, c MainnetChain, in MainnetInput) (*MainnetOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	chainID := c.ChainID()
	log := s.logger.With("network", NetworkMainnet, "chain_id", chainID)

	if s.reuse {
		out, ok, err := s.reuseMainnet(ctx, c, chainID)
		if err != nil {
			return nil, fmt.Errorf("reuse check: %w", err)
		}
		if ok {
			log.Info("reusing recorded mainnet deployment", "gateway", out.Gateway.Address.Hex(), "token", out.Token.Address.Hex())
			return out, nil
		}
	}

	out := &MainnetOutput{ChainID: chainID}
	var err error

	log.Info("deploying gateway", "validators", len(in.Validators), "threshold", fmt.Sprintf("%s/%s", in.ThresholdNum, in.ThresholdDen))
	out.Gateway, err = c.DeployGateway(ctx, in.Validators, in.ThresholdNum, in.ThresholdDen)
	if err != nil {
		return nil, fmt.Errorf("deploy gateway: %w", err)
	}
	log.Info("gateway deployed", "address", out.Gateway.Address.Hex())

	log.Info("deploying token", "max_supply", in.MaxSupply)
	out.Token, err = c.DeployToken(ctx, in.MaxSupply, out.Gateway.Address)
	if err != nil {
		return nil, fmt.Errorf("deploy token: %w", err)
	}
	log.Info("token deployed", "address", out.Token.Address.Hex(), "tx_hash", out.Token.TxHash.Hex())

	out.ToggleTx, err = c.ToggleToken(ctx, out.Gateway.Address, out.Token.Address, in.Validator)
	if err != nil {
		return nil, fmt.Errorf("toggle token: %w", err)
	}
	log.Info("token registered with gateway", "validator", in.Validator.Hex())

	out.MintTx, err = c.MintToken(ctx, out.Token.Address, in.MintAmount)
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}
	log.Info("tokens minted", "amount", in.MintAmount)

	out.TransferTx, err = c.Transfer(ctx, out.Token.Address, in.TestUser, in.TransferAmount)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	log.Info("test user funded", "user", in.TestUser.Hex(), "amount", in.TransferAmount)

	err = s.store.Put(
		artifact.AddressRecord(artifact.GatewayAddress, out.Gateway.Address, NetworkMainnet, chainID),
		artifact.AddressRecord(artifact.TokenAddress, out.Token.Address, NetworkMainnet, chainID),
		artifact.TxHashRecord(artifact.TokenTxHash, out.Token.TxHash, NetworkMainnet, chainID),
	)
	if err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}
	log.Info("mainnet artifacts written", "dir", s.store.Dir())
	return out, nil
}

func (s *Sequencer) reuseMainnet(ctx context.Context, c MainnetChain, chainID uint64) (*MainnetOutput, bool, error) {
	gw, ok, err := s.reusable(ctx, c, chainID, artifact.GatewayAddress)
	if err != nil || !ok {
		return nil, false, err
	}
	tok, ok, err := s.reusable(ctx, c, chainID, artifact.TokenAddress)
	if err != nil || !ok {
		return nil, false, err
	}
	tx, ok, err := s.reusable(ctx, c, chainID, artifact.TokenTxHash)
	if err != nil || !ok {
		return nil, false, err
	}

	return &MainnetOutput{
		ChainID: chainID,
		Gateway: chain.Deployment{Address: common.HexToAddress(gw.Value)},
		Token:   chain.Deployment{Address: common.HexToAddress(tok.Value), TxHash: common.HexToHash(tx.Value)},
		Reused:  true,
	}, true, nil
}

func positive(n *big.Int) bool {
	return n != nil && n.Sign() > 0
}
