package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/springbridge/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Invoker is the part of Client the contract adapters need.
type Invoker interface {
	ChainID() uint64
	HasCode(ctx context.Context, addr common.Address) (bool, error)
	Deploy(ctx context.Context, from common.Address, a *contract.Artifact, args ...any) (Deployment, error)
	Transact(ctx context.Context, from, to common.Address, a *contract.Artifact, method string, args ...any) (common.Hash, error)
	Call(ctx context.Context, to common.Address, a *contract.Artifact, method string, args ...any) ([]any, error)
}

var _ Invoker = (*Client)(nil)

// Mainnet deploys and configures the Gateway and Token pair.
type Mainnet struct {
	inv      Invoker
	deployer common.Address
	gateway  *contract.Artifact
	token    *contract.Artifact
}

// NewMainnet binds the Gateway and Token artifacts to inv, sending from deployer.
func NewMainnet(inv Invoker, deployer common.Address, set *contract.Set) *Mainnet {
	return &Mainnet{inv: inv, deployer: deployer, gateway: set.Gateway, token: set.Token}
}

func (m *Mainnet) ChainID() uint64 { return m.inv.ChainID() }

func (m *Mainnet) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	return m.inv.HasCode(ctx, addr)
}

// DeployGateway deploys Gateway(validators, num, den).
func (m *Mainnet) DeployGateway(ctx context.Context, validators []common.Address, num, den *big.Int) (Deployment, error) {
	return m.inv.Deploy(ctx, m.deployer, m.gateway, validators, num, den)
}

// DeployToken deploys Token(maxSupply, gateway).
func (m *Mainnet) DeployToken(ctx context.Context, maxSupply *big.Int, gateway common.Address) (Deployment, error) {
	return m.inv.Deploy(ctx, m.deployer, m.token, maxSupply, gateway)
}

// ToggleToken enables token on the gateway. It must be sent by a validator.
func (m *Mainnet) ToggleToken(ctx context.Context, gateway, token, validator common.Address) (common.Hash, error) {
	return m.inv.Transact(ctx, validator, gateway, m.gateway, contract.MethodToggleToken, token)
}

// MintToken mints amount to the deployer.
func (m *Mainnet) MintToken(ctx context.Context, token common.Address, amount *big.Int) (common.Hash, error) {
	return m.inv.Transact(ctx, m.deployer, token, m.token, contract.MethodMintToken, amount)
}

// Transfer sends amount of token from the deployer to to.
func (m *Mainnet) Transfer(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error) {
	return m.inv.Transact(ctx, m.deployer, token, m.token, contract.MethodTransfer, to, amount)
}

// DappChain deploys the mirrored token.
type DappChain struct {
	inv      Invoker
	deployer common.Address
	token    *contract.Artifact
}

// NewDappChain binds the DAppChain token artifact to inv.
func NewDappChain(inv Invoker, deployer common.Address, set *contract.Set) *DappChain {
	return &DappChain{inv: inv, deployer: deployer, token: set.DappChainToken}
}

func (d *DappChain) ChainID() uint64 { return d.inv.ChainID() }

func (d *DappChain) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	return d.inv.HasCode(ctx, addr)
}

// DeployToken deploys TokenDappChain(maxSupply, gateway).
func (d *DappChain) DeployToken(ctx context.Context, maxSupply *big.Int, gateway common.Address) (Deployment, error) {
	return d.inv.Deploy(ctx, d.deployer, d.token, maxSupply, gateway)
}

// TokenManager reads and moves a user's mainnet tokens.
type TokenManager struct {
	inv   Invoker
	addr  common.Address
	token *contract.Artifact
}

// NewTokenManager binds the token deployed at addr.
func NewTokenManager(inv Invoker, addr common.Address, token *contract.Artifact) *TokenManager {
	return &TokenManager{inv: inv, addr: addr, token: token}
}

// BalanceOf returns account's token balance.
func (t *TokenManager) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.inv.Call(ctx, t.addr, t.token, contract.MethodBalanceOfUser, account)
	if err != nil {
		return nil, err
	}
	return single[*big.Int](out, contract.MethodBalanceOfUser)
}

// TokenName returns the token's display name.
func (t *TokenManager) TokenName(ctx context.Context) (string, error) {
	out, err := t.inv.Call(ctx, t.addr, t.token, contract.MethodTokenName)
	if err != nil {
		return "", err
	}
	return single[string](out, contract.MethodTokenName)
}

// DepositOnGateway moves amount of account's tokens into the gateway. The
// transaction is sent by account, which must have a registered signer.
func (t *TokenManager) DepositOnGateway(ctx context.Context, account common.Address, amount *big.Int) (common.Hash, error) {
	return t.inv.Transact(ctx, account, t.addr, t.token, contract.MethodDepositOnGateway, account, amount)
}

// MappingClient reads mainnet-to-DAppChain account links from the mapper contract.
type MappingClient struct {
	inv    Invoker
	addr   common.Address
	mapper *contract.Artifact
}

// NewMappingClient binds the mapper deployed at addr.
func NewMappingClient(inv Invoker, addr common.Address, mapper *contract.Artifact) *MappingClient {
	return &MappingClient{inv: inv, addr: addr, mapper: mapper}
}

// AddressMapping returns the DAppChain account linked to account, or the zero
// address when none is linked.
func (m *MappingClient) AddressMapping(ctx context.Context, account common.Address) (common.Address, error) {
	out, err := m.inv.Call(ctx, m.addr, m.mapper, contract.MethodMappedAccount, account)
	if err != nil {
		return common.Address{}, err
	}
	return single[common.Address](out, contract.MethodMappedAccount)
}

func single[T any](out []any, method string) (T, error) {
	var zero T
	if len(out) != 1 {
		return zero, fmt.Errorf("%s: expected 1 output, got %d", method, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return v, nil
}
