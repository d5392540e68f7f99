package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

var errInjected = errors.New("injected failure")

type fakeGateway struct {
	validators []common.Address
	num, den   *big.Int
	tokens     []common.Address
}

type fakeToken struct {
	gateway   common.Address
	maxSupply *big.Int
	minted    *big.Int
	balances  map[common.Address]*big.Int
}

func (t *fakeToken) balance(a common.Address) *big.Int {
	if b, ok := t.balances[a]; ok {
		return b
	}
	return new(big.Int)
}

// ledger simulates the bridge contracts on one network.
type ledger struct {
	chainID  uint64
	deployer common.Address
	seq      int64
	gateways map[common.Address]*fakeGateway
	tokens   map[common.Address]*fakeToken
	steps    []string
	failAt   string
}

func newLedger(chainID uint64, deployer common.Address) *ledger {
	return &ledger{
		chainID:  chainID,
		deployer: deployer,
		seq:      int64(chainID) * 1000,
		gateways: make(map[common.Address]*fakeGateway),
		tokens:   make(map[common.Address]*fakeToken),
	}
}

func (l *ledger) step(name string) error {
	l.steps = append(l.steps, name)
	if l.failAt == name {
		return fmt.Errorf("%s: %w", name, errInjected)
	}
	return nil
}

func (l *ledger) nextDeployment() chain.Deployment {
	l.seq++
	return chain.Deployment{
		Address: common.BigToAddress(big.NewInt(l.seq)),
		TxHash:  common.BigToHash(big.NewInt(l.seq)),
	}
}

func (l *ledger) ChainID() uint64 { return l.chainID }

func (l *ledger) HasCode(_ context.Context, addr common.Address) (bool, error) {
	_, gw := l.gateways[addr]
	_, tok := l.tokens[addr]
	return gw || tok, nil
}

func (l *ledger) DeployGateway(_ context.Context, validators []common.Address, num, den *big.Int) (chain.Deployment, error) {
	if err := l.step("gateway"); err != nil {
		return chain.Deployment{}, err
	}
	d := l.nextDeployment()
	l.gateways[d.Address] = &fakeGateway{validators: validators, num: num, den: den}
	return d, nil
}

func (l *ledger) DeployToken(_ context.Context, maxSupply *big.Int, gateway common.Address) (chain.Deployment, error) {
	if err := l.step("token"); err != nil {
		return chain.Deployment{}, err
	}
	d := l.nextDeployment()
	l.tokens[d.Address] = &fakeToken{
		gateway:   gateway,
		maxSupply: new(big.Int).Set(maxSupply),
		minted:    new(big.Int),
		balances:  make(map[common.Address]*big.Int),
	}
	return d, nil
}

func (l *ledger) ToggleToken(_ context.Context, gateway, token, validator common.Address) (common.Hash, error) {
	if err := l.step("toggle"); err != nil {
		return common.Hash{}, err
	}
	gw, ok := l.gateways[gateway]
	if !ok {
		return common.Hash{}, errors.New("no gateway")
	}
	if !slices.Contains(gw.validators, validator) {
		return common.Hash{}, chain.ErrReverted
	}
	if i := slices.Index(gw.tokens, token); i >= 0 {
		gw.tokens = slices.Delete(gw.tokens, i, i+1)
	} else {
		gw.tokens = append(gw.tokens, token)
	}
	return l.nextDeployment().TxHash, nil
}

func (l *ledger) MintToken(_ context.Context, token common.Address, amount *big.Int) (common.Hash, error) {
	if err := l.step("mint"); err != nil {
		return common.Hash{}, err
	}
	tok := l.tokens[token]
	minted := new(big.Int).Add(tok.minted, amount)
	if minted.Cmp(tok.maxSupply) > 0 {
		return common.Hash{}, chain.ErrReverted
	}
	tok.minted = minted
	tok.balances[l.deployer] = new(big.Int).Add(tok.balance(l.deployer), amount)
	return l.nextDeployment().TxHash, nil
}

func (l *ledger) Transfer(_ context.Context, token, to common.Address, amount *big.Int) (common.Hash, error) {
	if err := l.step("transfer"); err != nil {
		return common.Hash{}, err
	}
	tok := l.tokens[token]
	from := tok.balance(l.deployer)
	if from.Cmp(amount) < 0 {
		return common.Hash{}, chain.ErrReverted
	}
	tok.balances[l.deployer] = new(big.Int).Sub(from, amount)
	tok.balances[to] = new(big.Int).Add(tok.balance(to), amount)
	return l.nextDeployment().TxHash, nil
}
