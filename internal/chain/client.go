package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/springbridge/internal/contract"
	"github.com/Mohsinsiddi/springbridge/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Errors.
var (
	ErrReverted = errors.New("transaction reverted")
	ErrNoSigner = errors.New("no signer for account")
)

// Deployment is a contract created on chain.
type Deployment struct {
	Address common.Address
	TxHash  common.Hash
}

// TransactSigner produces transactors for one account.
type TransactSigner interface {
	Address() common.Address
	TransactOpts(chainID *big.Int) (*bind.TransactOpts, error)
}

// Timeouts bounds the waits performed by a Client.
type Timeouts struct {
	Confirm time.Duration // receipt wait for ordinary transactions
	Deploy  time.Duration // receipt wait for contract creation
}

// Client talks to one EVM network through ethclient and signs with a set of accounts.
type Client struct {
	name     string
	eth      *ethclient.Client
	chainID  *big.Int
	signers  map[common.Address]TransactSigner
	timeouts Timeouts
	logger   *slog.Logger
}

// Dial connects to rpcURL and fetches the chain ID.
func Dial(ctx context.Context, name, rpcURL string, timeouts Timeouts) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s (%s): %w", name, rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("fetching %s chain ID: %w", name, err)
	}

	c := &Client{
		name:     name,
		eth:      eth,
		chainID:  chainID,
		signers:  make(map[common.Address]TransactSigner),
		timeouts: timeouts,
		logger:   logger.Named("chain").With("network", name, "chain_id", chainID.Uint64()),
	}
	c.logger.Debug("connected", "url", rpcURL)
	return c, nil
}

// WaitForRPC polls rpcURL until it answers eth_blockNumber or timeout elapses.
func WaitForRPC(ctx context.Context, rpcURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastErr error
	for {
		eth, err := ethclient.DialContext(ctx, rpcURL)
		if err == nil {
			_, err = eth.BlockNumber(ctx)
			eth.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for RPC at %s: %w", rpcURL, errors.Join(ctx.Err(), lastErr))
		case <-ticker.C:
		}
	}
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Name returns the network label given to Dial.
func (c *Client) Name() string {
	return c.name
}

// ChainID returns the network's chain ID.
func (c *Client) ChainID() uint64 {
	return c.chainID.Uint64()
}

// AddSigner registers an account that Deploy and Transact may send from.
func (c *Client) AddSigner(s TransactSigner) common.Address {
	c.signers[s.Address()] = s
	return s.Address()
}

// HasCode reports whether addr holds contract code.
func (c *Client) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	code, err := c.eth.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("eth_getCode %s: %w", addr.Hex(), err)
	}
	return len(code) > 0, nil
}

// Deploy creates a contract from a and waits for it to be mined.
func (c *Client) Deploy(ctx context.Context, from common.Address, a *contract.Artifact, args ...any) (Deployment, error) {
	if err := a.Deployable(); err != nil {
		return Deployment{}, err
	}
	args, err := contract.CoerceArgs(a.ABI.Constructor.Inputs, args)
	if err != nil {
		return Deployment{}, fmt.Errorf("%s constructor: %w", a.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Deploy)
	defer cancel()

	opts, err := c.transactOpts(ctx, from)
	if err != nil {
		return Deployment{}, err
	}

	addr, tx, _, err := bind.DeployContract(opts, a.ABI, a.Bytecode, c.eth, args...)
	if err != nil {
		return Deployment{}, fmt.Errorf("deploying %s: %w", a.Name, err)
	}
	c.logger.Info("deployment transaction sent", "contract", a.Name, "address", addr.Hex(), "tx_hash", tx.Hash().Hex())

	if _, err := c.waitMined(ctx, tx); err != nil {
		return Deployment{}, fmt.Errorf("deploying %s: %w", a.Name, err)
	}
	return Deployment{Address: addr, TxHash: tx.Hash()}, nil
}

// Transact sends method(args) to the contract at to from the given account and
// waits for a successful receipt.
func (c *Client) Transact(ctx context.Context, from, to common.Address, a *contract.Artifact, method string, args ...any) (common.Hash, error) {
	m, ok := a.ABI.Methods[method]
	if !ok {
		return common.Hash{}, fmt.Errorf("%s has no method %q", a.Name, method)
	}
	args, err := contract.CoerceArgs(m.Inputs, args)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s.%s: %w", a.Name, method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Confirm)
	defer cancel()

	opts, err := c.transactOpts(ctx, from)
	if err != nil {
		return common.Hash{}, err
	}

	bound := bind.NewBoundContract(to, a.ABI, c.eth, c.eth, c.eth)
	tx, err := bound.Transact(opts, method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s.%s: %w", a.Name, method, err)
	}
	c.logger.Debug("transaction sent", "contract", a.Name, "method", method, "tx_hash", tx.Hash().Hex())

	if _, err := c.waitMined(ctx, tx); err != nil {
		return tx.Hash(), fmt.Errorf("%s.%s: %w", a.Name, method, err)
	}
	return tx.Hash(), nil
}

// Call invokes a read-only method and returns its decoded outputs.
func (c *Client) Call(ctx context.Context, to common.Address, a *contract.Artifact, method string, args ...any) ([]any, error) {
	m, ok := a.ABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%s has no method %q", a.Name, method)
	}
	args, err := contract.CoerceArgs(m.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", a.Name, method, err)
	}

	var out []any
	bound := bind.NewBoundContract(to, a.ABI, c.eth, c.eth, c.eth)
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", a.Name, method, err)
	}
	return out, nil
}

func (c *Client) transactOpts(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	s, ok := c.signers[from]
	if !ok {
		return nil, fmt.Errorf("%w %s on %s", ErrNoSigner, from.Hex(), c.name)
	}
	opts, err := s.TransactOpts(c.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s (block %d)", ErrReverted, tx.Hash().Hex(), receipt.BlockNumber.Uint64())
	}
	return receipt, nil
}
