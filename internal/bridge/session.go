package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/Mohsinsiddi/springbridge/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Errors returned by Session.Bridge when there is nothing to send.
var (
	ErrNotLinked = errors.New("account is not linked to a DAppChain account")
	ErrNoTokens  = errors.New("account holds no tokens")
)

// ErrRefreshFailed is returned by Session.Bridge when the deposit went through but
// the balance could not be read back afterwards.
var ErrRefreshFailed = errors.New("deposit sent but the balance could not be refreshed")

// AccountManager supplies the active mainnet account.
type AccountManager interface {
	CurrentAccount(ctx context.Context) (common.Address, error)
}

// TokenManager reads and moves mainnet tokens.
type TokenManager interface {
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	TokenName(ctx context.Context) (string, error)
	DepositOnGateway(ctx context.Context, account common.Address, amount *big.Int) (common.Hash, error)
}

// MappingManager resolves the DAppChain account linked to a mainnet account.
// The zero address means no link.
type MappingManager interface {
	AddressMapping(ctx context.Context, account common.Address) (common.Address, error)
}

// Session performs the commands Transition emits.
type Session struct {
	accounts AccountManager
	tokens   TokenManager
	mappings MappingManager
	limit    *big.Int
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithDepositLimit caps each deposit at limit. A nil limit deposits the whole balance.
func WithDepositLimit(limit *big.Int) Option {
	return func(s *Session) {
		s.limit = limit
	}
}

// NewSession wires the three managers.
func NewSession(accounts AccountManager, tokens TokenManager, mappings MappingManager, opts ...Option) *Session {
	s := &Session{
		accounts: accounts,
		tokens:   tokens,
		mappings: mappings,
		logger:   logger.Named("bridge"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch resolves the account and then loads balance, mapping and token name concurrently.
func (s *Session) Fetch(ctx context.Context) (Snapshot, error) {
	account, err := s.accounts.CurrentAccount(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("current account: %w", err)
	}

	snap := Snapshot{Account: account}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bal, err := s.tokens.BalanceOf(gctx, account)
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		snap.Balance = bal
		return nil
	})
	g.Go(func() error {
		to, err := s.mappings.AddressMapping(gctx, account)
		if err != nil {
			return fmt.Errorf("address mapping: %w", err)
		}
		if to != (common.Address{}) {
			snap.Mapping = &Mapping{From: account, To: to}
		}
		return nil
	})
	g.Go(func() error {
		name, err := s.tokens.TokenName(gctx)
		if err != nil {
			return fmt.Errorf("token name: %w", err)
		}
		snap.TokenName = name
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Run performs cmd and returns the event that reports its outcome, or nil for CmdNone.
// Failures are logged and carried in the event.
func (s *Session) Run(ctx context.Context, cmd Command) Event {
	switch c := cmd.(type) {
	case CmdFetch:
		snap, err := s.Fetch(ctx)
		if err != nil {
			s.logger.Error("fetch failed", "err", err)
			return LoadFailed{Err: err}
		}
		s.logger.Debug("fetched", "account", snap.Account.Hex(), "balance", snap.Balance, "linked", snap.Mapping != nil)
		return Loaded{Snapshot: snap}

	case CmdDeposit:
		amount := c.Amount
		if s.limit != nil && s.limit.Cmp(amount) < 0 {
			amount = s.limit
		}
		hash, err := s.tokens.DepositOnGateway(ctx, c.Account, amount)
		if err != nil {
			s.logger.Error("deposit failed", "account", c.Account.Hex(), "amount", amount, "err", err)
			return SendFinished{TxHash: hash, Err: err}
		}
		s.logger.Info("deposit accepted", "account", c.Account.Hex(), "amount", amount, "tx_hash", hash.Hex())
		return SendFinished{TxHash: hash}
	}
	return nil
}

// Step runs cmd and feeds the resulting event back through Transition.
func (s *Session) Step(ctx context.Context, st State, cmd Command) (State, Command, Event) {
	ev := s.Run(ctx, cmd)
	if ev == nil {
		return st, CmdNone{}, nil
	}
	next, nextCmd := Transition(st, ev)
	return next, nextCmd, ev
}

// Bridge is the non-interactive flow: fetch, deposit the balance (up to the limit), refetch.
func (s *Session) Bridge(ctx context.Context) (State, common.Hash, error) {
	st, cmd := Init()

	st, _, ev := s.Step(ctx, st, cmd)
	if lf, ok := ev.(LoadFailed); ok {
		return st, common.Hash{}, lf.Err
	}

	switch st.View() {
	case ViewLinkAccount:
		return st, common.Hash{}, fmt.Errorf("%w: %s", ErrNotLinked, st.Snapshot.Account.Hex())
	case ViewNoTokens:
		return st, common.Hash{}, fmt.Errorf("%w: %s", ErrNoTokens, st.Snapshot.Account.Hex())
	}

	st, cmd = Transition(st, SendRequested{})
	st, cmd, ev = s.Step(ctx, st, cmd)
	sent := ev.(SendFinished)

	st, _, ev = s.Step(ctx, st, cmd)
	if lf, ok := ev.(LoadFailed); ok && sent.Err == nil {
		return st, sent.TxHash, fmt.Errorf("%w: %w", ErrRefreshFailed, lf.Err)
	}
	return st, sent.TxHash, sent.Err
}
