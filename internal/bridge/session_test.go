package bridge

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	addr common.Address
	err  error
}

func (f fakeAccounts) CurrentAccount(context.Context) (common.Address, error) {
	return f.addr, f.err
}

type fakeTokens struct {
	mu         sync.Mutex
	balance    *big.Int
	name       string
	balanceErr error
	refetchErr error
	depositErr error
	deposits   []*big.Int
	balanceHit int
}

func (f *fakeTokens) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceHit++
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	if f.refetchErr != nil && len(f.deposits) > 0 {
		return nil, f.refetchErr
	}
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeTokens) TokenName(context.Context) (string, error) {
	return f.name, nil
}

func (f *fakeTokens) DepositOnGateway(_ context.Context, _ common.Address, amount *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deposits = append(f.deposits, amount)
	if f.depositErr != nil {
		return common.Hash{}, f.depositErr
	}
	f.balance = new(big.Int).Sub(f.balance, amount)
	return common.HexToHash("0xbeef"), nil
}

type fakeMappings struct {
	to  common.Address
	err error
}

func (f fakeMappings) AddressMapping(context.Context, common.Address) (common.Address, error) {
	return f.to, f.err
}

func TestFetchBuildsSnapshot(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(100), name: "SPRING"}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount})

	snap, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, userAccount, snap.Account)
	assert.Equal(t, "100", snap.Balance.String())
	assert.Equal(t, "SPRING", snap.TokenName)
	require.NotNil(t, snap.Mapping)
	assert.Equal(t, Mapping{From: userAccount, To: linkedAccount}, *snap.Mapping)
}

func TestFetchZeroMappingIsUnlinked(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(100)}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{})

	snap, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.Mapping)
}

func TestFetchErrors(t *testing.T) {
	boom := errors.New("boom")

	s := NewSession(fakeAccounts{err: boom}, &fakeTokens{balance: big.NewInt(1)}, fakeMappings{})
	_, err := s.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "current account")

	s = NewSession(fakeAccounts{addr: userAccount}, &fakeTokens{balanceErr: boom}, fakeMappings{})
	_, err = s.Fetch(context.Background())
	assert.ErrorContains(t, err, "balance")

	s = NewSession(fakeAccounts{addr: userAccount}, &fakeTokens{balance: big.NewInt(1)}, fakeMappings{err: boom})
	_, err = s.Fetch(context.Background())
	assert.ErrorContains(t, err, "address mapping")
}

func TestRunMapsCommandsToEvents(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(5), name: "SPRING"}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount})
	ctx := context.Background()

	assert.Nil(t, s.Run(ctx, CmdNone{}))
	assert.IsType(t, Loaded{}, s.Run(ctx, CmdFetch{}))

	ev := s.Run(ctx, CmdDeposit{Account: userAccount, Amount: big.NewInt(5)})
	fin, ok := ev.(SendFinished)
	require.True(t, ok)
	assert.NoError(t, fin.Err)
	assert.Equal(t, common.HexToHash("0xbeef"), fin.TxHash)

	tokens.depositErr = errors.New("denied")
	fin = s.Run(ctx, CmdDeposit{Account: userAccount, Amount: big.NewInt(5)}).(SendFinished)
	assert.EqualError(t, fin.Err, "denied")
}

func TestBridgeDepositsAndRefetchesOnce(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(100), name: "SPRING"}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount})

	st, hash, err := s.Bridge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xbeef"), hash)
	require.Len(t, tokens.deposits, 1)
	assert.Equal(t, "100", tokens.deposits[0].String())

	assert.Equal(t, 2, tokens.balanceHit, "one fetch before and one after the deposit")
	assert.Equal(t, PhaseLoaded, st.Phase)
	assert.Equal(t, DepositNotice, st.Notice)
	assert.Equal(t, ViewNoTokens, st.View())
}

func TestBridgeDepositLimitCapsAmount(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(100)}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount},
		WithDepositLimit(big.NewInt(30)))

	st, _, err := s.Bridge(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens.deposits, 1)
	assert.Equal(t, "30", tokens.deposits[0].String())
	assert.Equal(t, "70", st.Snapshot.Balance.String())
}

func TestDepositLimitAboveBalanceSendsBalance(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(10)}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount},
		WithDepositLimit(big.NewInt(500)))

	fin := s.Run(context.Background(), CmdDeposit{Account: userAccount, Amount: big.NewInt(10)}).(SendFinished)
	require.NoError(t, fin.Err)
	assert.Equal(t, "10", tokens.deposits[0].String())
}

func TestBridgeFailedDepositStillRefetches(t *testing.T) {
	denied := errors.New("user denied transaction")
	tokens := &fakeTokens{balance: big.NewInt(100), depositErr: denied}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount})

	st, _, err := s.Bridge(context.Background())
	assert.ErrorIs(t, err, denied)
	assert.Equal(t, 2, tokens.balanceHit)
	assert.Empty(t, st.Notice)
	assert.Equal(t, ViewWallet, st.View())
}

func TestBridgeReportsFailedRefetchAfterDeposit(t *testing.T) {
	down := errors.New("rpc down")
	tokens := &fakeTokens{balance: big.NewInt(100), refetchErr: down}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount})

	st, hash, err := s.Bridge(context.Background())
	require.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, down)
	assert.Equal(t, common.HexToHash("0xbeef"), hash)
	require.Len(t, tokens.deposits, 1)
	assert.Equal(t, userAccount, st.Snapshot.Account)
	assert.Equal(t, "100", st.Snapshot.Balance.String(), "stale balance is kept in state")
}

func TestBridgeRefusesUnlinkedAccount(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(100)}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{})

	_, _, err := s.Bridge(context.Background())
	assert.ErrorIs(t, err, ErrNotLinked)
	assert.Empty(t, tokens.deposits)
}

func TestBridgeRefusesEmptyBalance(t *testing.T) {
	tokens := &fakeTokens{balance: big.NewInt(0)}
	s := NewSession(fakeAccounts{addr: userAccount}, tokens, fakeMappings{to: linkedAccount})

	_, _, err := s.Bridge(context.Background())
	assert.ErrorIs(t, err, ErrNoTokens)
	assert.Empty(t, tokens.deposits)
}

func TestBridgeReportsFetchFailure(t *testing.T) {
	boom := errors.New("rpc down")
	s := NewSession(fakeAccounts{err: boom}, &fakeTokens{}, fakeMappings{})

	st, _, err := s.Bridge(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ViewLoading, st.View())
}
