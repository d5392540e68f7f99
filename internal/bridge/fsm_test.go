package bridge

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userAccount   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	linkedAccount = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func snapshot(balance int64, linked bool) Snapshot {
	s := Snapshot{Account: userAccount, Balance: big.NewInt(balance), TokenName: "SPRING"}
	if linked {
		s.Mapping = &Mapping{From: userAccount, To: linkedAccount}
	}
	return s
}

func loaded(balance int64, linked bool) State {
	s, _ := Transition(State{}, Loaded{Snapshot: snapshot(balance, linked)})
	return s
}

func TestInitFetches(t *testing.T) {
	s, cmd := Init()
	assert.Equal(t, PhaseUninitialized, s.Phase)
	assert.Equal(t, ViewLoading, s.View())
	assert.IsType(t, CmdFetch{}, cmd)
}

func TestViewSelection(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		linked  bool
		want    View
	}{
		{"unlinked with balance", 100, false, ViewLinkAccount},
		{"unlinked without balance", 0, false, ViewLinkAccount},
		{"linked without balance", 0, true, ViewNoTokens},
		{"linked with balance", 100, true, ViewWallet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loaded(tt.balance, tt.linked)
			assert.Equal(t, tt.want, s.View())
			assert.Equal(t, tt.want == ViewWallet, s.CanSend())
		})
	}
}

func TestNilBalanceIsNoTokens(t *testing.T) {
	s := State{Phase: PhaseLoaded, Snapshot: Snapshot{Mapping: &Mapping{}}}
	assert.Equal(t, ViewNoTokens, s.View())
}

func TestSendIgnoredWithoutMapping(t *testing.T) {
	s := loaded(100, false)
	next, cmd := Transition(s, SendRequested{})
	assert.Equal(t, s, next)
	assert.IsType(t, CmdNone{}, cmd)
}

func TestSendIgnoredWithZeroBalance(t *testing.T) {
	s := loaded(0, true)
	next, cmd := Transition(s, SendRequested{})
	assert.Equal(t, PhaseLoaded, next.Phase)
	assert.IsType(t, CmdNone{}, cmd)
}

func TestSendIgnoredBeforeLoad(t *testing.T) {
	next, cmd := Transition(State{}, SendRequested{})
	assert.Equal(t, PhaseUninitialized, next.Phase)
	assert.IsType(t, CmdNone{}, cmd)
}

func TestSendSetsBusyAndDepositsBalance(t *testing.T) {
	s := loaded(250, true)
	s.Notice = "stale"

	next, cmd := Transition(s, SendRequested{})
	assert.Equal(t, PhaseSending, next.Phase)
	assert.True(t, next.Busy())
	assert.Empty(t, next.Notice)

	dep, ok := cmd.(CmdDeposit)
	require.True(t, ok)
	assert.Equal(t, userAccount, dep.Account)
	assert.Equal(t, "250", dep.Amount.String())

	dep.Amount.SetInt64(1)
	assert.Equal(t, "250", next.Snapshot.Balance.String(), "deposit amount is a copy")
}

func TestBusyBlocksSecondSend(t *testing.T) {
	s, _ := Transition(loaded(250, true), SendRequested{})

	again, cmd := Transition(s, SendRequested{})
	assert.Equal(t, s, again)
	assert.IsType(t, CmdNone{}, cmd)

	again, cmd = Transition(s, Refresh{})
	assert.Equal(t, s, again)
	assert.IsType(t, CmdNone{}, cmd)
}

func TestSendFinishedSuccess(t *testing.T) {
	s, _ := Transition(loaded(250, true), SendRequested{})

	next, cmd := Transition(s, SendFinished{TxHash: common.HexToHash("0x01")})
	assert.Equal(t, PhaseLoaded, next.Phase)
	assert.Equal(t, DepositNotice, next.Notice)
	assert.IsType(t, CmdFetch{}, cmd)
}

func TestSendFinishedFailureClearsNotice(t *testing.T) {
	s, _ := Transition(loaded(250, true), SendRequested{})
	s.Notice = "leftover"

	next, cmd := Transition(s, SendFinished{Err: errors.New("user denied")})
	assert.Equal(t, PhaseLoaded, next.Phase)
	assert.Empty(t, next.Notice)
	assert.IsType(t, CmdFetch{}, cmd)
}

func TestSendFinishedRefetchesExactlyOnce(t *testing.T) {
	s, _ := Transition(loaded(250, true), SendRequested{})

	fetches := 0
	s, cmd := Transition(s, SendFinished{})
	if _, ok := cmd.(CmdFetch); ok {
		fetches++
	}
	// A duplicate completion must not trigger a second fetch.
	_, cmd = Transition(s, SendFinished{})
	if _, ok := cmd.(CmdFetch); ok {
		fetches++
	}
	assert.Equal(t, 1, fetches)
}

func TestLoadedDuringSendIsIgnored(t *testing.T) {
	s, _ := Transition(loaded(250, true), SendRequested{})
	next, _ := Transition(s, Loaded{Snapshot: snapshot(0, true)})
	assert.Equal(t, PhaseSending, next.Phase)
	assert.Equal(t, "250", next.Snapshot.Balance.String())
}

func TestLoadFailedKeepsLastSnapshot(t *testing.T) {
	s := loaded(7, true)
	next, cmd := Transition(s, LoadFailed{Err: errors.New("rpc down")})
	assert.Equal(t, s, next)
	assert.IsType(t, CmdNone{}, cmd)

	initial, _ := Transition(State{}, LoadFailed{Err: errors.New("rpc down")})
	assert.Equal(t, ViewLoading, initial.View())
}

func TestRefreshFetches(t *testing.T) {
	_, cmd := Transition(loaded(1, true), Refresh{})
	assert.IsType(t, CmdFetch{}, cmd)
}

func TestPhaseAndViewStrings(t *testing.T) {
	assert.Equal(t, "sending", PhaseSending.String())
	assert.Equal(t, "link-account", ViewLinkAccount.String())
	assert.Equal(t, "unknown", View(99).String())
}
