package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event is an input to Transition.
type Event interface{ isEvent() }

// Loaded carries a completed fetch.
type Loaded struct{ Snapshot Snapshot }

// LoadFailed reports a failed fetch.
type LoadFailed struct{ Err error }

// Refresh asks for a refetch.
type Refresh struct{}

// SendRequested is the user asking to bridge their balance.
type SendRequested struct{}

// SendFinished reports the outcome of a deposit.
type SendFinished struct {
	TxHash common.Hash
	Err    error
}

func (Loaded) isEvent()        {}
func (LoadFailed) isEvent()    {}
func (Refresh) isEvent()       {}
func (SendRequested) isEvent() {}
func (SendFinished) isEvent()  {}

// Command is a side effect Transition asks the caller to perform.
type Command interface{ isCommand() }

// CmdNone asks for nothing.
type CmdNone struct{}

// CmdFetch asks for a fresh Snapshot.
type CmdFetch struct{}

// CmdDeposit asks for Amount of Account's tokens to be deposited on the gateway.
type CmdDeposit struct {
	Account common.Address
	Amount  *big.Int
}

func (CmdNone) isCommand()    {}
func (CmdFetch) isCommand()   {}
func (CmdDeposit) isCommand() {}

// Init is the starting state and its first command.
func Init() (State, Command) {
	return State{}, CmdFetch{}
}

// Transition applies ev to s. It has no side effects.
//
// A send is honoured only from PhaseLoaded with a bridgeable view and moves to PhaseSending;
// further requests are ignored until SendFinished, which always returns to PhaseLoaded
// and asks for exactly one refetch. A failed deposit clears the notice.
func Transition(s State, ev Event) (State, Command) {
	switch e := ev.(type) {
	case Loaded:
		if s.Phase == PhaseSending {
			return s, CmdNone{}
		}
		s.Phase = PhaseLoaded
		s.Snapshot = e.Snapshot
		return s, CmdNone{}

	case LoadFailed:
		// The last good snapshot stays on screen.
		return s, CmdNone{}

	case Refresh:
		if s.Phase == PhaseSending {
			return s, CmdNone{}
		}
		return s, CmdFetch{}

	case SendRequested:
		if !s.CanSend() {
			return s, CmdNone{}
		}
		s.Phase = PhaseSending
		s.Notice = ""
		return s, CmdDeposit{
			Account: s.Snapshot.Account,
			Amount:  new(big.Int).Set(s.Snapshot.Balance),
		}

	case SendFinished:
		if s.Phase != PhaseSending {
			return s, CmdNone{}
		}
		s.Phase = PhaseLoaded
		if e.Err != nil {
			s.Notice = ""
		} else {
			s.Notice = DepositNotice
		}
		return s, CmdFetch{}
	}
	return s, CmdNone{}
}
