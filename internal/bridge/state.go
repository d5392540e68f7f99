// Package bridge models the balance and bridge-initiation view as a finite-state
// machine, independent of how it is rendered.
package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is the coarse state of the view.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoaded
	PhaseSending
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoaded:
		return "loaded"
	case PhaseSending:
		return "sending"
	}
	return "unknown"
}

// Mapping links a mainnet account to its DAppChain account.
type Mapping struct {
	From common.Address
	To   common.Address
}

// Snapshot is one fetch of everything the view displays.
type Snapshot struct {
	Account   common.Address
	Balance   *big.Int
	Mapping   *Mapping // nil when the account is not linked
	TokenName string
}

// State is the view state. The zero value is PhaseUninitialized.
type State struct {
	Phase    Phase
	Snapshot Snapshot
	Notice   string
}

// DepositNotice is shown after a deposit is accepted.
const DepositNotice = "The amount will be available on DAppChain"

// View is what the user should see for a state.
type View int

const (
	ViewLoading View = iota
	ViewLinkAccount
	ViewNoTokens
	ViewWallet
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewLinkAccount:
		return "link-account"
	case ViewNoTokens:
		return "no-tokens"
	case ViewWallet:
		return "wallet"
	}
	return "unknown"
}

// View derives the display. An unlinked account never sees the bridge action,
// whatever its balance; a linked account with no tokens sees the no-tokens message.
func (s State) View() View {
	if s.Phase == PhaseUninitialized {
		return ViewLoading
	}
	if s.Snapshot.Mapping == nil {
		return ViewLinkAccount
	}
	if s.Snapshot.Balance == nil || s.Snapshot.Balance.Sign() == 0 {
		return ViewNoTokens
	}
	return ViewWallet
}

// CanSend reports whether a send request would be honoured.
func (s State) CanSend() bool {
	return s.Phase == PhaseLoaded && s.View() == ViewWallet
}

// Busy reports whether a deposit is in flight.
func (s State) Busy() bool {
	return s.Phase == PhaseSending
}
