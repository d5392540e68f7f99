package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/springbridge/internal/bridge"
	tea "github.com/charmbracelet/bubbletea"
)

// View text.
const (
	TextLinkAccount = "Please sign your user first"
	TextNoTokens    = "No tokens available"
	TextSendAction  = "Send to DAppChain"
)

// BridgeRunner performs the commands emitted by bridge.Transition.
type BridgeRunner interface {
	Run(ctx context.Context, cmd bridge.Command) bridge.Event
}

// BridgeModel is the Bubble Tea model for the balance and bridge-initiation view.
type BridgeModel struct {
	ctx      context.Context
	runner   BridgeRunner
	state    bridge.State
	lastErr  string
	quitting bool
}

type bridgeEventMsg struct{ ev bridge.Event }

// NewBridgeModel creates the view model. Commands run under ctx.
func NewBridgeModel(ctx context.Context, runner BridgeRunner) BridgeModel {
	return BridgeModel{ctx: ctx, runner: runner}
}

// NewBridgeProgram wraps the model in a Bubble Tea program.
func NewBridgeProgram(ctx context.Context, runner BridgeRunner, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	return tea.NewProgram(NewBridgeModel(ctx, runner), opts...)
}

// State returns the current bridge state.
func (m BridgeModel) State() bridge.State {
	return m.state
}

func (m BridgeModel) Init() tea.Cmd {
	_, cmd := bridge.Init()
	return m.perform(cmd)
}

func (m BridgeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter", "s":
			return m.apply(bridge.SendRequested{})
		case "r":
			return m.apply(bridge.Refresh{})
		}

	case bridgeEventMsg:
		switch ev := msg.ev.(type) {
		case bridge.LoadFailed:
			m.lastErr = ev.Err.Error()
		case bridge.SendFinished:
			m.lastErr = ""
			if ev.Err != nil {
				m.lastErr = "Transaction failed or denied by user"
			}
		case bridge.Loaded:
			m.lastErr = ""
		}
		return m.apply(msg.ev)
	}
	return m, nil
}

func (m BridgeModel) apply(ev bridge.Event) (tea.Model, tea.Cmd) {
	var cmd bridge.Command
	m.state, cmd = bridge.Transition(m.state, ev)
	return m, m.perform(cmd)
}

func (m BridgeModel) perform(cmd bridge.Command) tea.Cmd {
	if _, ok := cmd.(bridge.CmdNone); ok || cmd == nil {
		return nil
	}
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		ev := runner.Run(ctx, cmd)
		if ev == nil {
			return nil
		}
		return bridgeEventMsg{ev: ev}
	}
}

func (m BridgeModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.state
	name := s.Snapshot.TokenName
	if name == "" {
		name = "Spring"
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("Ethereum Network Owned %s Tokens", name)) + "\n")

	switch s.View() {
	case bridge.ViewLoading:
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
	case bridge.ViewLinkAccount:
		sb.WriteString(Warn(TextLinkAccount) + "\n")
	case bridge.ViewNoTokens:
		sb.WriteString(Meta(TextNoTokens) + "\n")
	case bridge.ViewWallet:
		sb.WriteString(m.wallet())
	}

	if s.Notice != "" {
		sb.WriteString("\n" + Success(s.Notice) + "\n")
	}
	if m.lastErr != "" {
		sb.WriteString("\n" + Err(m.lastErr) + "\n")
	}

	help := "r refresh · q quit"
	if s.CanSend() {
		help = "enter send · " + help
	}
	sb.WriteString("\n" + StyleMeta.Render(help) + "\n")
	return sb.String()
}

func (m BridgeModel) wallet() string {
	s := m.state
	pairs := [][2]string{
		{"Account", s.Snapshot.Account.Hex()},
		{"Balance", s.Snapshot.Balance.String()},
	}
	if s.Snapshot.Mapping != nil {
		pairs = append(pairs, [2]string{"DAppChain account", s.Snapshot.Mapping.To.Hex()})
	}
	block := KeyValueBlock("", pairs)

	button := StyleSelected.Render(" " + TextSendAction + " ")
	if s.Busy() {
		button = StyleMeta.Render("[ Sending… ]")
	}
	return block + "\n" + button + "\n"
}
