package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/Mohsinsiddi/springbridge/internal/bridge"
	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/Mohsinsiddi/springbridge/internal/config"
	"github.com/Mohsinsiddi/springbridge/internal/contract"
	"github.com/Mohsinsiddi/springbridge/internal/logger"
	"github.com/Mohsinsiddi/springbridge/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

const bridgeLogFile = "bridge.log"

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "View mainnet token balance and send tokens to the DAppChain",
}

var bridgeViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Live balance view with a Send to DAppChain action",
	Long: `Show the user's mainnet token balance and DAppChain account link.

  enter / s   send the balance to the gateway
  r           refresh
  q / esc     quit

Log output goes to bridge.log in the config directory while the view is open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logFile, err := logToFile(filepath.Join(cfg.Dir(), bridgeLogFile))
		if err != nil {
			return err
		}
		defer logFile.Close()

		session, closeAll, err := openBridge(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		if _, err := ui.NewBridgeProgram(ctx, session).Run(); err != nil {
			return fmt.Errorf("bridge view: %w", err)
		}
		return nil
	},
}

var bridgeSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Deposit the user's mainnet balance on the gateway",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, closeAll, err := openBridge(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		spin := ui.NewSpinner(os.Stderr, "Sending to DAppChain…")
		spin.Start()
		st, hash, err := session.Bridge(ctx)
		refreshFailed := errors.Is(err, bridge.ErrRefreshFailed)
		if err == nil || refreshFailed {
			spin.StopWithMsg(ui.Meta("Deposit confirmed on " + cfg.Mainnet.Name))
		} else {
			spin.Stop()
		}

		switch {
		case errors.Is(err, bridge.ErrNotLinked):
			fmt.Println(ui.Warn(ui.TextLinkAccount))
			return err
		case errors.Is(err, bridge.ErrNoTokens):
			fmt.Println(ui.Warn(ui.TextNoTokens))
			return err
		case err != nil && !refreshFailed:
			return fmt.Errorf("deposit: %w", err)
		}

		fmt.Println(depositSummary(st, hash, refreshFailed))
		if refreshFailed {
			fmt.Println(ui.Warn(err.Error()))
		}
		return nil
	},
}

func init() {
	bridgeCmd.AddCommand(bridgeViewCmd, bridgeSendCmd)
}

// depositSummary describes a successful deposit. The balance is left out when it
// could not be read back.
func depositSummary(st bridge.State, hash common.Hash, refreshFailed bool) string {
	pairs := [][2]string{
		{"Account", st.Snapshot.Account.Hex()},
		{"Deposit tx", hash.Hex()},
	}
	if !refreshFailed {
		pairs = append(pairs, [2]string{"Balance now", st.Snapshot.Balance.String()})
	}
	return ui.KeyValueBlock(ui.Success(bridge.DepositNotice), pairs)
}

// logToFile sends all log output to path so it does not draw over the TUI.
func logToFile(path string) (io.Closer, error) {
	f, err := tea.LogToFile(path, "springbridge")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.InitializeTo(f, logLevel(), cfg.LogFormat)
	return f, nil
}

// openBridge wires a Session to the mainnet token and the DAppChain address mapper.
// The returned func closes both connections.
func openBridge(ctx context.Context) (*bridge.Session, func(), error) {
	if err := cfg.ValidateBridge(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}

	set, err := contract.LoadSet(contractPaths(), contract.RoleBridge)
	if err != nil {
		return nil, nil, err
	}
	tokenAddr, err := newArtifactStore().Address(artifact.TokenAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("token address: %w (run `springbridge deploy mainnet` first)", err)
	}
	user, err := resolveSigner(cfg.Bridge.UserKey)
	if err != nil {
		return nil, nil, fmt.Errorf("bridge user key: %w", err)
	}

	var opts []bridge.Option
	if cfg.Bridge.Amount != "" {
		limit, err := config.ParseAmount("bridge.amount", cfg.Bridge.Amount)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, bridge.WithDepositLimit(limit))
	}

	mainnet, err := chain.Dial(ctx, cfg.Mainnet.Name, cfg.Mainnet.RPCURL, chainTimeouts())
	if err != nil {
		return nil, nil, err
	}
	dappchain, err := chain.Dial(ctx, cfg.DappChain.Name, cfg.DappChain.RPCURL, chainTimeouts())
	if err != nil {
		mainnet.Close()
		return nil, nil, err
	}
	mainnet.AddSigner(user)

	session := bridge.NewSession(
		user,
		chain.NewTokenManager(mainnet, tokenAddr, set.Token),
		chain.NewMappingClient(dappchain, common.HexToAddress(cfg.Bridge.MapperAddress), set.Mapper),
		opts...,
	)
	closeAll := func() {
		mainnet.Close()
		dappchain.Close()
	}
	return session, closeAll, nil
}
