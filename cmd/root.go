package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/springbridge/internal/config"
	"github.com/Mohsinsiddi/springbridge/internal/logger"
	"github.com/Mohsinsiddi/springbridge/internal/ui"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/springbridge/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "springbridge",
	Short: "Deploy and use the SPRING token bridge",
	Long: `springbridge deploys the SPRING token bridge contracts and moves tokens across it.

  deploy mainnet     Gateway + Token on the mainnet side
  deploy dappchain   mirrored Token on the DAppChain side
  deploy all         both stages in one run
  bridge view        live balance view with a "Send to DAppChain" action

Contract addresses are handed between stages through the artifact store
(artifacts.json plus one plain file per value in artifact_dir).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger.Initialize(logLevel(), cfg.LogFormat)
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context;
// a transaction that was already broadcast is not reverted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		stop()
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func init() {
	// CHAIN_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("CHAIN_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.springbridge)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Register all sub-commands.
	rootCmd.AddCommand(
		deployCmd,
		bridgeCmd,
		artifactsCmd,
		keyCmd,
		configCmd,
		statusCmd,
	)
}
