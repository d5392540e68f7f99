package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Mohsinsiddi/springbridge/internal/config"
	"github.com/Mohsinsiddi/springbridge/internal/ui"
	"github.com/Mohsinsiddi/springbridge/internal/wallet"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := renderConfig(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Long: `Write springbridge.yaml with the built-in defaults. Values from the current
config file and SPRINGBRIDGE_* environment variables are not copied, so a raw
key supplied through the environment never reaches disk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Path()
		if _, err := os.Stat(path); err == nil && !configInitForce {
			if !ui.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("Overwrite %s?", path)) {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		defaults, err := config.Default(cfg.Dir())
		if err != nil {
			return err
		}
		if err := defaults.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success("Config written to " + path))
		fmt.Println(ui.Hint("Import keys with: springbridge key import deployer"))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for every command",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		checks := []struct {
			name string
			fn   func() error
		}{
			{"deploy mainnet", cfg.ValidateMainnet},
			{"deploy dappchain", cfg.ValidateDappChain},
			{"bridge", cfg.ValidateBridge},
		}

		failed := 0
		for _, c := range checks {
			if err := c.fn(); err != nil {
				fmt.Println(ui.Err(c.name))
				fmt.Println(ui.Meta(indent(err.Error())))
				failed++
				continue
			}
			fmt.Println(ui.Success(c.name))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(checks))
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config without asking")
	configCmd.AddCommand(configShowCmd, configInitCmd, configValidateCmd)
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// renderConfig marshals c with every raw private key masked.
func renderConfig(c *config.Config) ([]byte, error) {
	masked := *c
	masked.Mainnet.DeployerKey = maskKey(c.Mainnet.DeployerKey)
	masked.DappChain.DeployerKey = maskKey(c.DappChain.DeployerKey)
	masked.Deploy.ValidatorKey = maskKey(c.Deploy.ValidatorKey)
	masked.Bridge.UserKey = maskKey(c.Bridge.UserKey)
	return yaml.Marshal(masked)
}

// maskKey hides a raw hex key. Keychain names are returned unchanged.
func maskKey(ref string) string {
	if !wallet.IsHexKey(ref) {
		return ref
	}
	return ref[:6] + "…" + ref[len(ref)-4:] + " (raw key)"
}
