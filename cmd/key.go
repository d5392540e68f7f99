package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Mohsinsiddi/springbridge/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var keyImportFlag string

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage deployer, validator and user keys",
	Long: `Private keys are stored in the OS keychain and referenced by name from the
config (mainnet.deployer_key, deploy.validator_key, bridge.user_key). A config
value that is itself a 64-character hex key is used directly.`,
}

var keyImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a private key into the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		hexKey := keyImportFlag
		if hexKey == "" {
			var err error
			hexKey, err = readSecret(os.Stdin, fmt.Sprintf("Private key for %q: ", name))
			if err != nil {
				return err
			}
		}

		k, err := newKeyManager().Import(name, hexKey)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Key " + ui.Val(name) + " imported: " + ui.Addr(k.Address)))
		fmt.Println(ui.Hint(fmt.Sprintf("Reference it from config, e.g. mainnet.deployer_key: %s", name)))
		return nil
	},
}

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := newKeyManager().List()
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println(ui.Info("No keys imported yet."))
			fmt.Println(ui.Hint("Import one with: springbridge key import deployer"))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "NAME", Width: 16},
			ui.Column{Title: "ADDRESS", Width: 44},
			ui.Column{Title: "IMPORTED"},
		)
		for _, k := range keys {
			t.AddRow(k.Name, k.Address, k.CreatedAt)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d key(s) imported", len(keys))))
		return nil
	},
}

var keyRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a key from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(os.Stdin, os.Stdout, fmt.Sprintf("Remove key %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newKeyManager().Remove(name); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Key %q removed.", name)))
		return nil
	},
}

func init() {
	keyImportCmd.Flags().StringVar(&keyImportFlag, "key", "", "hex private key (prompted for when omitted)")
	keyCmd.AddCommand(keyImportCmd, keyListCmd, keyRemoveCmd)
}

// readSecret reads one line from in. On a terminal the input is not echoed.
func readSecret(in *os.File, prompt string) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(in)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading key: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("no key given")
	}
	return line, nil
}
