package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/Mohsinsiddi/springbridge/internal/contract"
	"github.com/Mohsinsiddi/springbridge/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportOut string

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect recorded deployment artifacts",
}

var artifactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recorded artifacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newArtifactStore()
		recs, err := store.List()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println(ui.Warn("No artifacts recorded in " + store.Dir()))
			fmt.Println(ui.Hint("Run: springbridge deploy mainnet"))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "NAME"},
			ui.Column{Title: "KIND"},
			ui.Column{Title: "VALUE"},
			ui.Column{Title: "NETWORK"},
			ui.Column{Title: "CHAIN"},
			ui.Column{Title: "WRITTEN"},
		)
		for _, r := range recs {
			t.AddRow(r.Name, string(r.Kind), r.Value, r.Network, chainIDText(r.ChainID), r.WrittenAt)
		}
		fmt.Println(t.Render())
		return nil
	},
}

var artifactsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newArtifactStore().Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock(r.Name, [][2]string{
			{"Kind", string(r.Kind)},
			{"Value", r.Value},
			{"Network", r.Network},
			{"Chain ID", chainIDText(r.ChainID)},
			{"Written", r.WrittenAt},
			{"Checksum", r.Checksum},
		}))
		return nil
	},
}

var artifactsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export contract addresses and ABIs for the web client as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := buildClientConstants(newArtifactStore(), contractPaths())
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bundle); err != nil {
			return fmt.Errorf("encoding constants: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
		if exportOut != "" {
			fmt.Fprintln(os.Stderr, ui.Success("Constants written to "+exportOut))
		}
		return nil
	},
}

func init() {
	artifactsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")
	artifactsCmd.AddCommand(artifactsListCmd, artifactsShowCmd, artifactsExportCmd)
}

// clientConstants is what the web client needs to talk to the deployed contracts.
type clientConstants struct {
	Addresses map[string]string     `yaml:"addresses"`
	Contracts map[string]contractABI `yaml:"contracts,omitempty"`
}

type contractABI struct {
	Name    string   `yaml:"name"`
	Source  string   `yaml:"source"`
	Methods []string `yaml:"methods"`
}

// buildClientConstants gathers every recorded artifact plus the method signatures
// of each configured contract. Unconfigured contracts are skipped.
func buildClientConstants(store *artifact.Store, paths contract.Paths) (*clientConstants, error) {
	recs, err := store.List()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no artifacts in %s", artifact.ErrNotFound, store.Dir())
	}

	out := &clientConstants{
		Addresses: make(map[string]string, len(recs)),
		Contracts: make(map[string]contractABI),
	}
	for _, r := range recs {
		out.Addresses[r.Name] = r.Value
	}

	roles := []struct {
		key  string
		path string
	}{
		{"gateway", paths.Gateway},
		{"token", paths.Token},
		{"dappchain_token", paths.DappChainToken},
		{"mapper", paths.Mapper},
	}
	for _, role := range roles {
		if role.path == "" {
			continue
		}
		a, err := contract.Load(role.path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", role.key, err)
		}
		out.Contracts[role.key] = contractABI{Name: a.Name, Source: a.Path, Methods: a.Signatures()}
	}
	if _, ok := out.Contracts["mapper"]; !ok {
		m := contract.Mapper()
		out.Contracts["mapper"] = contractABI{Name: m.Name, Source: m.Path, Methods: m.Signatures()}
	}
	return out, nil
}

func chainIDText(id uint64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatUint(id, 10)
}
