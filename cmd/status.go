package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/Mohsinsiddi/springbridge/internal/config"
	"github.com/Mohsinsiddi/springbridge/internal/deploy"
	"github.com/Mohsinsiddi/springbridge/internal/rpc"
	"github.com/Mohsinsiddi/springbridge/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check both networks and the recorded contracts",
	Long: `Check the mainnet and DAppChain RPC endpoints, then check that every recorded
contract address still holds code on the chain it was deployed to.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Println(ui.Banner(Version))
		fmt.Println()

		networks := map[string]config.Network{
			deploy.NetworkMainnet:   cfg.Mainnet,
			deploy.NetworkDappChain: cfg.DappChain,
		}
		targets := []rpc.Target{
			{Network: deploy.NetworkMainnet, URL: cfg.Mainnet.RPCURL},
			{Network: deploy.NetworkDappChain, URL: cfg.DappChain.RPCURL},
		}
		endpoints := rpc.CheckAll(ctx, targets)

		t := ui.NewTable(
			ui.Column{Title: "NETWORK"},
			ui.Column{Title: "URL"},
			ui.Column{Title: "CHAIN"},
			ui.Column{Title: "BLOCK"},
			ui.Column{Title: "LATENCY"},
			ui.Column{Title: "STATUS"},
		)
		healthy := map[string]rpc.Endpoint{}
		for _, ep := range endpoints {
			status := "ok"
			if !ep.Healthy {
				status = "unreachable"
			} else {
				healthy[ep.Network] = ep
			}
			t.AddRow(ep.Network, ep.URL, chainIDText(ep.ChainID), strconv.FormatUint(ep.BlockNumber, 10),
				ep.Latency.Round(time.Millisecond).String(), status)
		}
		fmt.Println(t.Render())

		recs, err := newArtifactStore().List()
		if err != nil {
			return err
		}
		checks := contractChecks(ctx, recs, networks, healthy)
		if len(checks) == 0 {
			fmt.Println(ui.Meta("No recorded contracts to check."))
			return nil
		}
		for _, c := range checks {
			fmt.Println(c)
		}
		return nil
	},
}

// contractChecks reports, for each recorded address, whether it still has code on
// its network. Records for other chain IDs or unreachable networks are flagged.
func contractChecks(ctx context.Context, recs []artifact.Record, networks map[string]config.Network, healthy map[string]rpc.Endpoint) []string {
	clients := map[string]*chain.Client{}
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	var out []string
	for _, r := range recs {
		if r.Kind != artifact.KindAddress || r.Network == "" {
			continue
		}
		addr, err := r.Address()
		if err != nil {
			out = append(out, ui.Err(fmt.Sprintf("%s: %v", r.Name, err)))
			continue
		}
		ep, ok := healthy[r.Network]
		if !ok {
			out = append(out, ui.Warn(fmt.Sprintf("%s: %s is unreachable", r.Name, r.Network)))
			continue
		}
		if r.ChainID != 0 && r.ChainID != ep.ChainID {
			out = append(out, ui.Warn(fmt.Sprintf("%s: recorded on chain %d, %s is now chain %d",
				r.Name, r.ChainID, r.Network, ep.ChainID)))
			continue
		}

		c, ok := clients[r.Network]
		if !ok {
			n := networks[r.Network]
			c, err = chain.Dial(ctx, n.Name, n.RPCURL, chainTimeouts())
			if err != nil {
				out = append(out, ui.Err(fmt.Sprintf("%s: %v", r.Name, err)))
				continue
			}
			clients[r.Network] = c
		}

		has, err := c.HasCode(ctx, addr)
		switch {
		case err != nil:
			out = append(out, ui.Err(fmt.Sprintf("%s: %v", r.Name, err)))
		case has:
			out = append(out, ui.Success(fmt.Sprintf("%s %s has code", r.Name, ui.Addr(ui.TruncateAddr(addr.Hex())))))
		default:
			out = append(out, ui.Warn(fmt.Sprintf("%s %s has no code", r.Name, ui.Addr(ui.TruncateAddr(addr.Hex())))))
		}
	}
	return out
}
