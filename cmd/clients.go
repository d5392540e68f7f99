package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Mohsinsiddi/springbridge/internal/artifact"
	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/Mohsinsiddi/springbridge/internal/config"
	"github.com/Mohsinsiddi/springbridge/internal/contract"
	"github.com/Mohsinsiddi/springbridge/internal/wallet"
)

func chainTimeouts() chain.Timeouts {
	return chain.Timeouts{
		Confirm: config.TxConfirmTimeout,
		Deploy:  config.TxDeployTimeout,
	}
}

// dial waits for the node to come up and connects to it.
func dial(ctx context.Context, n config.Network) (*chain.Client, error) {
	if err := chain.WaitForRPC(ctx, n.RPCURL, config.RPCReadyTimeout); err != nil {
		return nil, err
	}
	return chain.Dial(ctx, n.Name, n.RPCURL, chainTimeouts())
}

// resolveSigner turns a configured key reference into a signer. The keychain is
// only opened for named keys.
func resolveSigner(ref string) (*wallet.Signer, error) {
	var ks wallet.KeystoreBackend
	if !wallet.IsHexKey(ref) {
		ks = wallet.DefaultKeystore(cfg.Dir())
	}
	return wallet.Resolve(ks, ref)
}

func newArtifactStore() *artifact.Store {
	dir := cfg.ArtifactDir
	if dir == "" {
		dir = "."
	}
	return artifact.NewStore(dir)
}

func contractPaths() contract.Paths {
	return contract.Paths{
		Gateway:        cfg.Contracts.Gateway,
		Token:          cfg.Contracts.Token,
		DappChainToken: cfg.Contracts.DappChainToken,
		Mapper:         cfg.Contracts.Mapper,
	}
}

func newKeyManager() *wallet.Manager {
	store := wallet.NewJSONStore(filepath.Join(cfg.Dir(), "keys.json"))
	return wallet.NewManager(wallet.DefaultKeystore(cfg.Dir()), wallet.WithStore(store))
}

// networkLabel renders "name (chain id N)" for summaries.
func networkLabel(c *chain.Client) string {
	return fmt.Sprintf("%s (chain id %d)", c.Name(), c.ChainID())
}
