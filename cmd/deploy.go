package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/springbridge/internal/chain"
	"github.com/Mohsinsiddi/springbridge/internal/config"
	"github.com/Mohsinsiddi/springbridge/internal/contract"
	"github.com/Mohsinsiddi/springbridge/internal/deploy"
	"github.com/Mohsinsiddi/springbridge/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var deployReuse bool

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the bridge contracts",
}

var deployMainnetCmd = &cobra.Command{
	Use:   "mainnet",
	Short: "Deploy Gateway and Token on mainnet, register and fund the test user",
	Long: `Deploy the mainnet side of the bridge:

  1. Gateway(validators, threshold numerator, threshold denominator)
  2. Token(max supply, gateway)
  3. gateway.toggleToken(token), sent by the validator key
  4. token.mintToken(mint amount)
  5. token.transfer(test user, transfer amount)

and record gateway_address, game_token_address and game_token_tx_hash.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateMainnet(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		ctx := cmd.Context()

		m, client, in, err := openMainnet(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		announce(client)

		seq := deploy.NewSequencer(newArtifactStore(), deploy.WithReuse(reuseEnabled()))
		out, err := seq.Mainnet(ctx, m, in)
		if err != nil {
			return err
		}

		fmt.Println(mainnetSummary(client, out))
		return nil
	},
}

var deployDappChainCmd = &cobra.Command{
	Use:   "dappchain",
	Short: "Deploy the DAppChain token against a recorded gateway",
	Long: `Read the gateway address artifact (deploy.gateway_artifact, default
gateway_dappchain_address), deploy the DAppChain token against it and record
game_token_dappchain_address. Nothing is deployed when the artifact is missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateDappChain(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		ctx := cmd.Context()

		store := newArtifactStore()
		// Fail on a missing gateway before touching the network.
		if _, err := deploy.ResolveGateway(store, cfg.Deploy.GatewayArtifact); err != nil {
			return err
		}
		maxSupply, err := config.ParseAmount("deploy.max_supply", cfg.Deploy.MaxSupply)
		if err != nil {
			return err
		}

		d, client, err := openDappChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		announce(client)

		seq := deploy.NewSequencer(store, deploy.WithReuse(reuseEnabled()))
		out, err := seq.DappChainFromArtifact(ctx, d, cfg.Deploy.GatewayArtifact, maxSupply)
		if err != nil {
			return err
		}

		fmt.Println(dappChainSummary(client, out))
		return nil
	},
}

var deployAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the mainnet and DAppChain stages in one process",
	Long: `Run both stages. With deploy.gateway_source "mainnet" the DAppChain token is
bound to the gateway just deployed; with "artifact" (default) the gateway address
is read from deploy.gateway_artifact after the mainnet stage finishes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateMainnet(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		if err := cfg.ValidateDappChain(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		ctx := cmd.Context()

		m, mClient, in, err := openMainnet(ctx)
		if err != nil {
			return err
		}
		defer mClient.Close()

		d, dClient, err := openDappChain(ctx)
		if err != nil {
			return err
		}
		defer dClient.Close()
		announce(mClient)
		announce(dClient)

		seq := deploy.NewSequencer(newArtifactStore(), deploy.WithReuse(reuseEnabled()))
		out, err := seq.All(ctx, m, d, deploy.AllInput{
			Mainnet:         in,
			GatewaySource:   deploy.GatewaySource(cfg.Deploy.GatewaySource),
			GatewayArtifact: cfg.Deploy.GatewayArtifact,
		})
		if err != nil {
			return err
		}

		fmt.Println(mainnetSummary(mClient, out.Mainnet))
		fmt.Println(dappChainSummary(dClient, out.DappChain))
		return nil
	},
}

func init() {
	deployCmd.PersistentFlags().BoolVar(&deployReuse, "reuse", false,
		"skip stages whose recorded contracts still exist on the same chain")
	deployCmd.AddCommand(deployMainnetCmd, deployDappChainCmd, deployAllCmd)
}

func reuseEnabled() bool {
	return deployReuse || cfg.Deploy.ReuseExisting
}

// openMainnet connects to mainnet, registers the deployer and validator keys and
// builds the stage input from config.
func openMainnet(ctx context.Context) (*chain.Mainnet, *chain.Client, deploy.MainnetInput, error) {
	var in deploy.MainnetInput

	set, err := contract.LoadSet(contractPaths(), contract.RoleMainnet)
	if err != nil {
		return nil, nil, in, err
	}
	deployer, err := resolveSigner(cfg.Mainnet.DeployerKey)
	if err != nil {
		return nil, nil, in, fmt.Errorf("mainnet deployer key: %w", err)
	}
	validator, err := resolveSigner(cfg.Deploy.ValidatorKey)
	if err != nil {
		return nil, nil, in, fmt.Errorf("validator key: %w", err)
	}
	in, err = mainnetInput(cfg.Deploy, validator.Address())
	if err != nil {
		return nil, nil, in, err
	}

	client, err := dial(ctx, cfg.Mainnet)
	if err != nil {
		return nil, nil, in, err
	}
	client.AddSigner(deployer)
	client.AddSigner(validator)

	return chain.NewMainnet(client, deployer.Address(), set), client, in, nil
}

func openDappChain(ctx context.Context) (*chain.DappChain, *chain.Client, error) {
	set, err := contract.LoadSet(contractPaths(), contract.RoleDappChain)
	if err != nil {
		return nil, nil, err
	}
	deployer, err := resolveSigner(cfg.DappChain.DeployerKey)
	if err != nil {
		return nil, nil, fmt.Errorf("dappchain deployer key: %w", err)
	}

	client, err := dial(ctx, cfg.DappChain)
	if err != nil {
		return nil, nil, err
	}
	client.AddSigner(deployer)

	return chain.NewDappChain(client, deployer.Address(), set), client, nil
}

// mainnetInput converts deploy config into stage input. An empty validator set
// defaults to the validator key's own address.
func mainnetInput(d config.Deploy, validator common.Address) (deploy.MainnetInput, error) {
	maxSupply, mint, transfer, err := d.Amounts()
	if err != nil {
		return deploy.MainnetInput{}, err
	}

	validators := make([]common.Address, 0, len(d.Validators))
	for _, v := range d.Validators {
		validators = append(validators, common.HexToAddress(v))
	}
	if len(validators) == 0 {
		validators = append(validators, validator)
	}

	return deploy.MainnetInput{
		Validators:     validators,
		Validator:      validator,
		ThresholdNum:   big.NewInt(d.ThresholdNum),
		ThresholdDen:   big.NewInt(d.ThresholdDen),
		MaxSupply:      maxSupply,
		MintAmount:     mint,
		TransferAmount: transfer,
		TestUser:       common.HexToAddress(d.TestUser),
	}, nil
}

func announce(c *chain.Client) {
	fmt.Println(ui.Meta("Deploying to ") + ui.ChainName(networkLabel(c)))
}

func mainnetSummary(c *chain.Client, out *deploy.MainnetOutput) string {
	title := "Mainnet deployed"
	if out.Reused {
		title = "Mainnet reused"
	}
	pairs := [][2]string{
		{"Network", networkLabel(c)},
		{"Gateway", out.Gateway.Address.Hex()},
		{"Token", out.Token.Address.Hex()},
		{"Token tx", out.Token.TxHash.Hex()},
	}
	if !out.Reused {
		pairs = append(pairs,
			[2]string{"toggleToken tx", out.ToggleTx.Hex()},
			[2]string{"mintToken tx", out.MintTx.Hex()},
			[2]string{"transfer tx", out.TransferTx.Hex()},
		)
	}
	return ui.KeyValueBlock(ui.Success(title), pairs)
}

func dappChainSummary(c *chain.Client, out *deploy.DappChainOutput) string {
	title := "DAppChain token deployed"
	if out.Reused {
		title = "DAppChain token reused"
	}
	return ui.KeyValueBlock(ui.Success(title), [][2]string{
		{"Network", networkLabel(c)},
		{"Gateway", out.Gateway.Hex()},
		{"Token", out.Token.Address.Hex()},
		{"Token tx", out.Token.TxHash.Hex()},
	})
}
