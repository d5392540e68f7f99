package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultMaxSupply      = "1000"
	defaultTransferAmount = "100"
	defaultThresholdNum   = 3
	defaultThresholdDen   = 4
	defaultLogFormat      = "text"

	configName = "springbridge"
	configFile = configName + ".yaml"
	envPrefix  = "SPRINGBRIDGE"
)

// Load reads config from dir (or falls back to defaults). dir defaults to ~/.springbridge.
// Values may be overridden with SPRINGBRIDGE_* environment variables, e.g.
// SPRINGBRIDGE_MAINNET_RPC_URL.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".springbridge")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir

	return cfg, nil
}

// Default returns the built-in defaults for dir. Config files and SPRINGBRIDGE_*
// environment variables are not consulted.
func Default(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing defaults: %w", err)
	}
	cfg.configDir = dir
	return cfg, nil
}

// Save writes the config to <dir>/springbridge.yaml.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path(), data, 0o600)
}

// Path returns the config file path Save writes to.
func (c *Config) Path() string {
	return filepath.Join(c.configDir, configFile)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ValidateMainnet checks everything the mainnet pipeline needs.
func (c *Config) ValidateMainnet() error {
	var errs []error

	if c.Mainnet.RPCURL == "" {
		errs = append(errs, errors.New("mainnet.rpc_url is required"))
	}
	if c.Mainnet.DeployerKey == "" {
		errs = append(errs, errors.New("mainnet.deployer_key is required"))
	}
	if c.Deploy.ValidatorKey == "" {
		errs = append(errs, errors.New("deploy.validator_key is required"))
	}
	if c.Contracts.Gateway == "" {
		errs = append(errs, errors.New("contracts.gateway is required"))
	}
	if c.Contracts.Token == "" {
		errs = append(errs, errors.New("contracts.token is required"))
	}
	if c.Deploy.TestUser == "" {
		errs = append(errs, errors.New("deploy.test_user is required"))
	} else if !common.IsHexAddress(c.Deploy.TestUser) {
		errs = append(errs, fmt.Errorf("deploy.test_user %q is not an address", c.Deploy.TestUser))
	}
	for _, v := range c.Deploy.Validators {
		if !common.IsHexAddress(v) {
			errs = append(errs, fmt.Errorf("deploy.validators: %q is not an address", v))
		}
	}
	if c.Deploy.ThresholdNum <= 0 || c.Deploy.ThresholdDen <= 0 || c.Deploy.ThresholdNum > c.Deploy.ThresholdDen {
		errs = append(errs, fmt.Errorf("deploy threshold %d/%d must satisfy 0 < numerator <= denominator",
			c.Deploy.ThresholdNum, c.Deploy.ThresholdDen))
	}
	if _, _, _, err := c.Deploy.Amounts(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateDappChain checks everything the DAppChain pipeline needs.
func (c *Config) ValidateDappChain() error {
	var errs []error

	if c.DappChain.RPCURL == "" {
		errs = append(errs, errors.New("dappchain.rpc_url is required"))
	}
	if c.DappChain.DeployerKey == "" {
		errs = append(errs, errors.New("dappchain.deployer_key is required"))
	}
	if c.Contracts.DappChainToken == "" {
		errs = append(errs, errors.New("contracts.dappchain_token is required"))
	}
	switch c.Deploy.GatewaySource {
	case GatewayFromArtifact, GatewayFromMainnet:
	default:
		errs = append(errs, fmt.Errorf("deploy.gateway_source %q must be %q or %q",
			c.Deploy.GatewaySource, GatewayFromArtifact, GatewayFromMainnet))
	}
	if c.Deploy.GatewaySource == GatewayFromArtifact && c.Deploy.GatewayArtifact == "" {
		errs = append(errs, errors.New("deploy.gateway_artifact is required when gateway_source is artifact"))
	}
	if _, err := ParseAmount("deploy.max_supply", c.Deploy.MaxSupply); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateBridge checks everything the bridge view needs.
func (c *Config) ValidateBridge() error {
	var errs []error

	if c.Mainnet.RPCURL == "" {
		errs = append(errs, errors.New("mainnet.rpc_url is required"))
	}
	if c.DappChain.RPCURL == "" {
		errs = append(errs, errors.New("dappchain.rpc_url is required"))
	}
	if c.Bridge.UserKey == "" {
		errs = append(errs, errors.New("bridge.user_key is required"))
	}
	if c.Contracts.Token == "" {
		errs = append(errs, errors.New("contracts.token is required"))
	}
	if c.Bridge.MapperAddress == "" {
		errs = append(errs, errors.New("bridge.mapper_address is required"))
	} else if !common.IsHexAddress(c.Bridge.MapperAddress) {
		errs = append(errs, fmt.Errorf("bridge.mapper_address %q is not an address", c.Bridge.MapperAddress))
	}
	if c.Bridge.Amount != "" {
		if _, err := ParseAmount("bridge.amount", c.Bridge.Amount); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Amounts parses max supply, mint and transfer amounts and checks
// transfer <= mint <= max supply.
func (d Deploy) Amounts() (maxSupply, mint, transfer *big.Int, err error) {
	maxSupply, err = ParseAmount("deploy.max_supply", d.MaxSupply)
	if err != nil {
		return nil, nil, nil, err
	}
	mint = new(big.Int).Set(maxSupply)
	if d.MintAmount != "" {
		if mint, err = ParseAmount("deploy.mint_amount", d.MintAmount); err != nil {
			return nil, nil, nil, err
		}
	}
	transfer, err = ParseAmount("deploy.transfer_amount", d.TransferAmount)
	if err != nil {
		return nil, nil, nil, err
	}
	if mint.Cmp(maxSupply) > 0 {
		return nil, nil, nil, fmt.Errorf("deploy.mint_amount %s exceeds max_supply %s", mint, maxSupply)
	}
	if transfer.Cmp(mint) > 0 {
		return nil, nil, nil, fmt.Errorf("deploy.transfer_amount %s exceeds mint_amount %s", transfer, mint)
	}
	return maxSupply, mint, transfer, nil
}

// ParseAmount parses a positive base-unit integer (decimal or 0x hex).
func ParseAmount(field, s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, fmt.Errorf("%s: invalid integer %q", field, s)
	}
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("%s: must be positive, got %s", field, n)
	}
	return n, nil
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("artifact_dir", ".")
	v.SetDefault("log_format", defaultLogFormat)

	v.SetDefault("mainnet.name", "ethereum")
	v.SetDefault("mainnet.rpc_url", "http://127.0.0.1:8545")
	v.SetDefault("mainnet.deployer_key", "")
	v.SetDefault("dappchain.name", "dappchain")
	v.SetDefault("dappchain.rpc_url", "http://127.0.0.1:46658/eth")
	v.SetDefault("dappchain.deployer_key", "")

	v.SetDefault("contracts.gateway", "truffle-ethereum/build/contracts/Gateway.json")
	v.SetDefault("contracts.token", "truffle-ethereum/build/contracts/SpringToken.json")
	v.SetDefault("contracts.dappchain_token", "truffle-dappchain/build/contracts/SPRINGTokenDappChain.json")
	v.SetDefault("contracts.mapper", "")

	v.SetDefault("deploy.validators", []string{})
	v.SetDefault("deploy.validator_key", "")
	v.SetDefault("deploy.threshold_numerator", defaultThresholdNum)
	v.SetDefault("deploy.threshold_denominator", defaultThresholdDen)
	v.SetDefault("deploy.max_supply", defaultMaxSupply)
	v.SetDefault("deploy.mint_amount", "")
	v.SetDefault("deploy.transfer_amount", defaultTransferAmount)
	v.SetDefault("deploy.test_user", "")
	v.SetDefault("deploy.gateway_source", GatewayFromArtifact)
	v.SetDefault("deploy.gateway_artifact", "gateway_dappchain_address")
	v.SetDefault("deploy.reuse_existing", false)

	v.SetDefault("bridge.user_key", "")
	v.SetDefault("bridge.mapper_address", "")
	v.SetDefault("bridge.amount", "")
}
