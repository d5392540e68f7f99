package config

// Config holds all springbridge configuration.
type Config struct {
	ArtifactDir string `mapstructure:"artifact_dir" yaml:"artifact_dir"`
	LogFormat   string `mapstructure:"log_format"   yaml:"log_format"` // "text" | "json"

	Mainnet   Network   `mapstructure:"mainnet"   yaml:"mainnet"`
	DappChain Network   `mapstructure:"dappchain" yaml:"dappchain"`
	Contracts Contracts `mapstructure:"contracts" yaml:"contracts"`
	Deploy    Deploy    `mapstructure:"deploy"    yaml:"deploy"`
	Bridge    Bridge    `mapstructure:"bridge"    yaml:"bridge"`

	// internal: config dir path used for Save()
	configDir string
}

// Network is one chain endpoint plus the key that deploys to it.
type Network struct {
	Name        string `mapstructure:"name"         yaml:"name"`
	RPCURL      string `mapstructure:"rpc_url"      yaml:"rpc_url"`
	DeployerKey string `mapstructure:"deployer_key" yaml:"deployer_key"` // keychain name or raw hex key
}

// Contracts points at compiled build artifacts (Truffle, Hardhat or Foundry JSON).
type Contracts struct {
	Gateway        string `mapstructure:"gateway"         yaml:"gateway"`
	Token          string `mapstructure:"token"           yaml:"token"`
	DappChainToken string `mapstructure:"dappchain_token" yaml:"dappchain_token"`
	Mapper         string `mapstructure:"mapper"          yaml:"mapper"` // optional; built-in ABI when empty
}

// Deploy holds the parameters of both deployment pipelines.
type Deploy struct {
	Validators      []string `mapstructure:"validators"            yaml:"validators"`
	ValidatorKey    string   `mapstructure:"validator_key"         yaml:"validator_key"`
	ThresholdNum    int64    `mapstructure:"threshold_numerator"   yaml:"threshold_numerator"`
	ThresholdDen    int64    `mapstructure:"threshold_denominator" yaml:"threshold_denominator"`
	MaxSupply       string   `mapstructure:"max_supply"            yaml:"max_supply"`
	MintAmount      string   `mapstructure:"mint_amount"           yaml:"mint_amount"` // empty = max_supply
	TransferAmount  string   `mapstructure:"transfer_amount"       yaml:"transfer_amount"`
	TestUser        string   `mapstructure:"test_user"             yaml:"test_user"`
	GatewaySource   string   `mapstructure:"gateway_source"        yaml:"gateway_source"` // "artifact" | "mainnet"
	GatewayArtifact string   `mapstructure:"gateway_artifact"      yaml:"gateway_artifact"`
	ReuseExisting   bool     `mapstructure:"reuse_existing"        yaml:"reuse_existing"`
}

// Bridge configures the balance view and the deposit action.
type Bridge struct {
	UserKey       string `mapstructure:"user_key"       yaml:"user_key"`
	MapperAddress string `mapstructure:"mapper_address" yaml:"mapper_address"`
	Amount        string `mapstructure:"amount"         yaml:"amount"` // empty = whole balance
}
