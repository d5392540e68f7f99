package config

import "time"

// Timeout constants used across cmd and the chain client.
const (
	RPCReadyTimeout  = 30 * time.Second // waiting for a node to answer eth_blockNumber
	TxConfirmTimeout = 3 * time.Minute  // standard transaction confirmation wait
	TxDeployTimeout  = 5 * time.Minute  // contract deployment confirmation wait
)

// Gateway sources for the DAppChain stage.
const (
	GatewayFromArtifact = "artifact"
	GatewayFromMainnet  = "mainnet"
)
