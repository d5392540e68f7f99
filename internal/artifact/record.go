package artifact

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Well-known artifact names. Each is also written as a single-value file of the same name.
const (
	GatewayAddress          = "gateway_address"
	TokenAddress            = "game_token_address"
	TokenTxHash             = "game_token_tx_hash"
	DappChainTokenAddress   = "game_token_dappchain_address"
	DappChainGatewayAddress = "gateway_dappchain_address"
)

// Kind tells how a record's value is validated.
type Kind string

const (
	KindAddress Kind = "address"
	KindTxHash  Kind = "tx_hash"
)

// Record is one persisted address or transaction hash.
type Record struct {
	Name      string `json:"name"      yaml:"name"`
	Kind      Kind   `json:"kind"      yaml:"kind"`
	Value     string `json:"value"     yaml:"value"`
	Network   string `json:"network,omitempty"  yaml:"network,omitempty"`
	ChainID   uint64 `json:"chain_id,omitempty" yaml:"chain_id,omitempty"`
	WrittenAt string `json:"written_at" yaml:"written_at"`
	Checksum  string `json:"checksum"  yaml:"checksum"`
}

// AddressRecord builds an address record.
func AddressRecord(name string, addr common.Address, network string, chainID uint64) Record {
	return Record{Name: name, Kind: KindAddress, Value: addr.Hex(), Network: network, ChainID: chainID}
}

// TxHashRecord builds a transaction hash record.
func TxHashRecord(name string, hash common.Hash, network string, chainID uint64) Record {
	return Record{Name: name, Kind: KindTxHash, Value: hash.Hex(), Network: network, ChainID: chainID}
}

// Address returns the record value as an address.
func (r Record) Address() (common.Address, error) {
	if r.Kind != KindAddress {
		return common.Address{}, fmt.Errorf("%w: %s holds a %s, not an address", ErrInvalid, r.Name, r.Kind)
	}
	return common.HexToAddress(r.Value), nil
}

// validate checks the value against the kind.
func (r Record) validate() error {
	if err := r.validateName(); err != nil {
		return err
	}
	switch r.Kind {
	case KindAddress:
		if !common.IsHexAddress(r.Value) {
			return fmt.Errorf("%w: %s: %q is not an address", ErrInvalid, r.Name, r.Value)
		}
	case KindTxHash:
		if !isHash(r.Value) {
			return fmt.Errorf("%w: %s: %q is not a transaction hash", ErrInvalid, r.Name, r.Value)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalid, r.Name, r.Kind)
	}
	return nil
}

// inferKind guesses the kind of a bare value read from a legacy file.
func inferKind(value string) (Kind, bool) {
	switch {
	case common.IsHexAddress(value):
		return KindAddress, true
	case isHash(value):
		return KindTxHash, true
	}
	return "", false
}

func isHash(s string) bool {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 2*common.HashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// checksum is keccak256(name ":" value), hex encoded.
func checksum(name, value string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name + ":" + value))
	return hex.EncodeToString(h.Sum(nil))
}
