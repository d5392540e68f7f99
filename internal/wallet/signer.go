package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds one private key and produces transactors for it.
type Signer struct {
	name string
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewSigner wraps a parsed private key.
func NewSigner(name string, key *ecdsa.PrivateKey) *Signer {
	return &Signer{name: name, key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

// Resolve turns a key reference into a Signer. A 32-byte hex string is used as the
// private key itself; anything else is treated as the name of an imported key.
func Resolve(ks KeystoreBackend, ref string) (*Signer, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty key reference", ErrInvalidKey)
	}

	if IsHexKey(ref) {
		key, err := crypto.HexToECDSA(normaliseHexKey(ref))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return NewSigner("", key), nil
	}

	hexKey, err := ks.Retrieve(refFor(ref))
	if err != nil {
		return nil, fmt.Errorf("retrieving key %q: %w", ref, err)
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: stored key %q: %v", ErrInvalidKey, ref, err)
	}
	return NewSigner(ref, key), nil
}

// IsHexKey reports whether s looks like a raw 32-byte private key.
func IsHexKey(s string) bool {
	s = normaliseHexKey(s)
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Name returns the keystore name, or "" for a raw key.
func (s *Signer) Name() string {
	return s.name
}

// Address returns the signer's address.
func (s *Signer) Address() common.Address {
	return s.addr
}

// CurrentAccount returns the signer's address; it is the bridge view's account source.
func (s *Signer) CurrentAccount(context.Context) (common.Address, error) {
	return s.addr, nil
}

// TransactOpts returns a keyed transactor bound to chainID.
func (s *Signer) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, chainID)
	if err != nil {
		return nil, fmt.Errorf("creating transactor for %s: %w", s.addr.Hex(), err)
	}
	return opts, nil
}
