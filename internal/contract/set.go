package contract

import (
	"errors"
	"fmt"
	"strings"
)

// Method names called on the bridge contracts.
const (
	MethodToggleToken      = "toggleToken"
	MethodMintToken        = "mintToken"
	MethodTransfer         = "transfer"
	MethodBalanceOfUser    = "getBalanceOfUser"
	MethodDepositOnGateway = "depositTokenOnGateway"
	MethodTokenName        = "getTokenName"
	MethodMappedAccount    = "getMappedAccount"
)

// Methods each contract role must expose.
var (
	GatewayMethods   = []string{MethodToggleToken}
	TokenMethods     = []string{MethodMintToken, MethodTransfer}
	BridgeMethods    = []string{MethodBalanceOfUser, MethodDepositOnGateway, MethodTokenName}
	MapperMethods    = []string{MethodMappedAccount}
	DappChainMethods = []string{}
)

// Paths locates the artifact file for each contract role.
type Paths struct {
	Gateway        string
	Token          string
	DappChainToken string
	Mapper         string
}

// Set bundles the contracts used by the deploy pipelines and the bridge view.
// Unused roles stay nil.
type Set struct {
	Gateway        *Artifact
	Token          *Artifact
	DappChainToken *Artifact
	Mapper         *Artifact
}

// Role selects which members of a Set to load.
type Role int

const (
	RoleMainnet Role = 1 << iota
	RoleDappChain
	RoleBridge
)

// LoadSet loads and checks the artifacts needed for roles.
// The mapper falls back to the built-in ABI when no path is configured.
func LoadSet(p Paths, roles Role) (*Set, error) {
	s := &Set{}
	var errs []error

	load := func(path, label string, deployable bool, methods ...string) *Artifact {
		if strings.TrimSpace(path) == "" {
			errs = append(errs, fmt.Errorf("%s artifact path is not configured", label))
			return nil
		}
		a, err := Load(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
			return nil
		}
		if deployable {
			if err := a.Deployable(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := a.Require(methods...); err != nil {
			errs = append(errs, err)
		}
		return a
	}

	if roles&RoleMainnet != 0 {
		s.Gateway = load(p.Gateway, "gateway", true, GatewayMethods...)
		s.Token = load(p.Token, "token", true, TokenMethods...)
	}
	if roles&RoleDappChain != 0 {
		s.DappChainToken = load(p.DappChainToken, "dappchain token", true, DappChainMethods...)
	}
	if roles&RoleBridge != 0 {
		if s.Token == nil {
			s.Token = load(p.Token, "token", false, BridgeMethods...)
		} else if err := s.Token.Require(BridgeMethods...); err != nil {
			errs = append(errs, err)
		}
		if p.Mapper == "" {
			s.Mapper = Mapper()
		} else {
			s.Mapper = load(p.Mapper, "mapper", false, MapperMethods...)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}
