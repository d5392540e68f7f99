package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenABI = `[
  {"type":"constructor","inputs":[{"name":"maxSupply","type":"uint256"},{"name":"gateway","type":"address"}],"stateMutability":"nonpayable"},
  {"type":"function","name":"mintToken","inputs":[{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
  {"type":"function","name":"getBalanceOfUser","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"depositTokenOnGateway","inputs":[{"name":"from","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"getTokenName","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"}
]`

const gatewayABI = `[
  {"type":"constructor","inputs":[{"name":"validators","type":"address[]"},{"name":"num","type":"uint8"},{"name":"den","type":"uint8"}],"stateMutability":"nonpayable"},
  {"type":"function","name":"toggleToken","inputs":[{"name":"token","type":"address"}],"outputs":[],"stateMutability":"nonpayable"}
]`

func writeArtifact(t *testing.T, dir, file string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func truffle(name, abiJSON, bytecode string) map[string]any {
	return map[string]any{
		"contractName": name,
		"abi":          json.RawMessage(abiJSON),
		"bytecode":     bytecode,
	}
}

func TestLoadTruffleArtifact(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "SpringToken.json", truffle("SpringToken", tokenABI, "0xaabbcc"))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SpringToken", a.Name)
	assert.Equal(t, path, a.Path)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, a.Bytecode)
	assert.NoError(t, a.Deployable())
	assert.Len(t, a.ABI.Constructor.Inputs, 2)
	assert.NoError(t, a.Require(TokenMethods...))
	assert.NoError(t, a.Require(BridgeMethods...))
}

func TestLoadFoundryArtifact(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "Gateway.json", map[string]any{
		"abi":      json.RawMessage(gatewayABI),
		"bytecode": map[string]string{"object": "0x6080"},
	})

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Gateway", a.Name, "name falls back to the file name")
	assert.Equal(t, []byte{0x60, 0x80}, a.Bytecode)
	assert.NoError(t, a.Require(GatewayMethods...))
}

func TestLoadRawABIIsNotDeployable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.abi")
	require.NoError(t, os.WriteFile(path, []byte(tokenABI), 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Deployable(), ErrNoBytecode)
}

func TestLoadEmptyBytecodeIsNotDeployable(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "IToken.json", truffle("IToken", tokenABI, "0x"))

	a, err := Load(path)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Deployable(), ErrNoBytecode)
}

func TestLoadRejectsUnlinkedLibrary(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "T.json", truffle("T", tokenABI, "0x6080__SafeMath______________________6080"))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unlinked library")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "cannot read artifact file")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Load(empty)
	assert.ErrorContains(t, err, "empty")

	noABI := writeArtifact(t, dir, "noabi.json", map[string]any{"bytecode": "0x00"})
	_, err = Load(noABI)
	assert.ErrorContains(t, err, `no "abi" array`)

	badHex := writeArtifact(t, dir, "badhex.json", truffle("X", tokenABI, "0xzz"))
	_, err = Load(badHex)
	assert.ErrorContains(t, err, "invalid bytecode hex")

	badBytecode := writeArtifact(t, dir, "badbc.json", map[string]any{
		"abi":      json.RawMessage(tokenABI),
		"bytecode": 42,
	})
	_, err = Load(badBytecode)
	assert.ErrorContains(t, err, "neither a hex string")
}

func TestRequireListsMissingMethods(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "Gateway.json", truffle("Gateway", gatewayABI, "0x00"))
	a, err := Load(path)
	require.NoError(t, err)

	err = a.Require(MethodToggleToken, MethodMintToken, MethodTransfer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mintToken, transfer")
	assert.NotContains(t, err.Error(), "toggleToken")
}

func TestSignaturesSorted(t *testing.T) {
	a, err := Parse("SpringToken", []byte(tokenABI))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"depositTokenOnGateway(address,uint256)",
		"getBalanceOfUser(address)",
		"getTokenName()",
		"mintToken(uint256)",
		"transfer(address,uint256)",
	}, a.Signatures())
}

func TestBuiltinMapper(t *testing.T) {
	m := Mapper()
	assert.Equal(t, "AddressMapper", m.Name)
	assert.NoError(t, m.Require(MapperMethods...))
	assert.ErrorIs(t, m.Deployable(), ErrNoBytecode)
}

func TestLoadSetMainnet(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Gateway: writeArtifact(t, dir, "Gateway.json", truffle("Gateway", gatewayABI, "0x01")),
		Token:   writeArtifact(t, dir, "SpringToken.json", truffle("SpringToken", tokenABI, "0x02")),
	}

	set, err := LoadSet(paths, RoleMainnet)
	require.NoError(t, err)
	assert.NotNil(t, set.Gateway)
	assert.NotNil(t, set.Token)
	assert.Nil(t, set.DappChainToken)
	assert.Nil(t, set.Mapper)
}

func TestLoadSetBridgeUsesBuiltinMapper(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{Token: writeArtifact(t, dir, "SpringToken.abi", json.RawMessage(tokenABI))}

	set, err := LoadSet(paths, RoleBridge)
	require.NoError(t, err)
	assert.Equal(t, "builtin", set.Mapper.Path)
	assert.NotNil(t, set.Token)
}

func TestLoadSetCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Gateway: writeArtifact(t, dir, "Gateway.json", truffle("Gateway", tokenABI, "0x01")),
		Token:   filepath.Join(dir, "missing.json"),
	}

	_, err := LoadSet(paths, RoleMainnet|RoleDappChain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing method(s): toggleToken")
	assert.Contains(t, err.Error(), "token:")
	assert.Contains(t, err.Error(), "dappchain token artifact path is not configured")
}
