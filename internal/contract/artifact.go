package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrNoBytecode is returned when deploying from an artifact that only carries an ABI.
var ErrNoBytecode = errors.New("artifact has no deployable bytecode")

// Artifact is a compiled contract: its ABI and, when present, its creation bytecode.
type Artifact struct {
	Name     string
	Path     string
	ABI      abi.ABI
	Bytecode []byte
}

// Deployable returns ErrNoBytecode when the artifact cannot be deployed.
func (a *Artifact) Deployable() error {
	if len(a.Bytecode) == 0 {
		return fmt.Errorf("%s: %w", a.Name, ErrNoBytecode)
	}
	return nil
}

// Require checks that every named method is present in the ABI.
func (a *Artifact) Require(methods ...string) error {
	var missing []string
	for _, m := range methods {
		if _, ok := a.ABI.Methods[m]; !ok {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s (%s) is missing method(s): %s", a.Name, a.Path, strings.Join(missing, ", "))
	}
	return nil
}

// Signatures returns the method signatures in ABI order, e.g. "transfer(address,uint256)".
func (a *Artifact) Signatures() []string {
	out := make([]string, 0, len(a.ABI.Methods))
	for _, m := range a.ABI.Methods {
		out = append(out, m.Sig)
	}
	sort.Strings(out)
	return out
}

// Load reads a Truffle, Hardhat or Foundry artifact, or a raw ABI array.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a, err := Parse(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.Path = path
	return a, nil
}

// Parse decodes artifact JSON. A "contractName" field, when present, overrides name.
func Parse(name string, data []byte) (*Artifact, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("artifact is empty")
	}

	// Raw ABI array.
	if data[0] == '[' {
		parsed, err := parseABI(data)
		if err != nil {
			return nil, err
		}
		return &Artifact{Name: name, ABI: parsed}, nil
	}

	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, errors.New(`artifact has no "abi" array`)
	}
	parsed, err := parseABI(raw.ABI)
	if err != nil {
		return nil, err
	}
	if raw.ContractName != "" {
		name = raw.ContractName
	}

	a := &Artifact{Name: name, ABI: parsed}
	if len(raw.Bytecode) == 0 || string(raw.Bytecode) == "null" {
		return a, nil
	}

	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("extracting bytecode: %w", err)
	}
	bcHex = strings.TrimPrefix(bcHex, "0x")
	if strings.Contains(bcHex, "__") {
		return nil, errors.New("bytecode has unlinked library placeholders")
	}
	if bcHex == "" {
		return a, nil
	}
	a.Bytecode, err = hex.DecodeString(bcHex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex: %w", err)
	}
	return a, nil
}

func parseABI(data []byte) (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	if len(parsed.Methods) == 0 && len(parsed.Events) == 0 && len(parsed.Constructor.Inputs) == 0 {
		return abi.ABI{}, errors.New("ABI has no functions, events or constructor")
	}
	return parsed, nil
}

// extractBytecodeHex handles the two common artifact formats:
//   - Truffle/Hardhat: "bytecode": "0x608060..."
//   - Foundry:         "bytecode": {"object": "0x608060..."}
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", errors.New(`bytecode field is neither a hex string nor a {"object":"0x..."} object`)
}
