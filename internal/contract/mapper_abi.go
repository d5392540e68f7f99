package contract

import "strings"

// mapperABI is the read side of the DAppChain address mapper: it resolves a mainnet
// account to the DAppChain account it has been linked with, or the zero address.
const mapperABI = `[
  {
    "type": "function",
    "name": "getMappedAccount",
    "stateMutability": "view",
    "inputs": [{"name": "from", "type": "address"}],
    "outputs": [{"name": "", "type": "address"}]
  }
]`

// Mapper returns the built-in address mapper artifact.
func Mapper() *Artifact {
	a, err := Parse("AddressMapper", []byte(strings.TrimSpace(mapperABI)))
	if err != nil {
		panic("contract: built-in mapper ABI: " + err.Error())
	}
	a.Path = "builtin"
	return a
}
