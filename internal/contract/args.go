package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// CoerceArgs converts *big.Int arguments to the fixed-width Go types the ABI packer
// expects for narrow integer parameters (uint8 … uint64, int8 … int64). Other values
// pass through unchanged.
func CoerceArgs(inputs abi.Arguments, args []any) ([]any, error) {
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("argument count mismatch: expected %d, got %d", len(inputs), len(args))
	}
	out := make([]any, len(args))
	for i, arg := range args {
		n, ok := arg.(*big.Int)
		if !ok {
			out[i] = arg
			continue
		}
		v, err := coerceInt(inputs[i].Type, n)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, inputs[i].Name, err)
		}
		out[i] = v
	}
	return out, nil
}

func coerceInt(t abi.Type, n *big.Int) (any, error) {
	switch t.T {
	case abi.UintTy:
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for %s", n, t)
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("value %s overflows %s", n, t)
		}
		switch t.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		case 64:
			return n.Uint64(), nil
		}
	case abi.IntTy:
		if n.BitLen() >= t.Size {
			return nil, fmt.Errorf("value %s overflows %s", n, t)
		}
		switch t.Size {
		case 8:
			return int8(n.Int64()), nil
		case 16:
			return int16(n.Int64()), nil
		case 32:
			return int32(n.Int64()), nil
		case 64:
			return n.Int64(), nil
		}
	default:
		return nil, fmt.Errorf("cannot pass an integer as %s", t)
	}
	return n, nil
}
