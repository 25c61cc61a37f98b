// Copyright 2025 Tokenlens
//
// 20-byte address value with an EIP-55 checksummed JSON view

package ethereum

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte EVM address. It compares as a fixed byte array and
// serialises in EIP-55 checksummed form. The zero address means "absent".
type Address struct {
	common.Address
}

// NewAddress wraps a raw address value.
func NewAddress(a common.Address) Address {
	return Address{Address: a}
}

// ParseAddress validates and parses a hex address string.
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return Address{Address: common.HexToAddress(s)}, nil
}

// IsZero reports whether this is the zero-address sentinel.
func (a Address) IsZero() bool {
	return a.Address == (common.Address{})
}

// MarshalJSON writes the checksummed hex form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON accepts any valid hex form and normalises it.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// OptionalAddress returns a pointer wrapper, or nil for the zero address.
func OptionalAddress(a common.Address) *Address {
	if a == (common.Address{}) {
		return nil
	}
	addr := NewAddress(a)
	return &addr
}
