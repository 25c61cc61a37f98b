// Copyright 2025 Tokenlens
//
// ABI helpers

package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MustParseABI parses a JSON ABI definition and panics on failure. Intended
// for package-level constants only.
func MustParseABI(definition string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic("invalid ABI definition: " + err.Error())
	}
	return &parsed
}
