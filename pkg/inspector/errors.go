// Copyright 2025 Tokenlens
//
// Sentinel errors for the inspection entry points. Only these escape
// InspectToken; every other failure degrades into the report.

package inspector

import "errors"

var (
	// ErrNoWorkingRpc means every RPC endpoint for the chain failed the
	// probe. Fatal for the inspection.
	ErrNoWorkingRpc = errors.New("no working RPC endpoint for chain")

	// ErrUnsupportedChain means the chain id is not in the registry.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrInvalidAddress means the contract address failed validation.
	ErrInvalidAddress = errors.New("invalid contract address")

	// ErrInvalidTokenID means the token id failed validation.
	ErrInvalidTokenID = errors.New("invalid token id")
)
