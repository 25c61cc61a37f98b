// Copyright 2025 Tokenlens
//
// Structured EVM JSON-RPC client: typed batch contract calls with
// deterministic error categorisation.

package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Revert payload selectors: Error(string) and Panic(uint256).
const (
	errorSelector = "08c379a0"
	panicSelector = "4e487b71"
)

// funcNotFoundMarkers are node messages that distinguish a missing selector
// from an ordinary revert.
var funcNotFoundMarkers = []string{
	"function selector was not recognized",
	"function not found",
}

// ContractCall is one read-only contract invocation.
type ContractCall struct {
	To     common.Address
	ABI    *abi.ABI
	Method string
	Args   []interface{}
}

// Client wraps a JSON-RPC transport for one chain.
type Client struct {
	rpc *gethrpc.Client
	url string
}

// Dial connects to an EVM JSON-RPC endpoint.
func Dial(ctx context.Context, rawurl string) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}
	return &Client{rpc: c, url: rawurl}, nil
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// Close releases the underlying transport.
func (c *Client) Close() {
	c.rpc.Close()
}

// Call performs a single eth_call and ABI-decodes the outputs.
func (c *Client) Call(ctx context.Context, call ContractCall) Result {
	data, err := call.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return Fail(ErrKindUnknown, fmt.Sprintf("failed to pack %s: %v", call.Method, err))
	}

	var raw hexutil.Bytes
	err = c.rpc.CallContext(ctx, &raw, "eth_call", callArg(call.To, data), "latest")
	if err != nil {
		return categorize(err)
	}

	return decodeOutput(call, raw)
}

// Batch performs many eth_calls with per-call error isolation. Result i
// always corresponds to input i regardless of completion order.
func (c *Client) Batch(ctx context.Context, calls []ContractCall) []Result {
	results := make([]Result, len(calls))
	elems := make([]gethrpc.BatchElem, len(calls))
	raws := make([]hexutil.Bytes, len(calls))

	for i, call := range calls {
		data, err := call.ABI.Pack(call.Method, call.Args...)
		if err != nil {
			results[i] = Fail(ErrKindUnknown, fmt.Sprintf("failed to pack %s: %v", call.Method, err))
			elems[i] = gethrpc.BatchElem{Method: "eth_blockNumber", Result: new(string)}
			continue
		}
		elems[i] = gethrpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{callArg(call.To, data), "latest"},
			Result: &raws[i],
		}
	}

	if err := c.rpc.BatchCallContext(ctx, elems); err != nil {
		// Whole-batch transport failure: every pending call fails the
		// same way.
		failure := categorize(err)
		for i := range results {
			if !results[i].Success && results[i].Kind == "" {
				results[i] = failure
			}
		}
		return results
	}

	for i, call := range calls {
		if results[i].Kind != "" {
			continue
		}
		if elems[i].Error != nil {
			results[i] = categorize(elems[i].Error)
			continue
		}
		results[i] = decodeOutput(call, raws[i])
	}
	return results
}

// StorageAt reads one 32-byte storage slot.
func (c *Client) StorageAt(ctx context.Context, addr common.Address, slot common.Hash) ([]byte, error) {
	var raw hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &raw, "eth_getStorageAt", addr, slot, "latest"); err != nil {
		return nil, fmt.Errorf("eth_getStorageAt failed: %w", err)
	}
	return raw, nil
}

// CodeAt returns the runtime bytecode at an address.
func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	var raw hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &raw, "eth_getCode", addr, "latest"); err != nil {
		return nil, fmt.Errorf("eth_getCode failed: %w", err)
	}
	return raw, nil
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var raw hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &raw, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}
	return uint64(raw), nil
}

// LatestBlockTimestamp returns the timestamp of the latest block.
func (c *Client) LatestBlockTimestamp(ctx context.Context) (uint64, error) {
	var head struct {
		Timestamp hexutil.Uint64 `json:"timestamp"`
	}
	if err := c.rpc.CallContext(ctx, &head, "eth_getBlockByNumber", "latest", false); err != nil {
		return 0, fmt.Errorf("eth_getBlockByNumber failed: %w", err)
	}
	return uint64(head.Timestamp), nil
}

func callArg(to common.Address, data []byte) interface{} {
	return map[string]interface{}{
		"to":   to,
		"data": hexutil.Bytes(data),
	}
}

// decodeOutput unpacks a successful eth_call reply. Empty return data where
// outputs are expected means there is no code behind the address.
func decodeOutput(call ContractCall, raw []byte) Result {
	method, ok := call.ABI.Methods[call.Method]
	if !ok {
		return Fail(ErrKindUnknown, fmt.Sprintf("method %s not in ABI", call.Method))
	}

	if len(raw) == 0 && len(method.Outputs) > 0 {
		return Fail(ErrKindContractNotFound, fmt.Sprintf("no code at address %s", call.To.Hex()))
	}

	values, err := call.ABI.Unpack(call.Method, raw)
	if err != nil {
		return Fail(ErrKindRPC, fmt.Sprintf("failed to decode %s output: %v", call.Method, err))
	}
	return OK(values)
}

// categorize maps any transport or node error to exactly one ErrorKind.
func categorize(err error) Result {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Fail(ErrKindTimeout, err.Error())
	}

	// Revert payloads ride on DataError; the selector decides the kind.
	var dataErr gethrpc.DataError
	if errors.As(err, &dataErr) {
		if raw, ok := dataErr.ErrorData().(string); ok && strings.HasPrefix(raw, "0x") {
			hexData := strings.ToLower(strings.TrimPrefix(raw, "0x"))
			switch {
			case strings.HasPrefix(hexData, panicSelector):
				return FailData(ErrKindPanicError, err.Error(), raw)
			case strings.HasPrefix(hexData, errorSelector):
				if isFunctionNotFound(err.Error()) {
					return FailData(ErrKindFunctionNotFound, err.Error(), raw)
				}
				return FailData(ErrKindExecutionReverted, err.Error(), raw)
			case len(hexData) >= 8:
				return FailData(ErrKindCustomError, err.Error(), raw)
			}
		}
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "execution reverted") {
		if isFunctionNotFound(msg) {
			return Fail(ErrKindFunctionNotFound, err.Error())
		}
		return Fail(ErrKindExecutionReverted, err.Error())
	}
	if strings.Contains(msg, "no code at address") {
		return Fail(ErrKindContractNotFound, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Fail(ErrKindTimeout, err.Error())
		}
		return Fail(ErrKindNetwork, err.Error())
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Fail(ErrKindNetwork, err.Error())
	}

	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		return Fail(ErrKindRPC, err.Error())
	}

	return Fail(ErrKindUnknown, err.Error())
}

func isFunctionNotFound(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range funcNotFoundMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Typed accessors over Result.Values. Each returns the zero value with
// ok=false when the call failed or the slot holds a different type.

// Address returns output i as an address.
func (r Result) Address(i int) (common.Address, bool) {
	if !r.Success || i >= len(r.Values) {
		return common.Address{}, false
	}
	addr, ok := r.Values[i].(common.Address)
	return addr, ok
}

// Bool returns output i as a bool.
func (r Result) Bool(i int) (bool, bool) {
	if !r.Success || i >= len(r.Values) {
		return false, false
	}
	b, ok := r.Values[i].(bool)
	return b, ok
}

// String returns output i as a string.
func (r Result) String(i int) (string, bool) {
	if !r.Success || i >= len(r.Values) {
		return "", false
	}
	s, ok := r.Values[i].(string)
	return s, ok
}

// BigInt returns output i as a big integer.
func (r Result) BigInt(i int) (*big.Int, bool) {
	if !r.Success || i >= len(r.Values) {
		return nil, false
	}
	n, ok := r.Values[i].(*big.Int)
	return n, ok
}
