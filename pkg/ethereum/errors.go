// Copyright 2025 Tokenlens
//
// RPC error taxonomy. Every transport or decode failure is mapped to one
// closed ErrorKind; callers pattern-match on the kind, never on message text.

package ethereum

// ErrorKind is the closed set of RPC failure categories.
type ErrorKind string

const (
	ErrKindRPC               ErrorKind = "rpc_error"
	ErrKindContractNotFound  ErrorKind = "contract_not_found"
	ErrKindFunctionNotFound  ErrorKind = "function_not_found"
	ErrKindExecutionReverted ErrorKind = "execution_reverted"
	ErrKindCustomError       ErrorKind = "custom_error"
	ErrKindPanicError        ErrorKind = "panic_error"
	ErrKindTimeout           ErrorKind = "timeout"
	ErrKindNetwork           ErrorKind = "network_error"
	ErrKindUnknown           ErrorKind = "unknown_error"
)

// Result is the outcome of one contract call. Either Success is true and
// Values holds the ABI-decoded outputs, or Kind carries the failure category.
type Result struct {
	Success bool      `json:"success"`
	Kind    ErrorKind `json:"error_type,omitempty"`
	Message string    `json:"error_message,omitempty"`
	Data    string    `json:"error_data,omitempty"`

	Values []interface{} `json:"-"`
}

// OK builds a successful result.
func OK(values []interface{}) Result {
	return Result{Success: true, Values: values}
}

// Fail builds a failed result with the given category.
func Fail(kind ErrorKind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// FailData builds a failed result carrying raw revert data.
func FailData(kind ErrorKind, message, data string) Result {
	return Result{Kind: kind, Message: message, Data: data}
}
