// Copyright 2025 Tokenlens
//
// RPC client tests against a canned JSON-RPC node

package ethereum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var testABI = MustParseABI(`[
	{"inputs":[],"name":"name","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"owner","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalSupply","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`)

// jsonrpcRequest mirrors the wire format.
type jsonrpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type jsonrpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// callReply routes a canned reply by calldata selector (first 8 hex chars).
type callReply struct {
	result string
	err    *jsonrpcError
}

// newFakeNode serves eth_call from a selector-keyed reply table, handling
// both single requests and batches.
func newFakeNode(t *testing.T, replies map[string]callReply) *httptest.Server {
	t.Helper()

	handleOne := func(req jsonrpcRequest) map[string]interface{} {
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if req.Method != "eth_call" {
			resp["error"] = jsonrpcError{Code: -32601, Message: "method not found"}
			return resp
		}

		var arg struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(req.Params[0], &arg); err != nil {
			resp["error"] = jsonrpcError{Code: -32602, Message: "invalid params"}
			return resp
		}
		selector := strings.TrimPrefix(arg.Data, "0x")
		if len(selector) > 8 {
			selector = selector[:8]
		}

		reply, ok := replies[selector]
		if !ok {
			resp["error"] = jsonrpcError{Code: 3, Message: "execution reverted"}
			return resp
		}
		if reply.err != nil {
			resp["error"] = reply.err
			return resp
		}
		resp["result"] = reply.result
		return resp
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
			var reqs []jsonrpcRequest
			if err := json.Unmarshal(raw, &reqs); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			out := make([]map[string]interface{}, len(reqs))
			for i, req := range reqs {
				out[i] = handleOne(req)
			}
			json.NewEncoder(w).Encode(out)
			return
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(handleOne(req))
	}))
}

// Encoded return values for the canned node.
const (
	// string "Test"
	encodedName = "0x" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"0000000000000000000000000000000000000000000000000000000000000004" +
		"5465737400000000000000000000000000000000000000000000000000000000"
)

const (
	selName        = "06fdde03"
	selOwner       = "8da5cb5b"
	selTotalSupply = "18160ddd"
)

var testContract = common.HexToAddress("0x1111111111111111111111111111111111111111")

func dialTest(t *testing.T, url string) *Client {
	t.Helper()
	client, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("failed to dial test node: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestCall_DecodesString(t *testing.T) {
	srv := newFakeNode(t, map[string]callReply{
		selName: {result: encodedName},
	})
	defer srv.Close()

	client := dialTest(t, srv.URL)
	result := client.Call(context.Background(), ContractCall{To: testContract, ABI: testABI, Method: "name"})

	if !result.Success {
		t.Fatalf("call failed: %s %s", result.Kind, result.Message)
	}
	name, ok := result.String(0)
	if !ok || name != "Test" {
		t.Errorf("decoded name = %q, want Test", name)
	}
}

func TestCall_ExecutionReverted(t *testing.T) {
	srv := newFakeNode(t, map[string]callReply{
		selName: {err: &jsonrpcError{Code: 3, Message: "execution reverted: nope"}},
	})
	defer srv.Close()

	client := dialTest(t, srv.URL)
	result := client.Call(context.Background(), ContractCall{To: testContract, ABI: testABI, Method: "name"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Kind != ErrKindExecutionReverted {
		t.Errorf("kind = %q, want execution_reverted", result.Kind)
	}
}

func TestCall_FunctionNotFound(t *testing.T) {
	srv := newFakeNode(t, map[string]callReply{
		selName: {err: &jsonrpcError{Code: 3, Message: "execution reverted: function selector was not recognized and there's no fallback function"}},
	})
	defer srv.Close()

	client := dialTest(t, srv.URL)
	result := client.Call(context.Background(), ContractCall{To: testContract, ABI: testABI, Method: "name"})

	if result.Kind != ErrKindFunctionNotFound {
		t.Errorf("kind = %q, want function_not_found", result.Kind)
	}
}

func TestCall_CustomError(t *testing.T) {
	srv := newFakeNode(t, map[string]callReply{
		// Custom error selector 0xdeadbeef with no recognised prefix.
		selName: {err: &jsonrpcError{Code: 3, Message: "execution reverted", Data: "0xdeadbeef"}},
	})
	defer srv.Close()

	client := dialTest(t, srv.URL)
	result := client.Call(context.Background(), ContractCall{To: testContract, ABI: testABI, Method: "name"})

	if result.Kind != ErrKindCustomError {
		t.Errorf("kind = %q, want custom_error", result.Kind)
	}
	if result.Data != "0xdeadbeef" {
		t.Errorf("data = %q", result.Data)
	}
}

func TestCall_PanicError(t *testing.T) {
	srv := newFakeNode(t, map[string]callReply{
		selName: {err: &jsonrpcError{
			Code:    3,
			Message: "execution reverted",
			Data:    "0x4e487b710000000000000000000000000000000000000000000000000000000000000012",
		}},
	})
	defer srv.Close()

	client := dialTest(t, srv.URL)
	result := client.Call(context.Background(), ContractCall{To: testContract, ABI: testABI, Method: "name"})

	if result.Kind != ErrKindPanicError {
		t.Errorf("kind = %q, want panic_error", result.Kind)
	}
}

func TestCall_EmptyReturnMeansNoContract(t *testing.T) {
	srv := newFakeNode(t, map[string]callReply{
		selName: {result: "0x"},
	})
	defer srv.Close()

	client := dialTest(t, srv.URL)
	result := client.Call(context.Background(), ContractCall{To: testContract, ABI: testABI, Method: "name"})

	if result.Kind != ErrKindContractNotFound {
		t.Errorf("kind = %q, want contract_not_found", result.Kind)
	}
}

func TestBatch_ErrorIsolationPreservesOrder(t *testing.T) {
	srv := newFakeNode(t, map[string]callReply{
		selName:        {result: encodedName},
		selOwner:       {err: &jsonrpcError{Code: 3, Message: "execution reverted: denied"}},
		selTotalSupply: {result: "0x0000000000000000000000000000000000000000000000000000000000000064"},
	})
	defer srv.Close()

	client := dialTest(t, srv.URL)
	results := client.Batch(context.Background(), []ContractCall{
		{To: testContract, ABI: testABI, Method: "name"},
		{To: testContract, ABI: testABI, Method: "owner"},
		{To: testContract, ABI: testABI, Method: "totalSupply"},
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].Success {
		t.Errorf("result 0 should succeed: %s", results[0].Message)
	}
	if results[1].Success || results[1].Kind != ErrKindExecutionReverted {
		t.Errorf("result 1 = %+v, want execution_reverted failure", results[1])
	}
	if !results[2].Success {
		t.Errorf("result 2 should succeed: %s", results[2].Message)
	}

	supply, ok := results[2].BigInt(0)
	if !ok || supply.Int64() != 100 {
		t.Errorf("total supply = %v, want 100", supply)
	}
}

func TestCall_NetworkError(t *testing.T) {
	srv := newFakeNode(t, nil)
	srv.Close() // immediately unreachable

	client := dialTest(t, srv.URL)
	result := client.Call(context.Background(), ContractCall{To: testContract, ABI: testABI, Method: "name"})

	if result.Success {
		t.Fatal("expected failure against closed server")
	}
	if result.Kind != ErrKindNetwork && result.Kind != ErrKindTimeout {
		t.Errorf("kind = %q, want network_error or timeout", result.Kind)
	}
}
