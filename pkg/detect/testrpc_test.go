// Copyright 2025 Tokenlens
//
// Canned JSON-RPC node for detector tests

package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
)

// fakeNode answers eth_call by longest calldata-prefix match and serves
// canned bytecode and storage.
type fakeNode struct {
	// calls maps a calldata hex prefix (no 0x) to an encoded result.
	calls map[string]string
	// reverts maps a calldata hex prefix to a revert message.
	reverts map[string]string
	// code maps a lowercase address (no 0x) to runtime bytecode hex.
	code map[string]string
	// storage maps a slot hash (0x-prefixed) to a 32-byte value hex.
	storage map[string]string
	// timestamp is the latest block timestamp.
	timestamp uint64
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func (n *fakeNode) handle(req rpcRequest) map[string]interface{} {
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}

	switch req.Method {
	case "eth_call":
		var arg struct {
			Data string `json:"data"`
		}
		json.Unmarshal(req.Params[0], &arg)
		data := strings.ToLower(strings.TrimPrefix(arg.Data, "0x"))

		if match, ok := longestPrefix(n.reverts, data); ok {
			resp["error"] = map[string]interface{}{"code": 3, "message": n.reverts[match]}
			return resp
		}
		if match, ok := longestPrefix(n.calls, data); ok {
			resp["result"] = n.calls[match]
			return resp
		}
		resp["error"] = map[string]interface{}{"code": 3, "message": "execution reverted"}

	case "eth_getCode":
		var addr string
		json.Unmarshal(req.Params[0], &addr)
		if code, ok := n.code[strings.ToLower(strings.TrimPrefix(addr, "0x"))]; ok {
			resp["result"] = "0x" + code
		} else {
			resp["result"] = "0x"
		}

	case "eth_getStorageAt":
		var slot string
		json.Unmarshal(req.Params[1], &slot)
		if value, ok := n.storage[strings.ToLower(slot)]; ok {
			resp["result"] = value
		} else {
			resp["result"] = "0x" + strings.Repeat("0", 64)
		}

	case "eth_blockNumber":
		resp["result"] = "0x10"

	case "eth_getBlockByNumber":
		resp["result"] = map[string]string{"timestamp": fmt.Sprintf("0x%x", n.timestamp)}

	default:
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	}
	return resp
}

func longestPrefix(table map[string]string, data string) (string, bool) {
	best := ""
	for prefix := range table {
		if strings.HasPrefix(data, strings.ToLower(prefix)) && len(prefix) > len(best) {
			best = prefix
		}
	}
	return best, best != ""
}

// client starts an httptest server around the node and dials it.
func (n *fakeNode) client(t *testing.T) *ethereum.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
			var reqs []rpcRequest
			json.Unmarshal(raw, &reqs)
			out := make([]map[string]interface{}, len(reqs))
			for i, req := range reqs {
				out[i] = n.handle(req)
			}
			json.NewEncoder(w).Encode(out)
			return
		}

		var req rpcRequest
		json.Unmarshal(raw, &req)
		json.NewEncoder(w).Encode(n.handle(req))
	}))
	t.Cleanup(srv.Close)

	client, err := ethereum.Dial(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("failed to dial fake node: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

// ABI word helpers for canned results.

func word(n uint64) string {
	return fmt.Sprintf("%064x", n)
}

func addrWord(hex40 string) string {
	return strings.Repeat("0", 24) + strings.ToLower(strings.TrimPrefix(hex40, "0x"))
}

func selWord(hex8 string) string {
	return strings.ToLower(hex8) + strings.Repeat("0", 56)
}

func boolWord(v bool) string {
	if v {
		return word(1)
	}
	return word(0)
}

func stringWord(s string) string {
	padded := fmt.Sprintf("%x", s)
	if rem := len(padded) % 64; rem != 0 {
		padded += strings.Repeat("0", 64-rem)
	}
	return word(0x20) + word(uint64(len(s))) + padded
}

// supportsInterface calldata prefix for one interface id.
func supportsPrefix(iface Interface) string {
	return "01ffc9a7" + fmt.Sprintf("%x", iface.ID)
}
