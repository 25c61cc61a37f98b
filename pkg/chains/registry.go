// Copyright 2025 Tokenlens
//
// Chain registry: embedded chain descriptors and working-RPC selection

package chains

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

//go:embed data/chainlist_rpcs.json
var chainlistData []byte

//go:embed data/custom_chains.json
var customChainsData []byte

// probeTimeout bounds one eth_blockNumber probe.
const probeTimeout = 5 * time.Second

// Registry holds the chain table, loaded once and read-only afterwards.
type Registry struct {
	chains map[uint64]ChainInfo
	client *http.Client
}

// NewRegistry loads the embedded chain list and the custom-chain overlay.
// Overlay entries win on chain-id collision.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		chains: make(map[uint64]ChainInfo),
		client: &http.Client{Timeout: probeTimeout},
	}

	var chainlist []ChainInfo
	if err := json.Unmarshal(chainlistData, &chainlist); err != nil {
		return nil, fmt.Errorf("failed to parse chain list: %w", err)
	}
	for _, info := range chainlist {
		r.chains[info.ChainID] = info
	}

	var custom map[string]ChainInfo
	if err := json.Unmarshal(customChainsData, &custom); err != nil {
		return nil, fmt.Errorf("failed to parse custom chains: %w", err)
	}
	for _, info := range custom {
		r.chains[info.ChainID] = info
	}

	return r, nil
}

// SetProbeClient overrides the HTTP client used for endpoint probing.
func (r *Registry) SetProbeClient(client *http.Client) {
	r.client = client
}

// Chain returns the descriptor for a chain id.
func (r *Registry) Chain(chainID uint64) (ChainInfo, bool) {
	info, ok := r.chains[chainID]
	return info, ok
}

// List returns every known chain, ordered by chain id.
func (r *Registry) List() []ChainInfo {
	out := make([]ChainInfo, 0, len(r.chains))
	for _, info := range r.chains {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// IsTestnet reports whether a chain is a test network.
func (r *Registry) IsTestnet(chainID uint64) bool {
	info, ok := r.chains[chainID]
	return ok && info.IsTestnet
}

// SelectWorkingRPC probes the chain's endpoints in declared order and
// returns the first one answering eth_blockNumber. WebSocket endpoints are
// skipped. Probing is sequential to preserve the curated priority of the
// data file. Returns "" when every endpoint fails.
func (r *Registry) SelectWorkingRPC(ctx context.Context, chainID uint64) string {
	info, ok := r.chains[chainID]
	if !ok {
		return ""
	}

	for _, endpoint := range info.RPC {
		url := endpoint.URL
		if url == "" || strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://") {
			continue
		}
		if r.probe(ctx, url) {
			return url
		}
	}
	return ""
}

// probe issues one eth_blockNumber request and checks for a non-null result.
func (r *Registry) probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	payload := []byte(`{"jsonrpc":"2.0","method":"eth_blockNumber","params":[],"id":1}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var reply struct {
		Result *string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return false
	}
	return reply.Result != nil
}
