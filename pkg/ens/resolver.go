// Copyright 2025 Tokenlens
//
// Reverse name resolution via an external HTTPS endpoint. Failures are
// silently discarded; a missing name never fails an inspection.

package ens

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultEndpoint serves reverse records as {"ens": "<name>"} with a 404 on
// miss.
const DefaultEndpoint = "https://api.ensdata.net/"

const defaultTimeout = 2 * time.Second

// Resolver looks up names for addresses over HTTPS.
type Resolver struct {
	endpoint string
	client   *http.Client
}

// NewResolver builds a resolver against the given endpoint, defaulting to
// the public ensdata API.
func NewResolver(endpoint string, client *http.Client) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Resolver{endpoint: endpoint, client: client}
}

// Resolve returns the name for one address, or "" when there is none.
func (r *Resolver) Resolve(ctx context.Context, addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+addr.Hex(), nil)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var reply struct {
		ENS string `json:"ens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return ""
	}
	return reply.ENS
}

// ResolveAll looks up many addresses concurrently and returns whatever
// resolved before the context expired.
func (r *Resolver) ResolveAll(ctx context.Context, addrs []common.Address) map[common.Address]string {
	results := make(map[common.Address]string, len(addrs))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, addr := range addrs {
		if addr == (common.Address{}) {
			continue
		}
		wg.Add(1)
		go func(a common.Address) {
			defer wg.Done()
			if name := r.Resolve(ctx, a); name != "" {
				mu.Lock()
				results[a] = name
				mu.Unlock()
			}
		}(addr)
	}
	wg.Wait()

	return results
}
