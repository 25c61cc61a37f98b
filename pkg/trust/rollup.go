// Copyright 2025 Tokenlens
//
// Rollup decentralisation stages, keyed by chain id

package trust

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/rollup_stages.json
var rollupStagesData []byte

// RollupInfo is one chain's rollup classification.
type RollupInfo struct {
	ChainName  string `json:"chain_name"`
	RollupType string `json:"rollup_type"`
	Stage      string `json:"stage,omitempty"`
	Link       string `json:"link,omitempty"`
}

// loadRollupStages parses the embedded stage table, keyed by stringified
// chain id.
func loadRollupStages() (map[string]RollupInfo, error) {
	var stages map[string]RollupInfo
	if err := json.Unmarshal(rollupStagesData, &stages); err != nil {
		return nil, fmt.Errorf("failed to parse rollup stages: %w", err)
	}
	return stages, nil
}
