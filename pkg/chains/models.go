// Copyright 2025 Tokenlens
//
// Chain descriptor models, shaped after the chainlist data format

package chains

import (
	"encoding/json"
)

// RPCEndpoint is one RPC entry. The data file mixes bare URL strings with
// {url, tracking, isOpenSource} objects; both decode into this type.
type RPCEndpoint struct {
	URL          string `json:"url"`
	Tracking     string `json:"tracking,omitempty"`
	IsOpenSource bool   `json:"isOpenSource,omitempty"`
}

// UnmarshalJSON accepts either a string or an endpoint object.
func (e *RPCEndpoint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.URL = s
		return nil
	}
	type endpoint RPCEndpoint
	var obj endpoint
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = RPCEndpoint(obj)
	return nil
}

// NativeCurrency describes a chain's gas token.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Explorer is a block explorer entry.
type Explorer struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Standard string `json:"standard,omitempty"`
}

// ENS holds the name-service registry address when the chain has one.
type ENS struct {
	Registry string `json:"registry"`
}

// ChainInfo is one chain descriptor, immutable after load.
type ChainInfo struct {
	ChainID        uint64         `json:"chainId"`
	Name           string         `json:"name"`
	ShortName      string         `json:"shortName,omitempty"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
	RPC            []RPCEndpoint  `json:"rpc"`
	Explorers      []Explorer     `json:"explorers,omitempty"`
	IsTestnet      bool           `json:"isTestnet,omitempty"`
	InfoURL        string         `json:"infoURL,omitempty"`
	ENS            *ENS           `json:"ens,omitempty"`
}
