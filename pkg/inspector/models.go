// Copyright 2025 Tokenlens
//
// Inspection result models and options

package inspector

import (
	"math/big"
	"time"

	"github.com/tokenlens/tokenlens/pkg/detect"
	"github.com/tokenlens/tokenlens/pkg/ethereum"
	"github.com/tokenlens/tokenlens/pkg/trust"
	"github.com/tokenlens/tokenlens/pkg/uri"
)

// TokenInfo is the complete inspection result for one token. Detector
// failures leave the corresponding fields unset; the record itself is
// always returned.
type TokenInfo struct {
	ChainID         uint64             `json:"chain_id"`
	ContractAddress ethereum.Address   `json:"contract_address"`
	TokenID         *big.Int           `json:"token_id"`
	Standard        detect.NFTStandard `json:"standard"`

	TokenURI   string          `json:"token_uri,omitempty"`
	Metadata   *Metadata       `json:"metadata,omitempty"`
	DataReport *uri.DataReport `json:"data_report,omitempty"`

	ContractURI        string                  `json:"contract_uri,omitempty"`
	ContractMetadata   *ContractMetadata       `json:"contract_metadata,omitempty"`
	ContractDataReport *uri.ContractDataReport `json:"contract_data_report,omitempty"`

	SupportedInterfaces []string                  `json:"supported_interfaces,omitempty"`
	ProxyInfo           *detect.ProxyInfo         `json:"proxy_info,omitempty"`
	AccessControlInfo   *detect.AccessControlInfo `json:"access_control_info,omitempty"`
	ComplianceReport    *detect.ComplianceReport  `json:"compliance_report,omitempty"`

	TrustAnalysis *trust.AnalysisResult `json:"trust_analysis,omitempty"`

	RPCEndpoint string `json:"rpc_endpoint,omitempty"`
}

// IsNFT reports whether the contract looks like an NFT at all: it either
// advertised a standard or produced a token URI.
func (t *TokenInfo) IsNFT() bool {
	return t.Standard != detect.StandardUnknown || t.TokenURI != ""
}

// ContractInfo is the contract-level subset of TokenInfo, without
// token-specific fields.
type ContractInfo struct {
	ChainID         uint64           `json:"chain_id"`
	ContractAddress ethereum.Address `json:"contract_address"`

	ContractURI        string                  `json:"contract_uri,omitempty"`
	ContractMetadata   *ContractMetadata       `json:"contract_metadata,omitempty"`
	ContractDataReport *uri.ContractDataReport `json:"contract_data_report,omitempty"`

	SupportedInterfaces []string                  `json:"supported_interfaces,omitempty"`
	ProxyInfo           *detect.ProxyInfo         `json:"proxy_info,omitempty"`
	AccessControlInfo   *detect.AccessControlInfo `json:"access_control_info,omitempty"`

	RPCEndpoint string `json:"rpc_endpoint,omitempty"`
}

// Options tunes one inspection.
type Options struct {
	// AnalyzeMedia enables the URI resolution and media analysis phase.
	AnalyzeMedia bool
	// AnalyzeTrust enables the trust analysis phase.
	AnalyzeTrust bool
	// RPCURL overrides endpoint selection for the chain.
	RPCURL string
	// FetchTimeout overrides the per-URI media fetch budget.
	FetchTimeout time.Duration
	// Deadline bounds the whole inspection. Zero means the sum of the
	// per-phase defaults.
	Deadline time.Duration
}

// DefaultOptions enables every analysis phase.
func DefaultOptions() Options {
	return Options{AnalyzeMedia: true, AnalyzeTrust: true}
}
