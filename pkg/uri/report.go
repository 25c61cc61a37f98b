// Copyright 2025 Tokenlens
//
// Per-component media reports

package uri

// DataReport maps each media field of a token's metadata to its URI
// classification.
type DataReport struct {
	TokenURI     *URLInfo `json:"token_uri,omitempty"`
	Image        *URLInfo `json:"image,omitempty"`
	ImageData    *URLInfo `json:"image_data,omitempty"`
	AnimationURL *URLInfo `json:"animation_url,omitempty"`
	ExternalURL  *URLInfo `json:"external_url,omitempty"`
}

// ContractDataReport maps collection-level metadata media to its URI
// classification.
type ContractDataReport struct {
	ContractURI *URLInfo `json:"contract_uri,omitempty"`
	Image       *URLInfo `json:"image,omitempty"`
	ExternalURL *URLInfo `json:"external_url,omitempty"`
}
