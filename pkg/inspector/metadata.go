// Copyright 2025 Tokenlens
//
// NFT metadata models. On-chain JSON is schemaless in practice: unknown
// fields are retained verbatim and tolerant aliases are recognised for
// collection-level images.

package inspector

import "encoding/json"

// Attribute is one trait in a token's attribute list.
type Attribute struct {
	TraitType   string      `json:"trait_type,omitempty"`
	Value       interface{} `json:"value,omitempty"`
	DisplayType string      `json:"display_type,omitempty"`
}

// Metadata is ERC-721/1155 token metadata. Extra holds every key the
// schema does not name, preserved verbatim.
type Metadata struct {
	Name            string      `json:"name,omitempty"`
	Description     string      `json:"description,omitempty"`
	Image           string      `json:"image,omitempty"`
	ImageData       string      `json:"image_data,omitempty"`
	AnimationURL    string      `json:"animation_url,omitempty"`
	ExternalURL     string      `json:"external_url,omitempty"`
	BackgroundColor string      `json:"background_color,omitempty"`
	Attributes      []Attribute `json:"attributes,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var metadataKnownKeys = []string{
	"name", "description", "image", "image_data", "animation_url",
	"external_url", "background_color", "attributes",
}

// UnmarshalJSON decodes the known fields and keeps everything else in
// Extra. A parse never fails over unknown keys.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Metadata(p)

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range metadataKnownKeys {
		delete(all, key)
	}
	if len(all) > 0 {
		m.Extra = all
	}
	return nil
}

// MarshalJSON re-emits known fields plus the preserved unknown keys.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	return marshalWithExtra(plain(m), m.Extra)
}

// ContractMetadata is collection-level metadata (ERC-7572 contractURI).
// The image field accepts several alias keys; ImageKey records which one
// the document used.
type ContractMetadata struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	ImageKey    string `json:"image_key,omitempty"`
	ExternalURL string `json:"external_link,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// imageAliasKeys all populate the logical image field, in priority order.
var imageAliasKeys = []string{"image", "imageURI", "image_url", "logo", "logo_url"}

var contractMetadataKnownKeys = []string{"name", "description", "external_link"}

// UnmarshalJSON decodes known fields, resolves the image alias set, and
// keeps everything else in Extra.
func (c *ContractMetadata) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	unquote := func(raw json.RawMessage) string {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return ""
	}

	if raw, ok := all["name"]; ok {
		c.Name = unquote(raw)
	}
	if raw, ok := all["description"]; ok {
		c.Description = unquote(raw)
	}
	if raw, ok := all["external_link"]; ok {
		c.ExternalURL = unquote(raw)
	}

	for _, key := range imageAliasKeys {
		if raw, ok := all[key]; ok {
			if value := unquote(raw); value != "" {
				c.Image = value
				c.ImageKey = key
				delete(all, key)
				break
			}
		}
	}

	for _, key := range contractMetadataKnownKeys {
		delete(all, key)
	}
	if len(all) > 0 {
		c.Extra = all
	}
	return nil
}

// MarshalJSON re-emits the logical fields plus preserved unknown keys. The
// image is written back under its original key.
func (c ContractMetadata) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	for key, raw := range c.Extra {
		out[key] = raw
	}
	if c.Name != "" {
		out["name"] = c.Name
	}
	if c.Description != "" {
		out["description"] = c.Description
	}
	if c.ExternalURL != "" {
		out["external_link"] = c.ExternalURL
	}
	if c.Image != "" {
		key := c.ImageKey
		if key == "" {
			key = "image"
		}
		out[key] = c.Image
	}
	return json.Marshal(out)
}

// marshalWithExtra merges a struct's JSON encoding with preserved raw keys.
func marshalWithExtra(v interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, raw := range extra {
		if _, exists := merged[key]; !exists {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}
