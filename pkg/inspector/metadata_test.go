// Copyright 2025 Tokenlens
//
// Metadata model tests

package inspector

import (
	"encoding/json"
	"testing"
)

func TestMetadata_UnknownFieldsPreserved(t *testing.T) {
	raw := `{
		"name": "Punk 1",
		"image": "ipfs://QmImage",
		"attributes": [{"trait_type": "Hat", "value": "Beanie"}],
		"dna": "0xabc123",
		"edition": 7
	}`

	var md Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		t.Fatalf("failed to parse metadata: %v", err)
	}

	if md.Name != "Punk 1" || md.Image != "ipfs://QmImage" {
		t.Errorf("known fields = %q %q", md.Name, md.Image)
	}
	if len(md.Attributes) != 1 || md.Attributes[0].TraitType != "Hat" {
		t.Errorf("attributes = %+v", md.Attributes)
	}
	if _, ok := md.Extra["dna"]; !ok {
		t.Error("unknown field dna was dropped")
	}
	if _, ok := md.Extra["edition"]; !ok {
		t.Error("unknown field edition was dropped")
	}

	// Round trip keeps the unknown fields.
	out, err := json.Marshal(md)
	if err != nil {
		t.Fatalf("failed to marshal metadata: %v", err)
	}
	var roundTrip map[string]json.RawMessage
	json.Unmarshal(out, &roundTrip)
	if _, ok := roundTrip["dna"]; !ok {
		t.Error("unknown field dna lost in round trip")
	}
}

func TestContractMetadata_ImageAliases(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		key  string
	}{
		{"canonical", `{"name":"C","image":"ipfs://QmA"}`, "image"},
		{"imageURI", `{"name":"C","imageURI":"ipfs://QmA"}`, "imageURI"},
		{"image_url", `{"name":"C","image_url":"ipfs://QmA"}`, "image_url"},
		{"logo", `{"name":"C","logo":"ipfs://QmA"}`, "logo"},
		{"logo_url", `{"name":"C","logo_url":"ipfs://QmA"}`, "logo_url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var md ContractMetadata
			if err := json.Unmarshal([]byte(tc.raw), &md); err != nil {
				t.Fatalf("failed to parse: %v", err)
			}
			if md.Image != "ipfs://QmA" {
				t.Errorf("image = %q, want ipfs://QmA", md.Image)
			}
			if md.ImageKey != tc.key {
				t.Errorf("image key = %q, want %q", md.ImageKey, tc.key)
			}

			// The original key survives a round trip.
			out, err := json.Marshal(md)
			if err != nil {
				t.Fatalf("failed to marshal: %v", err)
			}
			var roundTrip map[string]json.RawMessage
			json.Unmarshal(out, &roundTrip)
			if _, ok := roundTrip[tc.key]; !ok {
				t.Errorf("image not written back under %q: %s", tc.key, out)
			}
		})
	}
}

func TestMetadata_RejectsNothingOverTypes(t *testing.T) {
	// Numeric name would break a strict schema; unknown-key tolerance
	// must not turn into type coercion failures for the extras.
	raw := `{"description":"x","properties":{"files":[{"uri":"ipfs://QmF"}]}}`
	var md Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		t.Fatalf("failed to parse metadata with nested extras: %v", err)
	}
	if _, ok := md.Extra["properties"]; !ok {
		t.Error("properties not preserved")
	}
}
