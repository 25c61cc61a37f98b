// Copyright 2025 Tokenlens
//
// data: URI parsing tests

package uri

import "testing"

func TestParseDataURI_Base64(t *testing.T) {
	// {"name":"Punk 1","image":"data:image/svg+xml,<svg/>"}
	raw := "data:application/json;base64,eyJuYW1lIjoiUHVuayAxIiwiaW1hZ2UiOiJkYXRhOmltYWdlL3N2Zyt4bWwsPHN2Zy8+In0="

	info, err := ParseDataURI(raw)
	if err != nil {
		t.Fatalf("failed to parse data URI: %v", err)
	}
	if info.MediaType != "application/json" {
		t.Errorf("media type = %q, want application/json", info.MediaType)
	}
	if info.Encoding != EncodingBase64 {
		t.Errorf("encoding = %q, want base64", info.Encoding)
	}
	want := `{"name":"Punk 1","image":"data:image/svg+xml,<svg/>"}`
	if string(info.Decoded) != want {
		t.Errorf("decoded = %q, want %q", info.Decoded, want)
	}
	if info.SizeBytes() != int64(len(want)) {
		t.Errorf("size = %d, want %d", info.SizeBytes(), len(want))
	}
}

func TestParseDataURI_Percent(t *testing.T) {
	info, err := ParseDataURI("data:image/svg+xml,%3Csvg%20width%3D%2210%22%2F%3E")
	if err != nil {
		t.Fatalf("failed to parse data URI: %v", err)
	}
	if info.Encoding != EncodingPercent {
		t.Errorf("encoding = %q, want percent", info.Encoding)
	}
	if string(info.Decoded) != `<svg width="10"/>` {
		t.Errorf("decoded = %q", info.Decoded)
	}
}

func TestParseDataURI_Plain(t *testing.T) {
	info, err := ParseDataURI("data:,hello world")
	if err != nil {
		t.Fatalf("failed to parse data URI: %v", err)
	}
	if info.MediaType != "text/plain" {
		t.Errorf("media type = %q, want text/plain default", info.MediaType)
	}
	if info.Encoding != EncodingPlain {
		t.Errorf("encoding = %q, want plain", info.Encoding)
	}
	if string(info.Decoded) != "hello world" {
		t.Errorf("decoded = %q", info.Decoded)
	}
}

func TestParseDataURI_Invalid(t *testing.T) {
	if _, err := ParseDataURI("https://example.com"); err == nil {
		t.Error("expected error for non-data URI")
	}
	if _, err := ParseDataURI("data:text/plain"); err == nil {
		t.Error("expected error for missing comma")
	}
}
