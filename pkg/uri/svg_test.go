// Copyright 2025 Tokenlens
//
// SVG and HTML reference extraction tests

package uri

import "testing"

func containsRef(refs []Reference, url string) bool {
	for _, r := range refs {
		if r.URL == url {
			return true
		}
	}
	return false
}

func TestExtractSVGReferences(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
		<image xlink:href="https://example.com/bg.png"/>
		<use href="#local"/>
		<script src="https://cdn.example.com/lib.js"></script>
		<style>.a { background: url("ipfs://QmHash/tile.png"); }</style>
		<rect style="fill: url(https://example.com/pattern.png)"/>
	</svg>`

	refs, err := ExtractSVGReferences(svg)
	if err != nil {
		t.Fatalf("failed to extract SVG references: %v", err)
	}

	for _, want := range []string{
		"https://example.com/bg.png",
		"https://cdn.example.com/lib.js",
		"ipfs://QmHash/tile.png",
		"https://example.com/pattern.png",
	} {
		if !containsRef(refs, want) {
			t.Errorf("missing reference %q in %+v", want, refs)
		}
	}

	// Fragment references stay internal.
	if containsRef(refs, "#local") {
		t.Error("fragment reference must not be treated as external")
	}
}

func TestExtractHTMLReferences(t *testing.T) {
	html := `<!doctype html><html><head>
		<link href="https://fonts.example.com/font.css" rel="stylesheet">
		<script src="ar://TX123/app.js"></script>
		<style>@import "https://example.com/extra.css";</style>
	</head><body>
		<img src="ipfs://QmImage">
		<a href="javascript:void(0)">x</a>
		<iframe src="https://frame.example.com"></iframe>
	</body></html>`

	refs, err := ExtractHTMLReferences(html)
	if err != nil {
		t.Fatalf("failed to extract HTML references: %v", err)
	}

	for _, want := range []string{
		"https://fonts.example.com/font.css",
		"ar://TX123/app.js",
		"https://example.com/extra.css",
		"ipfs://QmImage",
		"https://frame.example.com",
	} {
		if !containsRef(refs, want) {
			t.Errorf("missing reference %q in %+v", want, refs)
		}
	}

	if containsRef(refs, "javascript:void(0)") {
		t.Error("javascript: URI must not be treated as external")
	}
}

func TestIsExternalReference(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"#frag", false},
		{"javascript:alert(1)", false},
		{"mailto:a@b.c", false},
		{"https://example.com", true},
		{"relative/path.png", true},
		{"ipfs://QmHash", true},
	}
	for _, tc := range cases {
		if got := isExternalReference(tc.url); got != tc.want {
			t.Errorf("isExternalReference(%q) = %t, want %t", tc.url, got, tc.want)
		}
	}
}
