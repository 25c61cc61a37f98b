// Copyright 2025 Tokenlens
//
// Media analyzer tests

package uri

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(AnalyzerOptions{})
}

func TestAnalyzeMedia_DataURI(t *testing.T) {
	a := newTestAnalyzer()
	info := a.AnalyzeMedia(context.Background(), "data:application/json;base64,eyJhIjoxfQ==")

	if info.Protocol != ProtocolData {
		t.Fatalf("protocol = %q, want data", info.Protocol)
	}
	if !info.Accessible {
		t.Error("data URI must be accessible")
	}
	if info.MimeType != "application/json" {
		t.Errorf("mime = %q", info.MimeType)
	}
	if info.Encoding != EncodingBase64 {
		t.Errorf("encoding = %q", info.Encoding)
	}
	if info.SizeBytes != int64(len(`{"a":1}`)) {
		t.Errorf("size = %d", info.SizeBytes)
	}
}

func TestAnalyzeMedia_InlineContent(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		name string
		body string
		mime string
	}{
		{"svg", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, "image/svg+xml"},
		{"html", `<!DOCTYPE html><html></html>`, "text/html"},
		{"json", `{"name":"x"}`, "application/json"},
		{"plain", "just some text", "text/plain"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := a.AnalyzeMedia(context.Background(), tc.body)
			if info.Protocol != ProtocolNone {
				t.Errorf("protocol = %q, want none", info.Protocol)
			}
			if info.MimeType != tc.mime {
				t.Errorf("mime = %q, want %q", info.MimeType, tc.mime)
			}
			if info.SizeBytes != int64(len(tc.body)) {
				t.Errorf("size = %d, want %d", info.SizeBytes, len(tc.body))
			}
		})
	}
}

func TestAnalyzeMedia_HTTPHeadSizing(t *testing.T) {
	body := `{"name":"remote"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		if r.Method == http.MethodGet {
			w.Write([]byte(body))
		}
	}))
	defer srv.Close()

	a := newTestAnalyzer()
	info := a.AnalyzeMedia(context.Background(), srv.URL+"/meta.json")

	if !info.Accessible {
		t.Fatalf("expected accessible, got error %q", info.Error)
	}
	if info.MimeType != "application/json" {
		t.Errorf("mime = %q", info.MimeType)
	}
	if info.SizeBytes != int64(len(body)) {
		t.Errorf("size = %d, want %d", info.SizeBytes, len(body))
	}
}

func TestAnalyzeMedia_FetchFailureStillClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newTestAnalyzer()
	info := a.AnalyzeMedia(context.Background(), srv.URL+"/missing.png")

	if info.Accessible {
		t.Error("expected accessible = false")
	}
	if info.Error == "" {
		t.Error("expected error message")
	}
	if info.Protocol != ProtocolHTTP {
		t.Errorf("protocol = %q, want http despite fetch failure", info.Protocol)
	}
}

func TestAnalyzeMedia_SVGDependencyRecursion(t *testing.T) {
	a := newTestAnalyzer()

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><image href="ipfs://QmHash/x.png"/></svg>`
	info := a.AnalyzeMedia(context.Background(), svg)

	deps := info.ExternalDependencies
	if deps == nil {
		t.Fatal("expected external dependency report for inline SVG")
	}
	if deps.IsFullyOnchain {
		t.Error("SVG with an IPFS reference is not fully on-chain")
	}
	if deps.MinProtocolScore != ProtocolIPFS.Score() {
		t.Errorf("min score = %d, want %d", deps.MinProtocolScore, ProtocolIPFS.Score())
	}
	if deps.Total != 1 {
		t.Errorf("total = %d, want 1", deps.Total)
	}
}

func TestAnalyzeMedia_FullyOnchainSVG(t *testing.T) {
	a := newTestAnalyzer()

	info := a.AnalyzeMedia(context.Background(), `<svg xmlns="http://www.w3.org/2000/svg"><rect width="4" height="4"/></svg>`)
	deps := info.ExternalDependencies
	if deps == nil {
		t.Fatal("expected dependency report")
	}
	if !deps.IsFullyOnchain {
		t.Error("SVG without external references must be fully on-chain")
	}
	if deps.MinProtocolScore != 10 {
		t.Errorf("min score = %d, want 10 for empty resource list", deps.MinProtocolScore)
	}
}

func TestBuildDependencyReport_WeakestLink(t *testing.T) {
	resources := []ExternalResource{
		{URL: "data:text/plain,a", URLInfo: &URLInfo{Protocol: ProtocolData}},
		{URL: "https://example.com/b", URLInfo: &URLInfo{Protocol: ProtocolHTTPS}},
		{URL: "ipfs://QmC", URLInfo: &URLInfo{Protocol: ProtocolIPFS}},
	}

	report := buildDependencyReport(resources)
	if report.MinProtocolScore != ProtocolHTTPS.Score() {
		t.Errorf("min score = %d, want %d", report.MinProtocolScore, ProtocolHTTPS.Score())
	}
	if report.MinProtocol != ProtocolHTTPS {
		t.Errorf("min protocol = %q, want https", report.MinProtocol)
	}
	if report.IsFullyOnchain {
		t.Error("mixed resources are not fully on-chain")
	}
}

func TestResolver_InlineAndData(t *testing.T) {
	r := NewResolver(ResolverOptions{})

	content, err := r.Resolve(context.Background(), "data:application/json;base64,eyJhIjoxfQ==")
	if err != nil {
		t.Fatalf("resolve data URI: %v", err)
	}
	if string(content) != `{"a":1}` {
		t.Errorf("content = %q", content)
	}

	inline := `{"name":"inline"}`
	content, err = r.Resolve(context.Background(), inline)
	if err != nil {
		t.Fatalf("resolve inline: %v", err)
	}
	if string(content) != inline {
		t.Errorf("content = %q", content)
	}
}

func TestResolver_GatewayRewrite(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	r := NewResolver(ResolverOptions{IPFSGateway: srv.URL + "/ipfs/"})
	var out map[string]bool
	if err := r.ResolveJSON(context.Background(), "ipfs://QmHash/1.json", &out); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gotPath != "/ipfs/QmHash/1.json" {
		t.Errorf("gateway path = %q", gotPath)
	}
	if !out["ok"] {
		t.Error("unexpected payload")
	}
}
