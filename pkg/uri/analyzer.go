// Copyright 2025 Tokenlens
//
// Media analysis: per-URI classification, sizing, and dependency recursion

package uri

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// defaultMaxDepth bounds dependency recursion: documents referenced by
	// documents are analyzed one level deep.
	defaultMaxDepth = 2

	// dependencyConcurrency bounds parallel analysis of references found
	// inside one document.
	dependencyConcurrency = 8
)

// Analyzer classifies URIs and recurses into SVG/HTML content to build
// dependency reports.
type Analyzer struct {
	client         *http.Client
	timeout        time.Duration
	ipfsGateway    string
	arweaveGateway string
	maxDepth       int
}

// AnalyzerOptions configures gateways and the per-URI fetch budget.
type AnalyzerOptions struct {
	IPFSGateway    string
	ArweaveGateway string
	Timeout        time.Duration
	Client         *http.Client
}

// NewAnalyzer builds an analyzer with default gateways and a 10 second
// per-URI budget.
func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	if opts.IPFSGateway == "" {
		opts.IPFSGateway = DefaultIPFSGateway
	}
	if opts.ArweaveGateway == "" {
		opts.ArweaveGateway = DefaultArweaveGateway
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	return &Analyzer{
		client:         opts.Client,
		timeout:        opts.Timeout,
		ipfsGateway:    opts.IPFSGateway,
		arweaveGateway: opts.ArweaveGateway,
		maxDepth:       defaultMaxDepth,
	}
}

// WithTimeout returns a copy of the analyzer with a different per-URI
// fetch budget.
func (a *Analyzer) WithTimeout(timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		return a
	}
	clone := *a
	clone.timeout = timeout
	return &clone
}

// AnalyzeMedia classifies a single URI. Fetch failures never fail the
// analysis; they are captured as accessible=false with the error message.
func (a *Analyzer) AnalyzeMedia(ctx context.Context, raw string) *URLInfo {
	return a.analyze(ctx, raw, 0)
}

func (a *Analyzer) analyze(ctx context.Context, raw string, depth int) *URLInfo {
	protocol := ClassifyProtocol(raw)
	isGateway, gatewayLevel := ClassifyGateway(raw)

	info := &URLInfo{
		URL:          raw,
		Protocol:     protocol,
		IsGateway:    isGateway,
		GatewayLevel: gatewayLevel,
	}

	var content []byte

	switch protocol {
	case ProtocolData:
		parsed, err := ParseDataURI(raw)
		if err != nil {
			info.Error = err.Error()
			return info
		}
		info.MimeType = parsed.MediaType
		info.SizeBytes = parsed.SizeBytes()
		info.Encoding = parsed.Encoding
		info.Accessible = true
		content = parsed.Decoded

	case ProtocolNone:
		info.MimeType = sniffInlineMime(raw)
		info.SizeBytes = int64(len(raw))
		info.Accessible = true
		content = []byte(raw)

	default:
		content = a.analyzeRemote(ctx, raw, info)
	}

	if depth < a.maxDepth && isMarkupMime(info.MimeType) {
		if content == nil && info.Accessible {
			content = a.fetchContent(ctx, a.fetchURL(raw))
		}
		if content != nil {
			info.ExternalDependencies = a.analyzeDependencies(ctx, string(content), info.MimeType, depth)
		}
	}

	return info
}

// fetchURL rewrites native content-addressed schemes to HTTPS gateways.
func (a *Analyzer) fetchURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "ipfs://"):
		return a.ipfsGateway + strings.TrimPrefix(raw, "ipfs://")
	case strings.HasPrefix(raw, "ar://"):
		return a.arweaveGateway + strings.TrimPrefix(raw, "ar://")
	default:
		return raw
	}
}

// analyzeRemote learns mime type and size over HTTP: HEAD first, GET when
// Content-Length is absent. Returns the body if a GET happened to run.
func (a *Analyzer) analyzeRemote(ctx context.Context, raw string, info *URLInfo) []byte {
	fetchURL := a.fetchURL(raw)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fetchURL, nil)
	if err != nil {
		info.Error = err.Error()
		return nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		info.Error = err.Error()
		return nil
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		info.Error = "unexpected status " + strconv.Itoa(resp.StatusCode)
		return nil
	}

	info.Accessible = true
	info.MimeType = resp.Header.Get("Content-Type")

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if size, err := strconv.ParseInt(cl, 10, 64); err == nil {
			info.SizeBytes = size
			return nil
		}
	}

	// HEAD gave no length; fall back to GET and measure the body.
	body := a.fetchContent(ctx, fetchURL)
	if body != nil {
		info.SizeBytes = int64(len(body))
	}
	return body
}

func (a *Analyzer) fetchContent(ctx context.Context, fetchURL string) []byte {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil
	}
	return body
}

// analyzeDependencies extracts external references from markup and analyzes
// each one concurrently. Parse failures yield a zero-score report rather
// than an error.
func (a *Analyzer) analyzeDependencies(ctx context.Context, content, mimeType string, depth int) *DependencyReport {
	var refs []Reference
	var err error

	if strings.Contains(strings.ToLower(mimeType), "svg") {
		refs, err = ExtractSVGReferences(content)
	} else {
		refs, err = ExtractHTMLReferences(content)
	}
	if err != nil {
		return &DependencyReport{
			IsFullyOnchain:    false,
			MinProtocolScore:  0,
			MinProtocol:       ProtocolUnknown,
			ExternalResources: []ExternalResource{},
		}
	}

	resources := make([]ExternalResource, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dependencyConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			resources[i] = ExternalResource{
				URL:         ref.URL,
				ElementType: ref.ElementType,
				Attribute:   ref.Attribute,
				URLInfo:     a.analyze(gctx, ref.URL, depth+1),
			}
			return nil
		})
	}
	g.Wait()

	return buildDependencyReport(resources)
}

// buildDependencyReport applies the weakest-link rule over resources.
func buildDependencyReport(resources []ExternalResource) *DependencyReport {
	if len(resources) == 0 {
		return &DependencyReport{
			IsFullyOnchain:    true,
			MinProtocolScore:  10,
			ExternalResources: []ExternalResource{},
		}
	}

	minScore := 11
	var minProtocol Protocol
	for _, res := range resources {
		score := res.URLInfo.Protocol.Score()
		if score < minScore {
			minScore = score
			minProtocol = res.URLInfo.Protocol
		}
	}

	return &DependencyReport{
		IsFullyOnchain:    minScore >= 10,
		MinProtocolScore:  minScore,
		MinProtocol:       minProtocol,
		ExternalResources: resources,
		Total:             len(resources),
	}
}

func isMarkupMime(mimeType string) bool {
	lower := strings.ToLower(mimeType)
	return strings.Contains(lower, "svg") || strings.Contains(lower, "html")
}

// sniffInlineMime guesses the type of inline content: SVG, HTML, JSON, or
// plain text.
func sniffInlineMime(content string) string {
	trimmed := strings.TrimSpace(content)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "<svg"):
		return "image/svg+xml"
	case strings.HasPrefix(lower, "<html") || strings.HasPrefix(lower, "<!doctype html"):
		return "text/html"
	case json.Valid([]byte(trimmed)):
		return "application/json"
	default:
		return "text/plain"
	}
}
