// Copyright 2025 Tokenlens
//
// URI resolution through ordered scheme handlers

package uri

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultIPFSGateway serves ipfs:// content over HTTPS.
	DefaultIPFSGateway = "https://ipfs.io/ipfs/"
	// DefaultArweaveGateway serves ar:// content over HTTPS.
	DefaultArweaveGateway = "https://arweave.net/"

	// maxFetchBytes caps how much of a remote body is read.
	maxFetchBytes = 8 << 20

	defaultFetchTimeout = 10 * time.Second
)

// Handler resolves one URI scheme to raw content.
type Handler interface {
	CanHandle(uri string) bool
	Resolve(ctx context.Context, uri string) ([]byte, error)
}

// DataHandler decodes data: URIs without any network access.
type DataHandler struct{}

func (DataHandler) CanHandle(uri string) bool { return strings.HasPrefix(uri, "data:") }

func (DataHandler) Resolve(_ context.Context, uri string) ([]byte, error) {
	info, err := ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	return info.Decoded, nil
}

// IPFSHandler rewrites ipfs:// URIs to an HTTPS gateway before fetching.
type IPFSHandler struct {
	Gateway string
	Client  *http.Client
}

func (h *IPFSHandler) CanHandle(uri string) bool { return strings.HasPrefix(uri, "ipfs://") }

func (h *IPFSHandler) Resolve(ctx context.Context, uri string) ([]byte, error) {
	return fetchBody(ctx, h.Client, h.Gateway+strings.TrimPrefix(uri, "ipfs://"))
}

// ArweaveHandler rewrites ar:// URIs to an HTTPS gateway before fetching.
type ArweaveHandler struct {
	Gateway string
	Client  *http.Client
}

func (h *ArweaveHandler) CanHandle(uri string) bool { return strings.HasPrefix(uri, "ar://") }

func (h *ArweaveHandler) Resolve(ctx context.Context, uri string) ([]byte, error) {
	return fetchBody(ctx, h.Client, h.Gateway+strings.TrimPrefix(uri, "ar://"))
}

// HTTPHandler fetches http:// and https:// URIs directly.
type HTTPHandler struct {
	Client *http.Client
}

func (h *HTTPHandler) CanHandle(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

func (h *HTTPHandler) Resolve(ctx context.Context, uri string) ([]byte, error) {
	return fetchBody(ctx, h.Client, uri)
}

func fetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch failed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// Resolver resolves arbitrary token URIs through an ordered handler list.
// The first handler whose CanHandle returns true is used.
type Resolver struct {
	handlers []Handler
}

// ResolverOptions configures gateways and the HTTP client.
type ResolverOptions struct {
	IPFSGateway    string
	ArweaveGateway string
	Client         *http.Client
}

// NewResolver builds a resolver with the default handler order:
// data, ipfs, ar, http(s).
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.IPFSGateway == "" {
		opts.IPFSGateway = DefaultIPFSGateway
	}
	if opts.ArweaveGateway == "" {
		opts.ArweaveGateway = DefaultArweaveGateway
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultFetchTimeout}
	}

	return &Resolver{
		handlers: []Handler{
			DataHandler{},
			&IPFSHandler{Gateway: opts.IPFSGateway, Client: opts.Client},
			&ArweaveHandler{Gateway: opts.ArweaveGateway, Client: opts.Client},
			&HTTPHandler{Client: opts.Client},
		},
	}
}

// Resolve returns the raw content behind a URI. URIs with no scheme are
// treated as inline content and returned verbatim; a scheme no handler
// accepts is an error.
func (r *Resolver) Resolve(ctx context.Context, uri string) ([]byte, error) {
	for _, h := range r.handlers {
		if h.CanHandle(uri) {
			return h.Resolve(ctx, uri)
		}
	}
	if ClassifyProtocol(uri) == ProtocolNone {
		return []byte(uri), nil
	}
	return nil, fmt.Errorf("no handler for URI scheme: %s", schemeOf(uri))
}

// ResolveJSON resolves a URI and unmarshals the content into v.
func (r *Resolver) ResolveJSON(ctx context.Context, uri string, v any) error {
	content, err := r.Resolve(ctx, uri)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to parse JSON content: %w", err)
	}
	return nil
}

func schemeOf(uri string) string {
	if i := strings.Index(uri, "://"); i > 0 {
		return uri[:i]
	}
	if i := strings.Index(uri, ":"); i > 0 {
		return uri[:i]
	}
	return "<none>"
}
