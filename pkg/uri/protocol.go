// Copyright 2025 Tokenlens
//
// Media protocol classification for token URIs

package uri

import (
	"net/url"
	"strings"
)

// Protocol identifies the storage protocol behind a URI.
type Protocol string

const (
	ProtocolHTTP    Protocol = "http"
	ProtocolHTTPS   Protocol = "https"
	ProtocolIPFS    Protocol = "ipfs"
	ProtocolIPNS    Protocol = "ipns"
	ProtocolArweave Protocol = "ar"
	ProtocolData    Protocol = "data"
	ProtocolNone    Protocol = "none"
	ProtocolUnknown Protocol = "unknown"
)

// Score returns the permanence score for the protocol. Higher is more
// permanent: content-addressed and on-chain storage beats mutable hosting.
func (p Protocol) Score() int {
	switch p {
	case ProtocolData:
		return 10
	case ProtocolArweave:
		return 8
	case ProtocolIPFS:
		return 6
	case ProtocolIPNS:
		return 4
	case ProtocolHTTPS:
		return 2
	case ProtocolHTTP:
		return 1
	default:
		return 0
	}
}

// GatewayLevel classifies how a URI reaches its storage backend.
type GatewayLevel string

const (
	GatewayCentralized GatewayLevel = "centralized"
	GatewayIPFS        GatewayLevel = "ipfs_gateway"
	GatewayArweave     GatewayLevel = "arweave_gateway"
	GatewayNative      GatewayLevel = "native"
)

// ClassifyProtocol derives the protocol from the URI scheme and URL shape
// alone. It never depends on having fetched the body.
func ClassifyProtocol(raw string) Protocol {
	if strings.HasPrefix(raw, "data:") {
		return ProtocolData
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		// Inline SVG or JSON has no scheme yet can still fail URL parsing
		// (a colon before its first slash); it stays inline content.
		for i, c := range raw {
			switch {
			case c == ':' && i > 0:
				return ProtocolUnknown
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
			default:
				return ProtocolNone
			}
		}
		return ProtocolNone
	}

	switch strings.ToLower(parsed.Scheme) {
	case "":
		return ProtocolNone
	case "ipfs":
		return ProtocolIPFS
	case "ipns":
		return ProtocolIPNS
	case "ar":
		return ProtocolArweave
	case "http":
		return ProtocolHTTP
	case "https":
		// HTTPS URLs that encode content-addressed access keep the
		// underlying protocol for scoring purposes.
		if strings.Contains(parsed.Path, "/ipfs/") {
			return ProtocolIPFS
		}
		if strings.Contains(parsed.Host, "arweave") {
			return ProtocolArweave
		}
		return ProtocolHTTPS
	default:
		return ProtocolUnknown
	}
}

// ClassifyGateway determines whether the URI goes through an HTTP gateway and
// which kind. Native-scheme URIs (ipfs://, ar://, data:) are native even
// though they are commonly fetched via gateways.
func ClassifyGateway(raw string) (isGateway bool, level GatewayLevel) {
	if strings.HasPrefix(raw, "data:") {
		return false, GatewayNative
	}
	if strings.HasPrefix(raw, "ipfs://") || strings.HasPrefix(raw, "ipns://") || strings.HasPrefix(raw, "ar://") {
		return false, GatewayNative
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false, GatewayNative
	}

	// Substring heuristic matches common gateways (ipfs.io, dweb.link,
	// arweave.net). Unrelated paths containing "ipfs" misclassify; scores
	// downstream do not change if this is tightened later.
	if strings.Contains(raw, "ipfs") {
		return true, GatewayIPFS
	}
	if strings.Contains(raw, "arweave") {
		return true, GatewayArweave
	}
	return false, GatewayCentralized
}
