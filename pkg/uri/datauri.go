// Copyright 2025 Tokenlens
//
// data: URI parsing

package uri

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DataURIInfo holds the parsed parts of a data: URI.
type DataURIInfo struct {
	MediaType string
	Encoding  Encoding
	Raw       string
	Decoded   []byte
}

// SizeBytes returns the decoded payload length.
func (d *DataURIInfo) SizeBytes() int64 {
	return int64(len(d.Decoded))
}

// ParseDataURI parses data:[<mediatype>][;base64],<payload>. The media type
// defaults to text/plain when the header omits it.
func ParseDataURI(raw string) (*DataURIInfo, error) {
	if !strings.HasPrefix(raw, "data:") {
		return nil, fmt.Errorf("not a data URI")
	}

	header, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI: missing comma separator")
	}

	parts := strings.Split(strings.TrimPrefix(header, "data:"), ";")
	mediaType := parts[0]
	if mediaType == "" {
		mediaType = "text/plain"
	}

	isBase64 := false
	for _, p := range parts[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}

	info := &DataURIInfo{MediaType: mediaType, Raw: payload}
	switch {
	case isBase64:
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some on-chain encoders emit unpadded base64.
			decoded, err = base64.RawStdEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
			}
		}
		info.Encoding = EncodingBase64
		info.Decoded = decoded
	case strings.Contains(payload, "%"):
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode percent-encoded payload: %w", err)
		}
		info.Encoding = EncodingPercent
		info.Decoded = []byte(decoded)
	default:
		info.Encoding = EncodingPlain
		info.Decoded = []byte(payload)
	}

	return info, nil
}
