// Copyright 2025 Tokenlens
//
// External reference extraction from SVG documents

package uri

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// Reference is a raw external reference found in a document, before
// classification.
type Reference struct {
	URL         string
	ElementType string
	Attribute   string
}

var (
	cssURLPattern    = regexp.MustCompile(`(?i)url\s*\(\s*["']?([^"')\s]+)["']?\s*\)`)
	cssImportPattern = regexp.MustCompile(`(?i)@import\s+["']([^"']+)["']`)
)

// ExtractSVGReferences parses SVG content and returns every external
// reference: href/xlink:href on any element, src attributes, and URLs inside
// CSS in <style> elements or style attributes.
func ExtractSVGReferences(content string) ([]Reference, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity

	var refs []Reference
	var styleDepth int
	sawElement := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			if !sawElement {
				return nil, err
			}
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
			name := strings.ToLower(t.Name.Local)
			if name == "style" {
				styleDepth++
			}
			for _, attr := range t.Attr {
				attrName := strings.ToLower(attr.Name.Local)
				if attr.Name.Space != "" && strings.Contains(strings.ToLower(attr.Name.Space), "xlink") {
					attrName = "xlink:" + attrName
				}
				switch attrName {
				case "href", "xlink:href", "src":
					if isExternalReference(attr.Value) {
						refs = append(refs, Reference{URL: strings.TrimSpace(attr.Value), ElementType: name, Attribute: attrName})
					}
				case "style":
					refs = append(refs, extractCSSReferences(attr.Value, name, "style-attribute")...)
				}
			}
		case xml.EndElement:
			if strings.ToLower(t.Name.Local) == "style" && styleDepth > 0 {
				styleDepth--
			}
		case xml.CharData:
			if styleDepth > 0 {
				refs = append(refs, extractCSSReferences(string(t), "style", "css-content")...)
			}
		}
	}

	return refs, nil
}

// extractCSSReferences pulls url(...) and @import targets out of CSS text.
func extractCSSReferences(css, elementType, attribute string) []Reference {
	var refs []Reference
	for _, m := range cssURLPattern.FindAllStringSubmatch(css, -1) {
		if isExternalReference(m[1]) {
			refs = append(refs, Reference{URL: m[1], ElementType: elementType, Attribute: attribute})
		}
	}
	for _, m := range cssImportPattern.FindAllStringSubmatch(css, -1) {
		if isExternalReference(m[1]) {
			refs = append(refs, Reference{URL: m[1], ElementType: elementType, Attribute: attribute})
		}
	}
	return refs
}

// isExternalReference reports whether a raw attribute value points outside
// the document. Pure fragments and javascript:/mailto: URIs do not.
func isExternalReference(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return false
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return false
	}
	return true
}
