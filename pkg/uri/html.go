// Copyright 2025 Tokenlens
//
// External reference extraction from HTML documents

package uri

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlURLAttributes maps elements to the attributes that may carry external
// references.
var htmlURLAttributes = map[string][]string{
	"img":    {"src"},
	"script": {"src"},
	"link":   {"href"},
	"iframe": {"src"},
	"embed":  {"src"},
	"object": {"data"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"source": {"src"},
}

// ExtractHTMLReferences parses HTML content and returns every external
// reference from resource-loading elements plus CSS in <style> elements and
// style attributes.
func ExtractHTMLReferences(content string) ([]Reference, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var refs []Reference
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			name := strings.ToLower(n.Data)

			if attrs, ok := htmlURLAttributes[name]; ok {
				for _, want := range attrs {
					for _, attr := range n.Attr {
						if strings.ToLower(attr.Key) == want && isExternalReference(attr.Val) {
							refs = append(refs, Reference{URL: strings.TrimSpace(attr.Val), ElementType: name, Attribute: want})
						}
					}
				}
			}

			for _, attr := range n.Attr {
				if strings.ToLower(attr.Key) == "style" {
					refs = append(refs, extractCSSReferences(attr.Val, name, "style-attribute")...)
				}
			}

			if name == "style" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				refs = append(refs, extractCSSReferences(n.FirstChild.Data, "style", "css-content")...)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return refs, nil
}
