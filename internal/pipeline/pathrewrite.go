package pipeline

import (
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// mediaAttrs lists the element/attribute pairs that reference assets.
var mediaAttrs = map[string]string{
	"img":    "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
}

// RewriteAssetPaths prefixes relative media references with baseURL.
// If baseURL is empty, returns the HTML unchanged.
//
// Rewrites img, video, audio and source src attributes. Leaves alone:
//   - absolute paths and URLs (already resolved)
//   - data: URIs and fragments
//   - paths escaping the base with ".." (left as authored)
func RewriteAssetPaths(htmlContent, baseURL string) (string, error) {
	if baseURL == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(baseURL, "/")
	rewriteNode(doc, base)

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, base string) {
	if n.Type == html.ElementNode {
		if attr, ok := mediaAttrs[n.Data]; ok {
			rewriteAttr(n, attr, base)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, base)
	}
}

func rewriteAttr(n *html.Node, key, base string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}
		cleaned := path.Clean(attr.Val)
		if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			continue
		}
		n.Attr[i].Val = base + "/" + cleaned
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(p string) bool {
	if p == "" {
		return false
	}
	for _, prefix := range []string{"http://", "https://", "data:", "//", "/", "#", "mailto:"} {
		if strings.HasPrefix(p, prefix) {
			return false
		}
	}
	return true
}
