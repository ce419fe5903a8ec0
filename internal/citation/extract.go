package citation

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-folio/internal/pipeline"
)

// MarkerClass is the class of the element wrapping a [N] marker.
const MarkerClass = "citation-ref"

// Citation is one numbered entry of a document's reference list.
type Citation struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	URL    string `json:"url,omitempty"`
}

// Result is the output of Extract.
type Result struct {
	Citations []Citation `json:"citations"`
	HTML      string     `json:"html"`
}

// Lookup returns the citation numbered n.
func (r Result) Lookup(n int) (Citation, bool) {
	for _, c := range r.Citations {
		if c.Number == n {
			return c, true
		}
	}
	return Citation{}, false
}

var (
	// referenceEntry matches the leading [N] of a reference paragraph.
	referenceEntry = regexp.MustCompile(`^\[(\d+)\]\s*([\s\S]*)`)

	// h2Element matches an h2 and captures its inner HTML.
	h2Element = regexp.MustCompile(`(?is)<h2(?:\s[^>]*)?>(.*?)</h2>`)

	// bodyToken matches either a tag or a [N] marker.
	bodyToken = regexp.MustCompile(`(<[^>]*>)|\[(\d+)\]`)

	// referenceParagraph matches a bare <p> opening a reference entry.
	referenceParagraph = regexp.MustCompile(`<p>\[(\d+)\]`)
)

var headingNames = map[string]bool{
	"references":   true,
	"bibliography": true,
	"sources":      true,
}

// Extract collects citations from the reference section of htmlContent and
// returns the HTML with interactive markers and reference anchors.
//
// Without a reference heading, or when no [N] entries follow it, the input
// is returned unchanged with no citations. Markers in the body are only
// wrapped when their number exists in the reference list. Running Extract
// on its own output yields the same HTML.
func Extract(htmlContent string) Result {
	unchanged := Result{HTML: htmlContent}

	citations, ok := collect(htmlContent)
	if !ok || len(citations) == 0 {
		return unchanged
	}

	split := headingOffset(htmlContent)
	if split < 0 {
		return unchanged
	}

	known := make(map[int]bool, len(citations))
	for _, c := range citations {
		known[c.Number] = true
	}

	body := markBody(htmlContent[:split], known)
	refs := referenceParagraph.ReplaceAllString(htmlContent[split:], `<p id="ref-$1">[$1]`)

	return Result{Citations: citations, HTML: body + refs}
}

// AnchorID returns the id given to the reference paragraph numbered n.
func AnchorID(n int) string {
	return "ref-" + strconv.Itoa(n)
}

// headingOffset returns the offset of the last reference heading in the raw
// HTML, or -1. It applies the same text test as collect so inline markup
// inside the heading does not change the outcome.
func headingOffset(htmlContent string) int {
	offset := -1
	for _, loc := range h2Element.FindAllStringSubmatchIndex(htmlContent, -1) {
		if isReferenceHeading(pipeline.HeadingText(htmlContent[loc[2]:loc[3]])) {
			offset = loc[0]
		}
	}
	return offset
}

func isReferenceHeading(text string) bool {
	return headingNames[strings.ToLower(strings.TrimSpace(text))]
}

// collect parses the fragment and reads the entries following the last
// reference heading. ok is false when there is no such heading.
func collect(htmlContent string) ([]Citation, bool) {
	parent := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(htmlContent), parent)
	if err != nil {
		return nil, false
	}

	var heading *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.H2 && isReferenceHeading(textContent(n)) {
			heading = n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// ParseFragment returns detached top-level nodes; link them so the
	// heading's siblings are reachable.
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	walk(root)
	if heading == nil {
		return nil, false
	}

	var citations []Citation
	for sib := heading.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		m := referenceEntry.FindStringSubmatch(textContent(sib))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		citations = append(citations, Citation{
			Number: n,
			Text:   strings.TrimSpace(m[2]),
			URL:    firstHref(sib),
		})
	}
	return citations, true
}

// markBody wraps known [N] markers found in text, leaving tags, code and
// existing markers alone.
func markBody(body string, known map[int]bool) string {
	var b strings.Builder
	b.Grow(len(body) + 64)

	var g guard
	last := 0
	for _, loc := range bodyToken.FindAllStringSubmatchIndex(body, -1) {
		b.WriteString(body[last:loc[0]])
		last = loc[1]
		token := body[loc[0]:loc[1]]

		if loc[2] >= 0 {
			g.tag(token)
			b.WriteString(token)
			continue
		}

		n, err := strconv.Atoi(body[loc[4]:loc[5]])
		if g.protected() || err != nil || !known[n] {
			b.WriteString(token)
			continue
		}
		b.WriteString(`<span class="` + MarkerClass + `" data-citation="` + strconv.Itoa(n) + `">` + token + `</span>`)
	}
	b.WriteString(body[last:])
	return b.String()
}

// guard tracks whether the scanner is inside code, pre or an existing
// citation marker.
type guard struct {
	code  int
	spans []bool // open spans; true marks a citation marker
}

func (g *guard) protected() bool {
	if g.code > 0 {
		return true
	}
	for _, marker := range g.spans {
		if marker {
			return true
		}
	}
	return false
}

func (g *guard) tag(tag string) {
	lower := strings.ToLower(tag)
	switch {
	case hasTagName(lower, "<code"), hasTagName(lower, "<pre"):
		g.code++
	case lower == "</code>", lower == "</pre>":
		if g.code > 0 {
			g.code--
		}
	case hasTagName(lower, "<span"):
		g.spans = append(g.spans, strings.Contains(lower, MarkerClass))
	case lower == "</span>":
		if len(g.spans) > 0 {
			g.spans = g.spans[:len(g.spans)-1]
		}
	}
}

// hasTagName reports whether tag opens the element named by prefix
// ("<code" must not match "<codex").
func hasTagName(tag, prefix string) bool {
	if !strings.HasPrefix(tag, prefix) || len(tag) == len(prefix) {
		return false
	}
	switch tag[len(prefix)] {
	case '>', ' ', '\t', '\n', '/':
		return true
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func firstHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		for _, a := range n.Attr {
			if a.Key == "href" {
				return a.Val
			}
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := firstHref(c); href != "" {
			return href
		}
	}
	return ""
}
