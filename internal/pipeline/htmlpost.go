package pipeline

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// CalloutType describes how one callout kind is rendered.
type CalloutType struct {
	Icon  string
	Label string
	Class string
}

// CalloutTypes maps the upper-case marker name to its rendering.
var CalloutTypes = map[string]CalloutType{
	"NOTE":      {Icon: "📝", Label: "Note", Class: "callout-note"},
	"TIP":       {Icon: "💡", Label: "Tip", Class: "callout-tip"},
	"IMPORTANT": {Icon: "⚡", Label: "Important", Class: "callout-important"},
	"WARNING":   {Icon: "⚠️", Label: "Warning", Class: "callout-warning"},
	"CAUTION":   {Icon: "🚫", Label: "Caution", Class: "callout-caution"},
}

const (
	blockquoteOpen  = "<blockquote>"
	blockquoteClose = "</blockquote>"
)

var (
	// calloutMarker matches a [!TYPE] marker opening the first paragraph.
	calloutMarker = regexp.MustCompile(`(?i)^\s*<p>\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\]\n?`)

	// headingOpenPattern matches bare heading tags (no attributes).
	headingOpenPattern = regexp.MustCompile(`<h([1-6])>`)

	// existingHeadingID captures the id of headings that already carry one.
	existingHeadingID = regexp.MustCompile(`<h[1-6]\s[^>]*\bid="([^"]*)"`)

	// htmlTagPattern matches HTML tags for stripping from heading text.
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// HTMLPostprocessor defines the contract for HTML post-processing.
type HTMLPostprocessor interface {
	PostprocessHTML(ctx context.Context, content string) string
}

// Postprocessor applies callout and heading ID transforms.
type Postprocessor struct{}

// PostprocessHTML applies Postprocess unless ctx is already done.
func (p *Postprocessor) PostprocessHTML(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	return Postprocess(content)
}

// Postprocess converts callout blockquotes then injects heading IDs.
// Running it twice yields the same output as running it once.
func Postprocess(content string) string {
	return InjectHeadingIDs(TransformCallouts(content))
}

// TransformCallouts rewrites every top-level blockquote whose first
// paragraph starts with [!TYPE] into a callout container. Nested
// blockquotes are tracked by depth so the callout body keeps them.
// Unbalanced blockquote tags stop the scan and the remainder is copied
// verbatim.
func TransformCallouts(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	i := 0
	for i < len(content) {
		start := strings.Index(content[i:], blockquoteOpen)
		if start == -1 {
			b.WriteString(content[i:])
			break
		}
		start += i
		b.WriteString(content[i:start])

		end, ok := matchBlockquote(content, start)
		if !ok {
			b.WriteString(content[start:])
			break
		}

		inner := content[start+len(blockquoteOpen) : end-len(blockquoteClose)]
		if callout, ok := renderCallout(inner); ok {
			b.WriteString(callout)
		} else {
			b.WriteString(content[start:end])
		}
		i = end
	}

	return b.String()
}

// matchBlockquote returns the index just past the </blockquote> closing the
// one opened at start, counting nested openings.
func matchBlockquote(content string, start int) (int, bool) {
	depth := 1
	j := start + len(blockquoteOpen)
	for depth > 0 {
		nextClose := strings.Index(content[j:], blockquoteClose)
		if nextClose == -1 {
			return 0, false
		}
		nextOpen := strings.Index(content[j:], blockquoteOpen)
		if nextOpen != -1 && nextOpen < nextClose {
			depth++
			j += nextOpen + len(blockquoteOpen)
			continue
		}
		depth--
		j += nextClose + len(blockquoteClose)
	}
	return j, true
}

func renderCallout(inner string) (string, bool) {
	m := calloutMarker.FindStringSubmatchIndex(inner)
	if m == nil {
		return "", false
	}
	t, ok := CalloutTypes[strings.ToUpper(inner[m[2]:m[3]])]
	if !ok {
		return "", false
	}
	body := strings.TrimSpace("<p>" + inner[m[1]:])
	return fmt.Sprintf("<div class=\"callout %s\">\n  <div class=\"callout-title\">%s %s</div>\n  <div class=\"callout-body\">%s</div>\n</div>",
		t.Class, t.Icon, t.Label, body), true
}

// InjectHeadingIDs adds an id attribute to every <h1>..<h6> that has no
// attributes. Repeated slugs within one document get -1, -2 suffixes, and
// ids already present on headings count as taken. Headings whose text
// yields an empty slug are left alone.
func InjectHeadingIDs(content string) string {
	var b strings.Builder
	b.Grow(len(content) + 64)

	used := make(map[string]int)
	for _, m := range existingHeadingID.FindAllStringSubmatch(content, -1) {
		if m[1] != "" {
			used[m[1]] = 0
		}
	}
	i := 0
	for i < len(content) {
		loc := headingOpenPattern.FindStringSubmatchIndex(content[i:])
		if loc == nil {
			break
		}
		openStart, openEnd := i+loc[0], i+loc[1]
		level := content[i+loc[2] : i+loc[3]]
		closeTag := "</h" + level + ">"

		rel := strings.Index(content[openEnd:], closeTag)
		if rel == -1 {
			b.WriteString(content[i:openEnd])
			i = openEnd
			continue
		}
		inner := content[openEnd : openEnd+rel]

		b.WriteString(content[i:openStart])
		if id := uniqueID(used, SlugifyHeading(HeadingText(inner))); id != "" {
			b.WriteString(`<h` + level + ` id="` + id + `">`)
		} else {
			b.WriteString(content[openStart:openEnd])
		}
		b.WriteString(inner)
		b.WriteString(closeTag)
		i = openEnd + rel + len(closeTag)
	}
	b.WriteString(content[i:])
	return b.String()
}

// HeadingText strips tags and decodes entities from a heading's inner HTML.
func HeadingText(inner string) string {
	return html.UnescapeString(htmlTagPattern.ReplaceAllString(inner, ""))
}

// SlugifyHeading lowercases text, drops characters outside [\w\s-] and
// turns whitespace runs into single hyphens. The same text always yields
// the same slug.
func SlugifyHeading(text string) string {
	s := strings.ToLower(text)
	s = nonSlugChars.ReplaceAllString(s, "")
	return whitespace.ReplaceAllString(s, "-")
}

func uniqueID(used map[string]int, slug string) string {
	if slug == "" {
		return ""
	}
	n, seen := used[slug]
	if !seen {
		used[slug] = 0
		return slug
	}
	for {
		n++
		candidate := slug + "-" + strconv.Itoa(n)
		if _, taken := used[candidate]; !taken {
			used[slug] = n
			used[candidate] = 0
			return candidate
		}
	}
}
