package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// idHeadingPattern matches h1-h6 tags carrying an id attribute.
// Captures: 1=level, 2=id, 3=inner HTML (may contain inline tags)
var idHeadingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

// ExtractOutline returns headings between minDepth and maxDepth that carry
// an id, in document order. Run it after InjectHeadingIDs.
func ExtractOutline(content string, minDepth, maxDepth int) []Heading {
	matches := idHeadingPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	var headings []Heading
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		if level < minDepth || level > maxDepth {
			continue
		}
		headings = append(headings, Heading{
			Level: level,
			ID:    m[2],
			Text:  strings.TrimSpace(HeadingText(m[3])),
		})
	}
	return headings
}
