package pipeline

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
)

// Placeholder class names consumed by the client-side math renderer.
const (
	MathBlockClass  = "math-block"
	MathInlineClass = "math-inline"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Highlight syntax ==text== (single line, non-greedy)
	highlightPattern = regexp.MustCompile(`==(.+?)==`)

	// Block math $$...$$, may span lines
	blockMathPattern = regexp.MustCompile(`\$\$([\s\S]+?)\$\$`)

	// Opening fence of a fenced code block
	fenceOpenPattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// Preprocessor rewrites raw Markdown before Goldmark sees it.
type Preprocessor struct{}

// PreprocessMarkdown normalizes line endings then applies Preprocess.
func (p *Preprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	return Preprocess(crlfOrCR.ReplaceAllString(content, "\n"))
}

// Preprocess applies, in order: highlight, block math, inline math.
// Fenced code blocks and inline code spans are left untouched so shell
// variables and literal == never turn into markup.
func Preprocess(markdown string) string {
	return mapProse(markdown, func(prose string) string {
		prose = highlightPattern.ReplaceAllString(prose, "<mark>$1</mark>")
		prose = blockMathPattern.ReplaceAllStringFunc(prose, func(m string) string {
			expr := m[2 : len(m)-2]
			return `<div class="` + MathBlockClass + `" data-math="` + encodeMath(expr) + `"></div>`
		})
		return replaceInlineMath(prose)
	})
}

// DecodeMath returns the expression carried by a data-math attribute.
func DecodeMath(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeMath(expr string) string {
	return base64.StdEncoding.EncodeToString([]byte(expr))
}

// replaceInlineMath converts $expr$ on a single line. A $ directly preceded
// by another $ never opens inline math.
func replaceInlineMath(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	last := 0
	i := 0
	for i < len(s) {
		if s[i] != '$' || (i > 0 && s[i-1] == '$') {
			i++
			continue
		}
		end := strings.IndexAny(s[i+1:], "$\n")
		if end <= 0 || s[i+1+end] != '$' {
			i++
			continue
		}
		closeAt := i + 1 + end
		b.WriteString(s[last:i])
		b.WriteString(`<span class="` + MathInlineClass + `" data-math="` + encodeMath(s[i+1:closeAt]) + `"></span>`)
		i = closeAt + 1
		last = i
	}
	b.WriteString(s[last:])
	return b.String()
}

// mapProse applies fn to every region of markdown outside fenced code
// blocks and inline code spans.
func mapProse(markdown string, fn func(string) string) string {
	var out strings.Builder
	out.Grow(len(markdown))

	var prose strings.Builder
	flush := func() {
		if prose.Len() > 0 {
			out.WriteString(mapOutsideCodeSpans(prose.String(), fn))
			prose.Reset()
		}
	}

	var fence string
	for _, line := range strings.SplitAfter(markdown, "\n") {
		if fence != "" {
			out.WriteString(line)
			if isClosingFence(line, fence) {
				fence = ""
			}
			continue
		}
		if m := fenceOpenPattern.FindStringSubmatch(line); m != nil {
			flush()
			fence = m[1]
			out.WriteString(line)
			continue
		}
		prose.WriteString(line)
	}
	flush()
	return out.String()
}

func isClosingFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(fence) && strings.Trim(trimmed, fence[:1]) == ""
}

// mapOutsideCodeSpans applies fn between backtick code spans.
// An unmatched backtick run is treated as literal text.
func mapOutsideCodeSpans(s string, fn func(string) string) string {
	var out strings.Builder
	start := 0
	i := 0
	for i < len(s) {
		if s[i] != '`' {
			i++
			continue
		}
		run := countRun(s, i, '`')
		closeAt := findRun(s, i+run, run)
		if closeAt == -1 {
			i += run
			continue
		}
		out.WriteString(fn(s[start:i]))
		out.WriteString(s[i : closeAt+run])
		i = closeAt + run
		start = i
	}
	out.WriteString(fn(s[start:]))
	return out.String()
}

func countRun(s string, at int, c byte) int {
	n := 0
	for at+n < len(s) && s[at+n] == c {
		n++
	}
	return n
}

// findRun returns the index of the next backtick run of exactly n, or -1.
func findRun(s string, from, n int) int {
	for i := from; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		run := countRun(s, i, '`')
		if run == n {
			return i
		}
		i += run
	}
	return -1
}
