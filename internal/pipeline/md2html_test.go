package pipeline

// Notes:
// - Goldmark output is asserted with substrings: exact whitespace between
//   block elements is the engine's concern, not ours.
// - The full-chain tests pin the contract the content loader relies on:
//   Preprocess -> ToHTML -> Postprocess.

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// render runs the three stages the way the root Renderer does.
func render(t *testing.T, markdown string) string {
	t.Helper()
	out, err := NewGoldmarkConverter().ToHTML(context.Background(), Preprocess(markdown))
	if err != nil {
		t.Fatalf("ToHTML() error: %v", err)
	}
	return Postprocess(out)
}

// ---------------------------------------------------------------------------
// TestGoldmarkConverter - Markdown engine wiring
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{"paragraph", "Hello", []string{"<p>Hello</p>"}},
		{"gfm table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"strikethrough", "~~gone~~", []string{"<del>gone</del>"}},
		{"footnote", "Text[^1]\n\n[^1]: Note", []string{"footnote"}},
		{"code block uses classes", "```go\nfunc main() {}\n```", []string{`class="chroma"`}},
		{"raw html kept", "<mark>x</mark>", []string{"<mark>x</mark>"}},
	}

	c := NewGoldmarkConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := c.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML(%q) missing %q in %q", tt.input, want, got)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ReturnsFragment(t *testing.T) {
	t.Parallel()

	got, err := NewGoldmarkConverter().ToHTML(context.Background(), "# Title")
	if err != nil {
		t.Fatalf("ToHTML() error: %v", err)
	}
	if strings.Contains(got, "<html") || strings.Contains(got, "<body") {
		t.Errorf("ToHTML() = %q, want a fragment", got)
	}
	if !strings.Contains(got, "<h1>Title</h1>") {
		t.Errorf("ToHTML() = %q, want bare <h1> for the heading ID pass", got)
	}
}

func TestGoldmarkConverter_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "text")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	css, err := HighlightCSS()
	if err != nil {
		t.Fatalf("HighlightCSS() error: %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("HighlightCSS() missing .chroma rules")
	}
}

// ---------------------------------------------------------------------------
// TestPipeline - Preprocess, convert, postprocess
// ---------------------------------------------------------------------------

func TestPipeline_Callout(t *testing.T) {
	t.Parallel()

	got := render(t, "> [!IMPORTANT]\n> Back up first.\n>\n> - step one\n")

	for _, want := range []string{
		`<div class="callout callout-important">`,
		`<div class="callout-title">⚡ Important</div>`,
		"Back up first.",
		"<li>step one</li>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered callout missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "[!IMPORTANT]") {
		t.Errorf("marker not stripped: %q", got)
	}
}

func TestPipeline_HighlightAndMath(t *testing.T) {
	t.Parallel()

	got := render(t, "A ==key== idea: $E = mc^2$.\n\n$$\nx^2\n$$\n")

	if !strings.Contains(got, "<mark>key</mark>") {
		t.Errorf("highlight missing: %q", got)
	}
	exprs := decodeAll(t, got)
	if len(exprs) != 2 || exprs[0] != "E = mc^2" || exprs[1] != "\nx^2\n" {
		t.Errorf("math expressions = %q", exprs)
	}
}

func TestPipeline_MathSurvivesEmphasisSyntax(t *testing.T) {
	t.Parallel()

	got := render(t, "Inline $a_1 * b_2 * c_3$ stays intact.")
	exprs := decodeAll(t, got)
	if len(exprs) != 1 || exprs[0] != "a_1 * b_2 * c_3" {
		t.Errorf("math expressions = %q, want underscores and asterisks preserved", exprs)
	}
	if strings.Contains(got, "<em>") {
		t.Errorf("converter emphasized math content: %q", got)
	}
}

func TestPipeline_HeadingIDs(t *testing.T) {
	t.Parallel()

	got := render(t, "## Hello, World!\n\ntext\n\n## Hello, World!\n")
	if !strings.Contains(got, `<h2 id="hello-world">`) || !strings.Contains(got, `<h2 id="hello-world-1">`) {
		t.Errorf("heading ids missing: %q", got)
	}
}
