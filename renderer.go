package folio

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/citation"
	"github.com/alnah/go-folio/internal/content"
	"github.com/alnah/go-folio/internal/pipeline"
)

const defaultTimeout = 10 * time.Second

// Outline depth kept in RenderResult.Headings.
const (
	OutlineMinDepth = 2
	OutlineMaxDepth = 3
)

// RenderResult is the output of Render.
type RenderResult = content.Rendered

// Heading is one outline entry of a rendered document.
type Heading = pipeline.Heading

// Citation is one entry of a document's reference list.
type Citation = citation.Citation

// Renderer runs the Markdown to HTML pipeline. Safe for concurrent use.
type Renderer struct {
	cfg           rendererConfig
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	postprocessor pipeline.HTMLPostprocessor
	policy        *bluemonday.Policy
	assetLoader   assets.AssetLoader
}

var _ content.Renderer = (*Renderer)(nil)

type rendererConfig struct {
	timeout      time.Duration
	assetBaseURL string
	sanitize     bool
	citations    bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout bounds a single Render call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithAssetBaseURL prefixes relative img, video, audio and source paths.
func WithAssetBaseURL(base string) Option {
	return func(r *Renderer) {
		r.cfg.assetBaseURL = base
	}
}

// WithSanitize filters the rendered HTML through a UGC policy that keeps
// the callout, math and citation markup.
func WithSanitize(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.sanitize = enabled
	}
}

// WithCitations links [N] markers to the trailing reference list.
func WithCitations(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.citations = enabled
	}
}

// WithAssetLoader sets where Page reads stylesheets from. Defaults to the
// embedded assets.
func WithAssetLoader(loader assets.AssetLoader) Option {
	return func(r *Renderer) {
		if loader != nil {
			r.assetLoader = loader
		}
	}
}

// NewRenderer creates a Renderer with citations enabled and sanitizing off.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		cfg:           rendererConfig{timeout: defaultTimeout, citations: true},
		preprocessor:  &pipeline.Preprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		postprocessor: &pipeline.Postprocessor{},
		assetLoader:   assets.NewEmbeddedLoader(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cfg.sanitize {
		r.policy = contentPolicy()
	}

	return r
}

// Render converts markdown to an HTML fragment. Empty input yields an empty
// result; documents with front matter only are valid.
func (r *Renderer) Render(ctx context.Context, markdown string) (RenderResult, error) {
	if strings.TrimSpace(markdown) == "" {
		return RenderResult{}, nil
	}

	if r.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.timeout)
		defer cancel()
	}

	md := r.preprocessor.PreprocessMarkdown(ctx, markdown)
	if err := ctx.Err(); err != nil {
		return RenderResult{}, err
	}

	htmlContent, err := r.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		return RenderResult{}, fmt.Errorf("converting to HTML: %w", err)
	}

	htmlContent, err = pipeline.RewriteAssetPaths(htmlContent, r.cfg.assetBaseURL)
	if err != nil {
		return RenderResult{}, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	htmlContent = r.postprocessor.PostprocessHTML(ctx, htmlContent)
	if err := ctx.Err(); err != nil {
		return RenderResult{}, err
	}

	if r.policy != nil {
		htmlContent = r.policy.Sanitize(htmlContent)
	}

	var citations []Citation
	if r.cfg.citations {
		extracted := citation.Extract(htmlContent)
		htmlContent = extracted.HTML
		citations = extracted.Citations
	}

	return RenderResult{
		HTML:      htmlContent,
		Headings:  pipeline.ExtractOutline(htmlContent, OutlineMinDepth, OutlineMaxDepth),
		Citations: citations,
	}, nil
}

// Page renders markdown into a standalone HTML document carrying the
// content, citation and highlight stylesheets.
func (r *Renderer) Page(ctx context.Context, title, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", ErrEmptyMarkdown
	}

	res, err := r.Render(ctx, markdown)
	if err != nil {
		return "", err
	}

	css, err := r.pageCSS()
	if err != nil {
		return "", err
	}
	return pipeline.WrapDocument(title, res.HTML, css), nil
}

func (r *Renderer) pageCSS() (string, error) {
	var b strings.Builder
	for _, name := range []string{assets.ContentStyle, assets.CitationStyle} {
		css, err := r.assetLoader.LoadStyle(name)
		if err != nil {
			return "", fmt.Errorf("loading style %q: %w", name, err)
		}
		b.WriteString(css)
		b.WriteString("\n")
	}
	highlight, err := pipeline.HighlightCSS()
	if err != nil {
		return "", fmt.Errorf("building highlight CSS: %w", err)
	}
	b.WriteString(highlight)
	return b.String(), nil
}

var (
	classValue = regexp.MustCompile(`^[\w\s-]+$`)
	mathValue  = regexp.MustCompile(`^[A-Za-z0-9+/=_-]*$`)
	digits     = regexp.MustCompile(`^[0-9]+$`)
)

// contentPolicy extends the UGC policy with the attributes produced by
// the pipeline.
func contentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("mark")
	p.AllowAttrs("class").Matching(classValue).Globally()
	p.AllowAttrs("data-math").Matching(mathValue).OnElements("div", "span")
	p.AllowAttrs("data-citation").Matching(digits).OnElements("span")
	return p
}
