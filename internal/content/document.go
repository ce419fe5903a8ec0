package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-folio/internal/citation"
	"github.com/alnah/go-folio/internal/pipeline"
)

// Kind names a content collection and its directory.
type Kind string

const (
	Posts     Kind = "posts"
	Projects  Kind = "projects"
	Creatives Kind = "creatives"
)

// Kinds lists every content kind in display order.
var Kinds = []Kind{Posts, Projects, Creatives}

// ParseKind accepts plural or singular kind names, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "posts", "post":
		return Posts, nil
	case "projects", "project":
		return Projects, nil
	case "creatives", "creative":
		return Creatives, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Singular returns the lower-case singular name used as a type tag.
func (k Kind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

// Title returns the capitalized singular name ("Post").
func (k Kind) Title() string {
	s := k.Singular()
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DefaultCategory is used when front matter names no category.
func (k Kind) DefaultCategory() string {
	if k == Creatives {
		return "Art"
	}
	return "General"
}

// Document is one loaded Markdown file.
type Document struct {
	ID          int                 `json:"id"`
	Kind        Kind                `json:"kind"`
	Slug        string              `json:"slug"`
	Title       string              `json:"title"`
	Excerpt     string              `json:"excerpt,omitempty"`
	Description string              `json:"description,omitempty"`
	Content     string              `json:"content"`
	Tags        []string            `json:"tags"`
	Category    string              `json:"category"`
	Featured    bool                `json:"featured"`
	Published   bool                `json:"published"`
	PublishedAt time.Time           `json:"publishedAt"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	DisplayDate string              `json:"displayDate,omitempty"`
	Cover       string              `json:"cover,omitempty"`
	Image       string              `json:"image,omitempty"`
	Order       int                 `json:"order"`
	Status      string              `json:"status,omitempty"`
	Tech        []string            `json:"tech,omitempty"`
	Link        string              `json:"link,omitempty"`
	GitHub      string              `json:"github,omitempty"`
	Headings    []pipeline.Heading  `json:"headings,omitempty"`
	Citations   []citation.Citation `json:"citations,omitempty"`

	RawBody    string `json:"-"`
	SourcePath string `json:"-"`
}

// HasTag reports whether d carries tag, ignoring case.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Matches reports whether query occurs, ignoring case, in the title, body,
// tags or category.
func (d *Document) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.RawBody), q) ||
		strings.Contains(strings.ToLower(d.Category), q) {
		return true
	}
	for _, t := range d.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Rendered is the output of rendering one Markdown body.
type Rendered struct {
	HTML      string              `json:"html"`
	Headings  []pipeline.Heading  `json:"headings,omitempty"`
	Citations []citation.Citation `json:"citations,omitempty"`
}

// Renderer turns a Markdown body into HTML.
type Renderer interface {
	Render(ctx context.Context, markdown string) (Rendered, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, markdown string) (Rendered, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, markdown string) (Rendered, error) {
	return f(ctx, markdown)
}
