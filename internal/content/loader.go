package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-folio/internal/dateutil"
	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/logging"
)

// ExcerptLength is the number of body characters used for a derived excerpt.
const ExcerptLength = 200

// Skipped records a file LoadAll could not load.
type Skipped struct {
	File string
	Err  error
}

// LoadResult is the outcome of loading one directory.
type LoadResult struct {
	Kind       Kind
	Dir        string
	Documents  []Document
	Skipped    []Skipped
	Duplicates []string // files dropped because their slug was taken
}

// Loader reads Markdown documents from a directory.
type Loader struct {
	renderer Renderer
	logger   logging.Logger
	dates    *dateutil.Formatter
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report skipped files.
func WithLogger(l logging.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = logging.OrNoOp(l)
	}
}

// WithDateFormatter sets the formatter for DisplayDate.
func WithDateFormatter(f *dateutil.Formatter) LoaderOption {
	return func(ld *Loader) {
		if f != nil {
			ld.dates = f
		}
	}
}

// NewLoader creates a Loader rendering bodies with r.
func NewLoader(r Renderer, opts ...LoaderOption) *Loader {
	dates, _ := dateutil.NewFormatter(dateutil.DefaultDisplayFormat)
	l := &Loader{renderer: r, logger: logging.NoOp(), dates: dates}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll loads every Markdown file directly inside dir. Files that fail
// to parse or render are logged and skipped. Only an unreadable directory
// or a canceled context is returned as an error.
//
// Files are read in name order; when two files share a slug the first
// one wins, unless it is hidden and a later one is published. Documents are returned in the kind's default order.
func (l *Loader) LoadAll(ctx context.Context, kind Kind, dir string) (*LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrContentDirNotFound, dir)
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	res := &LoadResult{Kind: kind, Dir: dir}
	seen := make(map[string]int) // slug to index in res.Documents
	var files []string           // source file per document

	for _, entry := range entries {
		if entry.IsDir() || !fileutil.IsMarkdown(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, entry.Name())
		doc, err := l.loadFile(ctx, kind, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			l.logger.Warn("skipping malformed document", "kind", kind, "file", path, "error", err)
			res.Skipped = append(res.Skipped, Skipped{File: path, Err: err})
			continue
		}

		if i, dup := seen[doc.Slug]; dup {
			kept := &res.Documents[i]
			if kept.Published || !doc.Published {
				l.logger.Warn("skipping duplicate slug", "kind", kind, "slug", doc.Slug, "file", path, "kept", files[i])
				res.Duplicates = append(res.Duplicates, path)
				continue
			}
			l.logger.Warn("published document replaces hidden duplicate", "kind", kind, "slug", doc.Slug, "file", path, "dropped", files[i])
			res.Duplicates = append(res.Duplicates, files[i])
			doc.ID = kept.ID
			*kept = doc
			files[i] = path
			continue
		}
		seen[doc.Slug] = len(res.Documents)
		files = append(files, path)

		doc.ID = len(res.Documents) + 1
		res.Documents = append(res.Documents, doc)
	}

	SortDefault(kind, res.Documents)
	l.logger.Debug("loaded documents", "kind", kind, "dir", dir, "count", len(res.Documents), "skipped", len(res.Skipped))
	return res, nil
}

func (l *Loader) loadFile(ctx context.Context, kind Kind, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = f.Close() }()

	fm, body, err := ParseFrontMatter(f)
	if err != nil {
		return Document{}, err
	}
	published, err := fm.PublishedAt()
	if err != nil {
		return Document{}, err
	}

	rendered, err := l.renderer.Render(ctx, body)
	if err != nil {
		return Document{}, fmt.Errorf("rendering: %w", err)
	}

	doc := Document{
		Kind:        kind,
		Slug:        DeriveSlug(fm.Slug, path),
		Title:       strings.TrimSpace(fm.Title),
		Content:     rendered.HTML,
		Headings:    rendered.Headings,
		Citations:   rendered.Citations,
		Tags:        cleanTags(fm.Tags),
		Category:    strings.TrimSpace(fm.Category),
		Featured:    fm.Featured,
		Published:   fm.IsPublished(),
		PublishedAt: published,
		CreatedAt:   published,
		UpdatedAt:   published,
		DisplayDate: l.dates.Format(published),
		Order:       fm.Order,
		RawBody:     body,
		SourcePath:  path,
	}
	if doc.Category == "" {
		doc.Category = kind.DefaultCategory()
	}
	applyKindFields(&doc, fm)
	return doc, nil
}

// applyKindFields fills the fields whose defaults depend on the kind.
func applyKindFields(doc *Document, fm FrontMatter) {
	switch doc.Kind {
	case Posts:
		doc.Excerpt = fm.Excerpt
		if doc.Excerpt == "" {
			doc.Excerpt = deriveExcerpt(doc.RawBody)
		}
		doc.Cover = ResolveImagePath(fm.Cover, Posts)
	case Projects:
		doc.Description = fm.Description
		doc.Status = fm.Status
		if doc.Status == "" {
			doc.Status = "completed"
		}
		doc.Tech = cleanTags(fm.TechList())
		doc.Link = fm.Link
		doc.GitHub = fm.GitHub
		cover := fm.Cover
		if cover == "" {
			cover = fm.Image
		}
		doc.Cover = ResolveImagePath(cover, Projects)
	case Creatives:
		doc.Description = fm.Description
		if doc.Description == "" {
			doc.Description = fm.Excerpt
		}
		image := fm.Image
		if image == "" {
			image = fm.Cover
		}
		doc.Image = ResolveImagePath(image, Creatives)
	}
}

// deriveExcerpt returns the first ExcerptLength characters of body,
// with "..." appended when it was cut.
func deriveExcerpt(body string) string {
	text := strings.TrimSpace(body)
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "..."
}
