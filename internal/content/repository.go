package content

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alnah/go-folio/internal/logging"
)

// ReloadHook is called after every Refresh attempt.
type ReloadHook func(kind Kind, count int, err error)

// snapshot is an immutable view of one load.
type snapshot struct {
	all       []Document // every loaded document, default order
	published []Document // published only, default order
	bySlug    map[string]int
	report    *LoadResult
}

func newSnapshot(res *LoadResult) *snapshot {
	s := &snapshot{
		all:    res.Documents,
		bySlug: make(map[string]int, len(res.Documents)),
		report: res,
	}
	for _, d := range res.Documents {
		if !d.Published {
			continue
		}
		s.bySlug[d.Slug] = len(s.published)
		s.published = append(s.published, d)
	}
	return s
}

// Repository serves the documents of one kind from memory.
//
// Refresh loads a complete new snapshot before taking the write lock, so
// readers see either the old set or the new one and never an empty store
// while a reload is in progress. A failed Refresh keeps the old snapshot.
type Repository struct {
	kind   Kind
	dir    string
	loader *Loader
	logger logging.Logger
	hook   ReloadHook

	refreshMu sync.Mutex // serializes loads
	mu        sync.RWMutex
	snap      *snapshot
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithReloadHook registers fn to observe reloads.
func WithReloadHook(fn ReloadHook) RepositoryOption {
	return func(r *Repository) {
		r.hook = fn
	}
}

// WithRepositoryLogger sets the logger for reload events.
func WithRepositoryLogger(l logging.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = logging.OrNoOp(l)
	}
}

// NewRepository creates an empty repository for kind reading from dir.
// Call Refresh to populate it.
func NewRepository(kind Kind, dir string, loader *Loader, opts ...RepositoryOption) *Repository {
	r := &Repository{
		kind:   kind,
		dir:    dir,
		loader: loader,
		logger: logging.NoOp(),
		snap:   newSnapshot(&LoadResult{Kind: kind, Dir: dir}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Kind returns the repository's kind.
func (r *Repository) Kind() Kind { return r.kind }

// Dir returns the directory the repository loads from.
func (r *Repository) Dir() string { return r.dir }

// Refresh reloads the directory and replaces the stored documents. It
// returns the number of published documents now served.
func (r *Repository) Refresh(ctx context.Context) (int, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	r.logger.Debug("reloading", "kind", r.kind, "dir", r.dir)
	res, err := r.loader.LoadAll(ctx, r.kind, r.dir)
	if err != nil {
		r.logger.Error("reload failed", "kind", r.kind, "dir", r.dir, "error", err)
		r.notify(0, err)
		return 0, fmt.Errorf("refreshing %s: %w", r.kind, err)
	}

	next := newSnapshot(res)
	r.mu.Lock()
	r.snap = next
	r.mu.Unlock()

	count := len(next.published)
	r.logger.Info("reloaded", "kind", r.kind, "documents", count, "skipped", len(res.Skipped))
	r.notify(count, nil)
	return count, nil
}

func (r *Repository) notify(count int, err error) {
	if r.hook != nil {
		r.hook(r.kind, count, err)
	}
}

func (r *Repository) current() *snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// All returns published documents in the kind's default order.
func (r *Repository) All() []Document {
	return append([]Document{}, r.current().published...)
}

// Newest returns published documents newest first regardless of kind.
func (r *Repository) Newest() []Document {
	docs := r.All()
	SortNewest(docs)
	return docs
}

// Documents returns every loaded document, unpublished ones included.
func (r *Repository) Documents() []Document {
	return append([]Document{}, r.current().all...)
}

// Report returns the result of the last successful load.
func (r *Repository) Report() *LoadResult {
	return r.current().report
}

// Get returns the published document with slug.
func (r *Repository) Get(slug string) (Document, error) {
	s := r.current()
	i, ok := s.bySlug[slug]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s %q", ErrNotFound, r.kind.Singular(), slug)
	}
	return s.published[i], nil
}

// Featured returns published documents marked featured.
func (r *Repository) Featured() []Document {
	return r.filter(func(d *Document) bool { return d.Featured })
}

// ByTag returns published documents carrying tag, ignoring case.
func (r *Repository) ByTag(tag string) []Document {
	return r.filter(func(d *Document) bool { return d.HasTag(tag) })
}

// ByCategory returns published documents in category, ignoring case.
func (r *Repository) ByCategory(category string) []Document {
	return r.filter(func(d *Document) bool { return strings.EqualFold(d.Category, category) })
}

// Search returns published documents whose title, body, tags or category
// contain query, ignoring case. An empty query matches nothing.
func (r *Repository) Search(query string) []Document {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Document{}
	}
	return r.filter(func(d *Document) bool { return d.Matches(query) })
}

func (r *Repository) filter(keep func(*Document) bool) []Document {
	out := []Document{}
	for _, d := range r.current().published {
		if keep(&d) {
			out = append(out, d)
		}
	}
	return out
}
