package content

import (
	"context"
	"errors"
	"fmt"
)

// Library groups one Repository per kind.
type Library struct {
	repos map[Kind]*Repository
}

// NewLibrary builds a library from repositories. Later repositories replace
// earlier ones of the same kind.
func NewLibrary(repos ...*Repository) *Library {
	l := &Library{repos: make(map[Kind]*Repository, len(repos))}
	for _, r := range repos {
		l.repos[r.Kind()] = r
	}
	return l
}

// Repository returns the repository for kind.
func (l *Library) Repository(kind Kind) (*Repository, error) {
	r, ok := l.repos[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return r, nil
}

// Repositories returns the repositories in Kinds order.
func (l *Library) Repositories() []*Repository {
	out := make([]*Repository, 0, len(l.repos))
	for _, k := range Kinds {
		if r, ok := l.repos[k]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RefreshAll reloads every repository and returns the published count per
// kind. Every repository is attempted; errors are joined.
func (l *Library) RefreshAll(ctx context.Context) (map[Kind]int, error) {
	counts := make(map[Kind]int, len(l.repos))
	var errs []error
	for _, r := range l.Repositories() {
		n, err := r.Refresh(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		counts[r.Kind()] = n
	}
	return counts, errors.Join(errs...)
}

// Hit is one search result tagged with its kind.
type Hit struct {
	Type string `json:"type"`
	Document
}

// Search runs query against every kind and returns the hits flattened in
// Kinds order.
func (l *Library) Search(query string) []Hit {
	hits := []Hit{}
	for _, r := range l.Repositories() {
		for _, d := range r.Search(query) {
			hits = append(hits, Hit{Type: r.Kind().Singular(), Document: d})
		}
	}
	return hits
}
