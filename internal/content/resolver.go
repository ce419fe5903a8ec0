package content

import (
	"os"
	"path/filepath"

	"github.com/alnah/go-folio/internal/fileutil"
)

// LambdaContentRoot is where serverless deployments unpack content.
const LambdaContentRoot = "/var/task/content"

// DefaultRoots returns the content roots tried when none are configured:
// ./content, ../content, <exe>/../../content, then LambdaContentRoot.
func DefaultRoots() []string {
	roots := []string{}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots,
			filepath.Join(wd, "content"),
			filepath.Join(wd, "..", "content"),
		)
	}
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Join(filepath.Dir(exe), "..", "..", "content"))
	}
	return append(roots, LambdaContentRoot)
}

// Resolver finds the directory of a kind among ordered candidate roots.
type Resolver struct {
	roots     []string
	dirExists func(string) bool
}

// NewResolver creates a resolver over roots, in priority order. With no
// roots it uses DefaultRoots.
func NewResolver(roots ...string) *Resolver {
	if len(roots) == 0 {
		roots = DefaultRoots()
	}
	return &Resolver{roots: roots, dirExists: fileutil.DirExists}
}

// Roots returns the candidate roots in priority order.
func (r *Resolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// Resolve returns root/kind for the first root where that directory
// exists. The error is a *ResolveError listing every path tried.
func (r *Resolver) Resolve(kind Kind) (string, error) {
	attempted := make([]string, 0, len(r.roots))
	for _, root := range r.roots {
		dir := filepath.Clean(filepath.Join(root, string(kind)))
		if r.dirExists(dir) {
			return dir, nil
		}
		attempted = append(attempted, dir)
	}
	return "", &ResolveError{Kind: kind, Attempted: attempted}
}
