package content

import (
	"regexp"
	"strings"

	"github.com/alnah/go-folio/internal/fileutil"
)

var slashRun = regexp.MustCompile(`/{2,}`)

// ResolveImagePath normalizes a cover or image reference to a site path.
// URLs pass through; bare creative file names live under /creatives/.
func ResolveImagePath(ref string, kind Kind) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if fileutil.IsURL(ref) {
		return ref
	}
	p := strings.TrimPrefix(ref, "/")
	if kind == Creatives && !strings.Contains(p, "/") {
		p = "creatives/" + p
	}
	return "/" + strings.TrimPrefix(slashRun.ReplaceAllString(p, "/"), "/")
}
