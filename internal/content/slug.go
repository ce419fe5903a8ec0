package content

import (
	"path/filepath"
	"strings"

	"github.com/goliatone/go-slug"
)

// DeriveSlug returns the front-matter slug when set, otherwise a slug built
// from the file name without its extension.
func DeriveSlug(frontMatterSlug, filename string) string {
	if s := strings.TrimSpace(frontMatterSlug); s != "" {
		return s
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if s, err := slug.Normalize(base); err == nil && s != "" {
		return s
	}
	return base
}
