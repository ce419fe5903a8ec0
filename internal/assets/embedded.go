package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed styles/*.css templates/*.html
var embedded embed.FS

// EmbeddedLoader loads the assets compiled into the binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: embedded}
}

// LoadStyle loads styles/{name}.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read("styles/"+name+".css", name, ErrStyleNotFound)
}

// LoadTemplate loads templates/{name}.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read("templates/"+name+".html", name, ErrTemplateNotFound)
}

func (e *EmbeddedLoader) read(path, name string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(e.fsys, path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(content), nil
}

// Names lists the embedded styles and templates, without extensions.
func (e *EmbeddedLoader) Names() (styles, templates []string) {
	styles = globStems(e.fsys, "styles/*.css", ".css")
	templates = globStems(e.fsys, "templates/*.html", ".html")
	return styles, templates
}

func globStems(fsys fs.FS, pattern, ext string) []string {
	matches, _ := fs.Glob(fsys, pattern)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(path.Base(m), ext))
	}
	return out
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
