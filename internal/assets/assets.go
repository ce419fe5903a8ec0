package assets

import (
	"bytes"
	"fmt"
	"html/template"
)

// Built-in asset names.
const (
	ContentStyle  = "content"
	CitationStyle = "citation"

	ContactEmailTemplate = "contact-email"
	CommentEmailTemplate = "comment-email"
)

// defaultLoader serves the embedded assets.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in stylesheet by name (without .css).
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a built-in HTML template by name (without .html).
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// RenderTemplate loads name from loader, parses it with html/template and
// executes it with data. Values in data are escaped for HTML.
func RenderTemplate(loader AssetLoader, name string, data any) (string, error) {
	src, err := loader.LoadTemplate(name)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrTemplateParse, name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrTemplateParse, name, err)
	}
	return buf.String(), nil
}
