package pipeline

import (
	"html"
	"strings"
)

// documentTemplate wraps a rendered fragment in a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{title}}</title>
{{style}}</head>
<body>
<article>
{{body}}
</article>
</body>
</html>`

// WrapDocument returns a standalone page around body. The title is
// escaped; css goes into a <style> block with </ sequences neutralized.
func WrapDocument(title, body, css string) string {
	style := ""
	if css != "" {
		style = "<style>" + sanitizeCSS(css) + "</style>\n"
	}
	return strings.NewReplacer(
		"{{title}}", html.EscapeString(title),
		"{{style}}", style,
		"{{body}}", body,
	).Replace(documentTemplate)
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
