// Package fileutil provides file and path utility functions.
package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// MarkdownExt is the only extension the content loader picks up.
const MarkdownExt = ".md"

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "folio" -> false (name)
//   - "./folio.yaml" -> true (relative path)
//   - "/etc/folio/site.yaml" -> true (absolute)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsMarkdown reports whether name has the .md extension.
// Hidden files (".draft.md") are excluded so editor swap files never load.
func IsMarkdown(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, MarkdownExt) && !strings.HasPrefix(base, ".")
}
