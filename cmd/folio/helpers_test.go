package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testEnv returns an Environment over vars with captured output.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
	}
	return env, &stdout, &stderr
}

// setupTestDir creates a temp directory with the given file structure.
// Files map paths to content. Returns the temp directory path.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return tempDir
}

func doc(frontMatter, body string) string {
	return "---\n" + frontMatter + "\n---\n" + body
}

// siteFiles is a content root with every kind.
var siteFiles = map[string]string{
	"posts/hello.md":      doc("title: Hello\ndate: \"2025-01-10\"\ntags: [go]", "## Intro\n\nFirst post."),
	"posts/draft.md":      doc("title: Draft\npublished: false", "Not yet."),
	"projects/folio.md":   doc("title: Folio\norder: 1\nfeatured: true", "A portfolio."),
	"creatives/sunset.md": doc("title: Sunset\nimage: sunset.jpg", "Oil on canvas."),
}
