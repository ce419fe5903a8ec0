package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-folio/internal/content"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var fixtures = map[content.Kind]map[string]string{
	content.Posts: {
		"go-tips.md":   "---\ntitle: Go Tips\ndate: 2024-05-01\ntags: [go, tooling]\ncategory: Engineering\nfeatured: true\n---\nUse gofmt.\n",
		"old-notes.md": "---\ntitle: Old Notes\ndate: 2023-01-01\ntags: [notes]\n---\nArchive of things.\n",
		"draft.md":     "---\ntitle: Draft\ndate: 2024-06-01\npublished: false\n---\nNot yet.\n",
	},
	content.Projects: {
		"folio.md":  "---\ntitle: Folio\ndate: 2025-01-01\norder: 2\ntech: [go, redis]\n---\nPortfolio server.\n",
		"sketch.md": "---\ntitle: Sketch\ndate: 2024-01-01\norder: 1\nfeatured: true\n---\nDrawing tool in Go.\n",
	},
	content.Creatives: {
		"sunset.md": "---\ntitle: Sunset\ndate: 2024-02-02\nimage: sunset.jpg\n---\nOil on canvas.\n",
	},
}

// newTestLibrary writes the fixtures under a temp root and loads them.
func newTestLibrary(t *testing.T) *content.Library {
	t.Helper()
	root := t.TempDir()
	renderer := content.RendererFunc(func(_ context.Context, md string) (content.Rendered, error) {
		return content.Rendered{HTML: "<p>" + md + "</p>"}, nil
	})
	loader := content.NewLoader(renderer)

	var repos []*content.Repository
	for kind, files := range fixtures {
		dir := filepath.Join(root, string(kind))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatal(err)
		}
		for name, body := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
		}
		repo := content.NewRepository(kind, dir, loader)
		if _, err := repo.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh(%s): %v", kind, err)
		}
		repos = append(repos, repo)
	}
	return content.NewLibrary(repos...)
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithNow(func() time.Time { return fixedNow })}, opts...)
	return New(newTestLibrary(t), opts...)
}

func do(t *testing.T, s *Server, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func titles(docs []content.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}
