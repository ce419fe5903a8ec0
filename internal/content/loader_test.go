package content

// Notes:
// - Fixtures are written to t.TempDir() per test; the stub renderer keeps
//   assertions independent of goldmark output.
// - Malformed fixtures use an unterminated quoted scalar, which every YAML
//   parser rejects.

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-folio/internal/logging"
)

const malformed = "---\ntitle: \"unterminated\n---\nbody\n"

// ---------------------------------------------------------------------------
// TestLoadAll - Batch loading
// ---------------------------------------------------------------------------

func TestLoadAll_SkipsMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"alpha.md":  doc("title: Alpha\ndate: \"2024-01-01\"", "First"),
		"beta.md":   doc("title: Beta\ndate: \"2024-02-01\"", "Second"),
		"gamma.md":  doc("title: Gamma\ndate: \"2024-03-01\"", "Third"),
		"broken.md": malformed,
	})

	rec := &logging.Recorder{}
	res, err := newTestLoader(rec).LoadAll(context.Background(), Posts, dir)
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if len(res.Documents) != 3 {
		t.Fatalf("len(Documents) = %d, want 3", len(res.Documents))
	}
	if len(res.Skipped) != 1 || filepath.Base(res.Skipped[0].File) != "broken.md" {
		t.Errorf("Skipped = %+v, want broken.md", res.Skipped)
	}
	if !errors.Is(res.Skipped[0].Err, ErrInvalidFrontMatter) {
		t.Errorf("Skipped error = %v, want ErrInvalidFrontMatter", res.Skipped[0].Err)
	}
	if got := rec.Count("warn", "skipping malformed document"); got != 1 {
		t.Errorf("malformed warnings = %d, want 1", got)
	}
	if want := []string{"gamma", "beta", "alpha"}; !equalStrings(slugs(res.Documents), want) {
		t.Errorf("order = %v, want newest first %v", slugs(res.Documents), want)
	}
}

func TestLoadAll_SkipsBadDateAndRenderFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"ok.md":       doc("title: OK", "fine"),
		"bad-date.md": doc("title: Bad\ndate: \"someday\"", "x"),
		"render.md":   doc("title: Render", "RENDER_FAIL"),
	})

	res, err := newTestLoader(&logging.Recorder{}).LoadAll(context.Background(), Posts, dir)
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0].Slug != "ok" {
		t.Fatalf("Documents = %v, want [ok]", slugs(res.Documents))
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("len(Skipped) = %d, want 2", len(res.Skipped))
	}
	for _, s := range res.Skipped {
		if filepath.Base(s.File) == "bad-date.md" && !errors.Is(s.Err, ErrInvalidDate) {
			t.Errorf("bad-date error = %v, want ErrInvalidDate", s.Err)
		}
	}
}

func TestLoadAll_IgnoresNonMarkdownAndSubdirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"post.md":        doc("title: Post", "x"),
		"notes.txt":      "ignored",
		".draft.md":      doc("title: Draft", "x"),
		"nested/deep.md": doc("title: Deep", "x"),
	})

	res, err := newTestLoader(&logging.Recorder{}).LoadAll(context.Background(), Posts, dir)
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if got := slugs(res.Documents); !equalStrings(got, []string{"post"}) {
		t.Errorf("slugs = %v, want [post]", got)
	}
}

func TestLoadAll_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := newTestLoader(&logging.Recorder{}).LoadAll(context.Background(), Posts, filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrContentDirNotFound) {
		t.Errorf("LoadAll() error = %v, want ErrContentDirNotFound", err)
	}
}

func TestLoadAll_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.md": doc("title: A", "x")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestLoader(&logging.Recorder{}).LoadAll(ctx, Posts, dir)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("LoadAll() error = %v, want context.Canceled", err)
	}
}

func TestLoadAll_DuplicateSlugFirstWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.md": doc("title: First\nslug: same", "x"),
		"b.md": doc("title: Second\nslug: same", "y"),
	})

	rec := &logging.Recorder{}
	res, err := newTestLoader(rec).LoadAll(context.Background(), Posts, dir)
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0].Title != "First" {
		t.Fatalf("Documents = %+v, want only First", res.Documents)
	}
	if len(res.Duplicates) != 1 || filepath.Base(res.Duplicates[0]) != "b.md" {
		t.Errorf("Duplicates = %v, want [b.md]", res.Duplicates)
	}
	if rec.Count("warn", "skipping duplicate slug") != 1 {
		t.Error("duplicate slug not logged")
	}
}

func TestLoadAll_DuplicateSlugPublishedBeatsHidden(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.md": doc("title: Draft\nslug: same\nhidden: true", "x"),
		"b.md": doc("title: Live\nslug: same", "y"),
		"c.md": doc("title: Later draft\nslug: same\nhidden: true", "z"),
	})

	rec := &logging.Recorder{}
	res, err := newTestLoader(rec).LoadAll(context.Background(), Posts, dir)
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0].Title != "Live" || !res.Documents[0].Published {
		t.Fatalf("Documents = %+v, want only Live", res.Documents)
	}
	if res.Documents[0].ID != 1 {
		t.Errorf("ID = %d, want 1", res.Documents[0].ID)
	}
	if len(res.Duplicates) != 2 ||
		filepath.Base(res.Duplicates[0]) != "a.md" || filepath.Base(res.Duplicates[1]) != "c.md" {
		t.Errorf("Duplicates = %v, want [a.md c.md]", res.Duplicates)
	}
	if rec.Count("warn", "published document replaces hidden duplicate") != 1 {
		t.Error("replacement not logged")
	}
}

// ---------------------------------------------------------------------------
// TestLoadAll fields - Per-kind defaults
// ---------------------------------------------------------------------------

func loadOne(t *testing.T, kind Kind, content string) Document {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"My Entry.md": content})
	res, err := newTestLoader(&logging.Recorder{}).LoadAll(context.Background(), kind, dir)
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(res.Documents) != 1 {
		t.Fatalf("len(Documents) = %d, want 1 (skipped: %+v)", len(res.Documents), res.Skipped)
	}
	return res.Documents[0]
}

func TestLoadAll_PostFields(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("word ", 60)
	d := loadOne(t, Posts, doc("title: Hello\ndate: \"2024-05-06\"\ntags: [go, web]\nfeatured: true\ncover: /img//a.png", body))

	if d.ID != 1 || d.Kind != Posts || d.Title != "Hello" {
		t.Errorf("identity = %d %s %q", d.ID, d.Kind, d.Title)
	}
	if d.Category != "General" {
		t.Errorf("Category = %q, want General", d.Category)
	}
	if !d.Featured || !d.Published {
		t.Errorf("Featured=%v Published=%v, want both true", d.Featured, d.Published)
	}
	want := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	if !d.PublishedAt.Equal(want) || !d.CreatedAt.Equal(want) || !d.UpdatedAt.Equal(want) {
		t.Errorf("dates = %v %v %v, want %v", d.PublishedAt, d.CreatedAt, d.UpdatedAt, want)
	}
	if d.DisplayDate != "May 6, 2024" {
		t.Errorf("DisplayDate = %q", d.DisplayDate)
	}
	if !strings.HasSuffix(d.Excerpt, "...") || len([]rune(d.Excerpt)) > ExcerptLength+3 {
		t.Errorf("Excerpt = %q, want truncated body", d.Excerpt)
	}
	if d.Cover != "/img/a.png" {
		t.Errorf("Cover = %q", d.Cover)
	}
	if !equalStrings(d.Tags, []string{"go", "web"}) {
		t.Errorf("Tags = %v", d.Tags)
	}
	if d.Content != "<p>"+strings.TrimSpace(body)+"</p>" {
		t.Errorf("Content not rendered through the renderer")
	}
}

func TestLoadAll_ShortBodyExcerptNotTruncated(t *testing.T) {
	t.Parallel()

	d := loadOne(t, Posts, doc("title: Short", "Just a line."))
	if d.Excerpt != "Just a line." {
		t.Errorf("Excerpt = %q", d.Excerpt)
	}

	d = loadOne(t, Posts, doc("title: Given\nexcerpt: Custom", "Body"))
	if d.Excerpt != "Custom" {
		t.Errorf("Excerpt = %q, want front matter value", d.Excerpt)
	}
}

func TestLoadAll_ProjectFields(t *testing.T) {
	t.Parallel()

	d := loadOne(t, Projects, doc("title: Tool\ndescription: A tool\ntech_stack: [Go, Redis]\nimage: shots/tool.png\norder: 3\ngithub: https://github.com/x/y", "x"))

	if d.Status != "completed" {
		t.Errorf("Status = %q, want completed", d.Status)
	}
	if !equalStrings(d.Tech, []string{"Go", "Redis"}) {
		t.Errorf("Tech = %v, want tech_stack fallback", d.Tech)
	}
	if d.Cover != "/shots/tool.png" {
		t.Errorf("Cover = %q, want image fallback", d.Cover)
	}
	if d.Order != 3 || d.Description != "A tool" || d.GitHub != "https://github.com/x/y" {
		t.Errorf("fields = %d %q %q", d.Order, d.Description, d.GitHub)
	}
	if d.Category != "General" {
		t.Errorf("Category = %q", d.Category)
	}
}

func TestLoadAll_CreativeFields(t *testing.T) {
	t.Parallel()

	d := loadOne(t, Creatives, doc("title: Sketch\nexcerpt: Ink study\ncover: sketch.jpg", "x"))

	if d.Category != "Art" {
		t.Errorf("Category = %q, want Art", d.Category)
	}
	if d.Description != "Ink study" {
		t.Errorf("Description = %q, want excerpt fallback", d.Description)
	}
	if d.Image != "/creatives/sketch.jpg" {
		t.Errorf("Image = %q", d.Image)
	}
}

func TestLoadAll_SlugFromFilename(t *testing.T) {
	t.Parallel()

	d := loadOne(t, Posts, doc("title: X", "x"))
	if d.Slug == "" || strings.ContainsAny(d.Slug, " .") {
		t.Errorf("Slug = %q, want a normalized file name", d.Slug)
	}
}

func TestLoadAll_NoFrontMatter(t *testing.T) {
	t.Parallel()

	d := loadOne(t, Posts, "Just text, no header.\n")
	if d.Title != "" || !d.Published || !d.PublishedAt.IsZero() {
		t.Errorf("doc = %+v", d)
	}
}

func TestLoadAll_Unpublished(t *testing.T) {
	t.Parallel()

	for _, fm := range []string{"title: H\nhidden: true", "title: P\npublished: false"} {
		d := loadOne(t, Posts, doc(fm, "x"))
		if d.Published {
			t.Errorf("%q: Published = true", fm)
		}
	}
}
