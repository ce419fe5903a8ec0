package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alnah/go-folio/internal/logging"
)

func newFixtureRepo(t *testing.T, kind Kind, files map[string]string, opts ...RepositoryOption) *Repository {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	repo := NewRepository(kind, dir, newTestLoader(&logging.Recorder{}), opts...)
	if _, err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	return repo
}

var postFixtures = map[string]string{
	"go.md":     doc("title: Learning Go\ndate: \"2024-01-01\"\ntags: [Go, Backend]\ncategory: Code\nfeatured: true", "Goroutines and channels."),
	"art.md":    doc("title: Ink\ndate: \"2024-02-01\"\ntags: [drawing]\ncategory: Art", "Brush work."),
	"redis.md":  doc("title: Caching\ndate: \"2024-03-01\"\ntags: [redis]", "Using Redis as a cache."),
	"hidden.md": doc("title: Secret Go\ndate: \"2024-04-01\"\nhidden: true\nfeatured: true", "Go draft."),
}

// ---------------------------------------------------------------------------
// TestRepository - Queries
// ---------------------------------------------------------------------------

func TestRepository_Get(t *testing.T) {
	t.Parallel()

	repo := newFixtureRepo(t, Posts, postFixtures)

	d, err := repo.Get("go")
	if err != nil || d.Title != "Learning Go" {
		t.Fatalf("Get(go) = %q, %v", d.Title, err)
	}
	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Get("hidden"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(hidden) error = %v, want ErrNotFound for unpublished", err)
	}
}

func TestRepository_Queries(t *testing.T) {
	t.Parallel()

	repo := newFixtureRepo(t, Posts, postFixtures)

	tests := []struct {
		name string
		got  []Document
		want []string
	}{
		{"all newest first", repo.All(), []string{"redis", "art", "go"}},
		{"featured excludes hidden", repo.Featured(), []string{"go"}},
		{"tag ignores case", repo.ByTag("go"), []string{"go"}},
		{"tag exact only", repo.ByTag("draw"), []string{}},
		{"category ignores case", repo.ByCategory("art"), []string{"art"}},
		{"default category", repo.ByCategory("General"), []string{"redis"}},
		{"search title", repo.Search("caching"), []string{"redis"}},
		{"search body", repo.Search("CHANNELS"), []string{"go"}},
		{"search tag", repo.Search("draw"), []string{"art"}},
		{"search category", repo.Search("code"), []string{"go"}},
		{"search skips hidden", repo.Search("draft"), []string{}},
		{"empty search", repo.Search("  "), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := slugs(tt.got); !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepository_DocumentsIncludesUnpublished(t *testing.T) {
	t.Parallel()

	repo := newFixtureRepo(t, Posts, postFixtures)
	if n := len(repo.Documents()); n != 4 {
		t.Errorf("len(Documents()) = %d, want 4", n)
	}
	if n := len(repo.All()); n != 3 {
		t.Errorf("len(All()) = %d, want 3", n)
	}
}

func TestRepository_ResultsAreCopies(t *testing.T) {
	t.Parallel()

	repo := newFixtureRepo(t, Posts, postFixtures)
	all := repo.All()
	all[0].Title = "mutated"

	if repo.All()[0].Title == "mutated" {
		t.Error("caller mutation leaked into the repository")
	}
}

func TestRepository_ProjectOrder(t *testing.T) {
	t.Parallel()

	repo := newFixtureRepo(t, Projects, map[string]string{
		"a.md": doc("title: A\norder: 2\ndate: \"2024-03-01\"", "x"),
		"b.md": doc("title: B\norder: 1\ndate: \"2024-01-01\"", "x"),
		"c.md": doc("title: C\norder: 1\ndate: \"2024-02-01\"", "x"),
		"d.md": doc("title: D\ndate: \"2024-04-01\"", "x"),
	})

	if got := slugs(repo.All()); !equalStrings(got, []string{"d", "b", "c", "a"}) {
		t.Errorf("All() = %v, want ascending order with stable ties", got)
	}
	if got := slugs(repo.Newest()); !equalStrings(got, []string{"d", "a", "c", "b"}) {
		t.Errorf("Newest() = %v", got)
	}
}

// ---------------------------------------------------------------------------
// TestRepository_Refresh - Reload semantics
// ---------------------------------------------------------------------------

func TestRepository_RefreshPicksUpChanges(t *testing.T) {
	t.Parallel()

	var reloads []int
	var mu sync.Mutex
	hook := func(_ Kind, count int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			reloads = append(reloads, count)
		}
	}

	repo := newFixtureRepo(t, Posts, map[string]string{"a.md": doc("title: A", "x")}, WithReloadHook(hook))
	writeFiles(t, repo.Dir(), map[string]string{"b.md": doc("title: B", "y")})

	n, err := repo.Refresh(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Refresh() = %d, %v, want 2", n, err)
	}
	if _, err := repo.Get("b"); err != nil {
		t.Errorf("Get(b) after refresh: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reloads) != 2 || reloads[1] != 2 {
		t.Errorf("hook counts = %v, want [1 2]", reloads)
	}
}

func TestRepository_FailedRefreshKeepsSnapshot(t *testing.T) {
	t.Parallel()

	var failures atomic.Int32
	repo := newFixtureRepo(t, Posts, map[string]string{"a.md": doc("title: A", "x")},
		WithReloadHook(func(_ Kind, _ int, err error) {
			if err != nil {
				failures.Add(1)
			}
		}))

	if err := os.RemoveAll(repo.Dir()); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Refresh(context.Background()); !errors.Is(err, ErrContentDirNotFound) {
		t.Fatalf("Refresh() error = %v, want ErrContentDirNotFound", err)
	}
	if len(repo.All()) != 1 {
		t.Errorf("snapshot lost after failed refresh")
	}
	if failures.Load() != 1 {
		t.Errorf("hook failures = %d, want 1", failures.Load())
	}
}

func TestRepository_ReadersNeverSeeEmptyStore(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		files[name+".md"] = doc("title: "+name, "body")
	}
	repo := newFixtureRepo(t, Posts, files)

	var wg sync.WaitGroup
	var empty atomic.Int32
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if len(repo.All()) != 5 {
					empty.Add(1)
				}
			}
		}()
	}

	for range 20 {
		if _, err := repo.Refresh(context.Background()); err != nil {
			t.Errorf("Refresh() error: %v", err)
		}
	}
	close(stop)
	wg.Wait()

	if empty.Load() != 0 {
		t.Errorf("readers observed %d partial snapshots", empty.Load())
	}
}

// ---------------------------------------------------------------------------
// TestLibrary - Cross-kind operations
// ---------------------------------------------------------------------------

func TestLibrary(t *testing.T) {
	t.Parallel()

	posts := newFixtureRepo(t, Posts, map[string]string{"p.md": doc("title: Redis notes", "x")})
	projects := newFixtureRepo(t, Projects, map[string]string{"q.md": doc("title: Cache", "uses redis")})
	creatives := newFixtureRepo(t, Creatives, map[string]string{"r.md": doc("title: Sketch", "ink")})
	lib := NewLibrary(posts, projects, creatives)

	hits := lib.Search("redis")
	if len(hits) != 2 || hits[0].Type != "post" || hits[1].Type != "project" {
		t.Errorf("Search() = %+v", hits)
	}

	counts, err := lib.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll() error: %v", err)
	}
	if counts[Posts] != 1 || counts[Projects] != 1 || counts[Creatives] != 1 {
		t.Errorf("counts = %v", counts)
	}

	if _, err := NewLibrary(posts).Repository(Creatives); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Repository(creatives) error = %v", err)
	}
}

func TestLibrary_RefreshAllJoinsErrors(t *testing.T) {
	t.Parallel()

	ok := newFixtureRepo(t, Posts, map[string]string{"p.md": doc("title: P", "x")})
	broken := NewRepository(Projects, filepath.Join(t.TempDir(), "missing"), newTestLoader(&logging.Recorder{}))

	counts, err := NewLibrary(ok, broken).RefreshAll(context.Background())
	if !errors.Is(err, ErrContentDirNotFound) {
		t.Errorf("RefreshAll() error = %v", err)
	}
	if counts[Posts] != 1 {
		t.Errorf("counts = %v, want posts still refreshed", counts)
	}
}
