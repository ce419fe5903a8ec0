package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alnah/go-folio/internal/content"
)

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

func TestMetrics_Requests(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	s := newTestServer(t, WithMetrics(m))

	do(t, s, http.MethodGet, "/api/posts/go-tips", nil)
	do(t, s, http.MethodGet, "/api/posts/missing", nil)
	do(t, s, http.MethodGet, "/api/posts/other-missing", nil)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/posts/:slug", "200")); got != 1 {
		t.Errorf("200 count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/posts/:slug", "404")); got != 2 {
		t.Errorf("404 count = %v, want 2", got)
	}

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	expectStatus(t, rec, http.StatusOK)
	for _, want := range []string{"folio_http_requests_total", "go_goroutines"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestMetrics_ObserveReload(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveReload(content.Posts, 7, nil)
	m.ObserveReload(content.Posts, 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.documents.WithLabelValues("posts")); got != 7 {
		t.Errorf("documents = %v, want 7 (errors keep the last count)", got)
	}
	if got := testutil.ToFloat64(m.reloads.WithLabelValues("posts", "error")); got != 1 {
		t.Errorf("error reloads = %v, want 1", got)
	}
}

func TestMetrics_Submissions(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	s := newTestServer(t, WithMetrics(m))
	do(t, s, http.MethodPost, "/api/contact", contact("Ada", "ada@example.com", "Hello there, nice site!"))
	do(t, s, http.MethodPost, "/api/contact", contact("Bob", "bob@example.com", "Buy now, click here!"))

	if got := testutil.ToFloat64(m.submissions.WithLabelValues(TypeContact, "accepted")); got != 1 {
		t.Errorf("accepted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues(TypeContact, "spam")); got != 1 {
		t.Errorf("spam = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveReload(content.Posts, 1, nil)
	m.ObserveSubmission(TypeContact, "accepted")
}
