package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

const newsAPIBody = `{"articles":[
	{"title":"Acme ships new release","description":"details","url":"https://example.com/1","publishedAt":"2026-03-10T08:00:00Z","source":{"name":"Example Wire"}},
	{"title":"[Removed]","description":"","url":"","publishedAt":"","source":{"name":""}},
	{"title":"Acme outage resolved","description":"","url":"https://example.com/2","publishedAt":"2026-03-10T09:00:00Z","source":{"name":""}}
]}`

func TestNewsFetchPrimary(t *testing.T) {
	primary := newsServer(t, http.StatusOK, newsAPIBody)
	defer primary.Close()

	n := NewNews("key", "", testDeps(&stubClassifier{}))
	n.endpoint = primary.URL

	mentions, err := n.Fetch(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions ([Removed] skipped), got %d", len(mentions))
	}
	if mentions[0].Source != "Example Wire" {
		t.Errorf("expected source from payload, got %q", mentions[0].Source)
	}
	if mentions[1].Source != "Unknown Source" {
		t.Errorf("expected source fallback, got %q", mentions[1].Source)
	}
	if mentions[0].Timestamp != "2026-03-10T08:00:00Z" {
		t.Errorf("unexpected timestamp %q", mentions[0].Timestamp)
	}
}

func TestNewsFailoverOnPrimaryError(t *testing.T) {
	primary := newsServer(t, http.StatusInternalServerError, "")
	defer primary.Close()
	fallback := newsServer(t, http.StatusOK, `{"articles":[
		{"title":"Acme raise","description":"","url":"u1","publishedAt":"2026-03-10T08:00:00Z","source":{"name":"Gazette"}},
		{"title":"Acme hire","description":"","url":"u2","publishedAt":"2026-03-10T08:05:00Z","source":{"name":""}},
		{"title":"Acme launch","description":"","url":"u3","publishedAt":"2026-03-10T08:10:00Z","source":{"name":"Post"}}
	]}`)
	defer fallback.Close()

	n := NewNews("key", "gnews-key", testDeps(&stubClassifier{}))
	n.endpoint = primary.URL
	n.gnewsEndpoint = fallback.URL

	mentions, err := n.Fetch(context.Background(), "acme")
	if err != nil {
		t.Fatalf("expected failover to succeed, got %v", err)
	}
	if len(mentions) != 3 {
		t.Fatalf("expected exactly the 3 failover mentions, got %d", len(mentions))
	}
	if mentions[1].Source != "GNews" {
		t.Errorf("expected GNews source fallback, got %q", mentions[1].Source)
	}
}

func TestNewsFailoverOnEmptyPrimary(t *testing.T) {
	primary := newsServer(t, http.StatusOK, `{"articles":[]}`)
	defer primary.Close()
	fallback := newsServer(t, http.StatusOK, `{"articles":[
		{"title":"Acme story","description":"","url":"u","publishedAt":"2026-03-10T08:00:00Z","source":{"name":"Gazette"}}
	]}`)
	defer fallback.Close()

	n := NewNews("key", "gnews-key", testDeps(&stubClassifier{}))
	n.endpoint = primary.URL
	n.gnewsEndpoint = fallback.URL

	mentions, err := n.Fetch(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mentions) != 1 {
		t.Fatalf("expected 1 failover mention, got %d", len(mentions))
	}
}

func TestNewsNoFailoverWithoutKey(t *testing.T) {
	primary := newsServer(t, http.StatusUnauthorized, "")
	defer primary.Close()

	n := NewNews("key", "", testDeps(&stubClassifier{}))
	n.endpoint = primary.URL

	if _, err := n.Fetch(context.Background(), "acme"); err == nil {
		t.Error("expected primary error to surface when no failover key is set")
	}
}

func TestNewsBothProvidersFail(t *testing.T) {
	primary := newsServer(t, http.StatusInternalServerError, "")
	defer primary.Close()
	fallback := newsServer(t, http.StatusForbidden, "")
	defer fallback.Close()

	n := NewNews("key", "gnews-key", testDeps(&stubClassifier{}))
	n.endpoint = primary.URL
	n.gnewsEndpoint = fallback.URL

	if _, err := n.Fetch(context.Background(), "acme"); err == nil {
		t.Error("expected error when both providers fail")
	}
}

func TestNewsClassifierFailureDropsBatch(t *testing.T) {
	primary := newsServer(t, http.StatusOK, newsAPIBody)
	defer primary.Close()

	cls := &stubClassifier{err: context.DeadlineExceeded}
	n := NewNews("key", "", testDeps(cls))
	n.endpoint = primary.URL

	if _, err := n.Fetch(context.Background(), "acme"); err == nil {
		t.Error("expected classifier failure to fail the fetch")
	}
}
