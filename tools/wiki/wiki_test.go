package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInvokeReturnsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/page/summary/Alan_Turing") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"title": "Alan Turing",
			"description": "English computer scientist (1912-1954)",
			"extract": "Alan Mathison Turing was an English mathematician and computer scientist.",
			"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Alan_Turing"}}
		}`))
	}))
	defer srv.Close()

	tool := New()
	tool.baseURL = srv.URL
	tool.client = srv.Client()

	out, err := tool.Invoke(context.Background(), map[string]interface{}{"topic": "Alan Turing"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	for _, want := range []string{"Alan Turing", "English mathematician", "https://en.wikipedia.org/wiki/Alan_Turing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestInvokeErrorsOnMissingArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tool := New()
	tool.baseURL = srv.URL
	tool.client = srv.Client()

	_, err := tool.Invoke(context.Background(), map[string]interface{}{"topic": "Xyzzyplugh"})
	if err == nil || !strings.Contains(err.Error(), "no Wikipedia article") {
		t.Fatalf("want a missing-article error, got %v", err)
	}
}

func TestInvokeRequiresTopic(t *testing.T) {
	tool := New()
	if _, err := tool.Invoke(context.Background(), map[string]interface{}{}); err == nil {
		t.Fatal("missing topic must error")
	}
}
