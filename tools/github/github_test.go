package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/errandlabs/errand/config"
)

func TestInvokeListsRepositories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "redis client" {
			t.Errorf("query = %q", got)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("auth header = %q", auth)
		}
		w.Write([]byte(`{"items": [
			{"full_name": "redis/go-redis", "html_url": "https://github.com/redis/go-redis",
			 "description": "Redis Go client", "stargazers_count": 20000, "language": "Go"}
		]}`))
	}))
	defer srv.Close()

	tool := New(config.GitHubConfig{Token: "tok", MaxResults: 5})
	tool.baseURL = srv.URL
	tool.client = srv.Client()

	out, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "redis client"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	for _, want := range []string{"redis/go-redis", "20000 stars", "Redis Go client"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestInvokeHandlesNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	tool := New(config.GitHubConfig{})
	tool.baseURL = srv.URL
	tool.client = srv.Client()

	out, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "xyzzy"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(out, "No repositories found") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInvokeSurfacesRateLimiting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	tool := New(config.GitHubConfig{})
	tool.baseURL = srv.URL
	tool.client = srv.Client()

	if _, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "x"}); err == nil {
		t.Fatal("403 must surface as an error")
	}
}

func TestInvokeRequiresQuery(t *testing.T) {
	tool := New(config.GitHubConfig{})
	if _, err := tool.Invoke(context.Background(), map[string]interface{}{}); err == nil {
		t.Fatal("missing query must error")
	}
}
