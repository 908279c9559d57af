package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/errandlabs/errand/config"
)

func TestNewProviderSelection(t *testing.T) {
	if _, err := New(config.WebSearchConfig{}); err != nil {
		t.Fatalf("default provider must not need a key: %v", err)
	}
	if _, err := New(config.WebSearchConfig{Provider: "serper"}); err == nil {
		t.Fatal("serper without a key must fail at construction")
	}
	if _, err := New(config.WebSearchConfig{Provider: "brave"}); err == nil {
		t.Fatal("brave without a key must fail at construction")
	}
	if _, err := New(config.WebSearchConfig{Provider: "altavista"}); err == nil {
		t.Fatal("unknown provider must fail at construction")
	}
}

func TestInvokeRequiresQuery(t *testing.T) {
	tool, err := New(config.WebSearchConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tool.Invoke(context.Background(), map[string]interface{}{}); err == nil {
		t.Fatal("missing query must error")
	}
}

func TestSerperSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "k" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`{"organic": [
			{"title": "Go", "link": "https://go.dev", "snippet": "the Go language"},
			{"title": "Go docs", "link": "https://go.dev/doc", "snippet": "documentation"},
			{"title": "extra", "link": "https://example.com", "snippet": "dropped"}
		]}`))
	}))
	defer srv.Close()

	s := &serper{apiKey: "k", baseURL: srv.URL, client: srv.Client()}
	results, err := s.search(context.Background(), "golang", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 || results[0].URL != "https://go.dev" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestBraveSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "k" {
			t.Errorf("missing subscription token")
		}
		w.Write([]byte(`{"web": {"results": [
			{"title": "Go", "url": "https://go.dev", "description": "the Go language"}
		]}}`))
	}))
	defer srv.Close()

	b := &brave{apiKey: "k", baseURL: srv.URL, client: srv.Client()}
	results, err := b.search(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Snippet != "the Go language" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Heading": "Go (programming language)",
			"AbstractText": "Go is a statically typed language.",
			"AbstractURL": "https://en.wikipedia.org/wiki/Go",
			"RelatedTopics": [
				{"Text": "Golang toolchain", "FirstURL": "https://go.dev"},
				{"Text": "", "FirstURL": "https://skip.me"}
			]
		}`))
	}))
	defer srv.Close()

	d := &duckduckgo{baseURL: srv.URL, client: srv.Client()}
	results, err := d.search(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("want abstract + one topic, got %v", results)
	}
	if results[0].Snippet != "Go is a statically typed language." {
		t.Fatalf("abstract not first: %v", results[0])
	}
}

func TestInvokeFormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Heading": "Go", "AbstractText": "abstract", "AbstractURL": "https://go.dev", "RelatedTopics": []}`))
	}))
	defer srv.Close()

	tool := &Tool{
		cfg:      config.WebSearchConfig{MaxResults: 3, Timeout: time.Second},
		searcher: &duckduckgo{baseURL: srv.URL, client: srv.Client()},
	}
	out, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "golang"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(out, "1. Go") || !strings.Contains(out, "https://go.dev") {
		t.Fatalf("unexpected output: %q", out)
	}
}
