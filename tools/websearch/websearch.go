// Package websearch exposes web search as an orchestration tool. The backing
// provider is chosen at construction time; DuckDuckGo needs no API key and is
// the default.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/capability"
)

const defaultMaxResults = 5

// Result is one search hit, provider-independent.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type searcher interface {
	search(ctx context.Context, query string, k int) ([]Result, error)
}

// Tool implements capability.Tool over a configured search provider.
type Tool struct {
	cfg      config.WebSearchConfig
	searcher searcher
}

// New builds the web search tool from configuration. Keyed providers fail
// fast when their key is missing rather than erroring on first use.
func New(cfg config.WebSearchConfig) (*Tool, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		client.Timeout = 10 * time.Second
	}

	var s searcher
	switch cfg.Provider {
	case "", "duckduckgo":
		s = &duckduckgo{client: client}
	case "serper":
		if cfg.SerperAPIKey == "" {
			return nil, fmt.Errorf("serper provider requires an API key")
		}
		s = &serper{apiKey: cfg.SerperAPIKey, client: client}
	case "brave":
		if cfg.BraveAPIKey == "" {
			return nil, fmt.Errorf("brave provider requires an API key")
		}
		s = &brave{apiKey: cfg.BraveAPIKey, client: client}
	default:
		return nil, fmt.Errorf("unsupported web search provider: %s", cfg.Provider)
	}
	return &Tool{cfg: cfg, searcher: s}, nil
}

func (t *Tool) Name() string { return "web_search" }

func (t *Tool) Description() string {
	return "Searches the web and returns titles, URLs and snippets for the top results."
}

func (t *Tool) InputSchema() []capability.Field {
	return []capability.Field{
		{Name: "query", Type: "string", Description: "search terms", Required: true},
		{Name: "max_results", Type: "int", Description: "how many results to return"},
	}
}

func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	query := capability.StringArg(args, "query", "q")
	if query == "" {
		return "", fmt.Errorf("web_search requires a query")
	}
	k := capability.IntArg(args, "max_results", t.cfg.MaxResults)
	if k <= 0 {
		k = defaultMaxResults
	}

	results, err := t.searcher.search(ctx, query, k)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q.", query), nil
	}
	return formatResults(results), nil
}

func formatResults(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
