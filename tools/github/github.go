// Package github searches GitHub repositories through the public search API.
// A token raises the rate limit but is not required.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/capability"
)

const defaultMaxResults = 5

// Tool implements capability.Tool for repository search.
type Tool struct {
	cfg     config.GitHubConfig
	baseURL string
	client  *http.Client
}

// New builds the GitHub search tool.
func New(cfg config.GitHubConfig) *Tool {
	return &Tool{
		cfg:     cfg,
		baseURL: "https://api.github.com",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Tool) Name() string { return "github_search" }

func (t *Tool) Description() string {
	return "Searches GitHub repositories and returns names, descriptions and star counts."
}

func (t *Tool) InputSchema() []capability.Field {
	return []capability.Field{
		{Name: "query", Type: "string", Description: "repository search terms", Required: true},
		{Name: "max_results", Type: "int", Description: "how many repositories to return"},
	}
}

func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	query := capability.StringArg(args, "query", "q")
	if query == "" {
		return "", fmt.Errorf("github_search requires a query")
	}
	k := capability.IntArg(args, "max_results", t.cfg.MaxResults)
	if k <= 0 {
		k = defaultMaxResults
	}

	u := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		t.baseURL, url.QueryEscape(query), k)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if t.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.cfg.Token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("github search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github status %d", resp.StatusCode)
	}

	var raw struct {
		Items []struct {
			FullName    string `json:"full_name"`
			HTMLURL     string `json:"html_url"`
			Description string `json:"description"`
			Stars       int    `json:"stargazers_count"`
			Language    string `json:"language"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if len(raw.Items) == 0 {
		return fmt.Sprintf("No repositories found for %q.", query), nil
	}

	var b strings.Builder
	for i, item := range raw.Items {
		if i >= k {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%d stars", i+1, item.FullName, item.Stars)
		if item.Language != "" {
			fmt.Fprintf(&b, ", %s", item.Language)
		}
		fmt.Fprintf(&b, ")\n   %s\n", item.HTMLURL)
		if item.Description != "" {
			fmt.Fprintf(&b, "   %s\n", item.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
