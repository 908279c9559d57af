// Package wiki fetches topic summaries from the Wikipedia REST API.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/errandlabs/errand/internal/capability"
)

// Tool implements capability.Tool for encyclopedia lookups.
type Tool struct {
	baseURL string
	client  *http.Client
}

// New builds the Wikipedia summary tool.
func New() *Tool {
	return &Tool{
		baseURL: "https://en.wikipedia.org/api/rest_v1",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Tool) Name() string { return "wikipedia" }

func (t *Tool) Description() string {
	return "Looks up a topic on Wikipedia and returns the article summary."
}

func (t *Tool) InputSchema() []capability.Field {
	return []capability.Field{
		{Name: "topic", Type: "string", Description: "article title or subject", Required: true},
	}
}

func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	topic := capability.StringArg(args, "topic", "title", "query")
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("wikipedia requires a topic")
	}

	// The REST API wants underscores where the title has spaces.
	title := strings.ReplaceAll(topic, " ", "_")
	u := fmt.Sprintf("%s/page/summary/%s", t.baseURL, url.PathEscape(title))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("no Wikipedia article for %q", topic)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia status %d", resp.StatusCode)
	}

	var raw struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Extract     string `json:"extract"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if raw.Extract == "" {
		return "", fmt.Errorf("article %q has no summary", topic)
	}

	var b strings.Builder
	b.WriteString(raw.Title)
	if raw.Description != "" {
		fmt.Fprintf(&b, " (%s)", raw.Description)
	}
	fmt.Fprintf(&b, "\n%s", raw.Extract)
	if raw.ContentURLs.Desktop.Page != "" {
		fmt.Fprintf(&b, "\nSource: %s", raw.ContentURLs.Desktop.Page)
	}
	return b.String(), nil
}
