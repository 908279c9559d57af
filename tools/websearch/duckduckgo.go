package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// duckduckgo queries the keyless Instant Answer API. It returns abstracts and
// related topics rather than classic organic results, which is good enough
// for grounding a synthesis step without an API key.
type duckduckgo struct {
	baseURL string
	client  *http.Client
}

func (d *duckduckgo) search(ctx context.Context, query string, k int) ([]Result, error) {
	base := d.baseURL
	if base == "" {
		base = "https://api.duckduckgo.com"
	}
	u := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1", base, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo status %d", resp.StatusCode)
	}

	var raw struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []Result
	if raw.AbstractText != "" {
		out = append(out, Result{Title: raw.Heading, URL: raw.AbstractURL, Snippet: raw.AbstractText})
	}
	for _, t := range raw.RelatedTopics {
		if len(out) >= k {
			break
		}
		if t.Text == "" || t.FirstURL == "" {
			continue
		}
		out = append(out, Result{Title: t.Text, URL: t.FirstURL, Snippet: t.Text})
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
