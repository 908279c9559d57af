// Package weblookup fetches a single URL and extracts its readable article
// text. The plain renderer issues one HTTP GET; the chromedp renderer drives
// a headless browser for pages that only materialize under JavaScript.
package weblookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/capability"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultMaxChars = 20000
)

type renderer interface {
	render(ctx context.Context, pageURL string) (string, error)
}

// Tool implements capability.Tool for URL content extraction.
type Tool struct {
	cfg      config.WebLookupConfig
	renderer renderer
}

// New builds the lookup tool from configuration.
func New(cfg config.WebLookupConfig) (*Tool, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultMaxChars
	}

	var r renderer
	switch cfg.Renderer {
	case "", "plain":
		r = &plainRenderer{client: &http.Client{Timeout: cfg.Timeout}}
	case "chromedp":
		r = &browserRenderer{timeout: cfg.Timeout}
	default:
		return nil, fmt.Errorf("unsupported renderer: %s", cfg.Renderer)
	}
	return &Tool{cfg: cfg, renderer: r}, nil
}

func (t *Tool) Name() string { return "web_lookup" }

func (t *Tool) Description() string {
	return "Fetches a URL and returns the readable text content of the page."
}

func (t *Tool) InputSchema() []capability.Field {
	return []capability.Field{
		{Name: "url", Type: "string", Description: "the page to fetch", Required: true},
	}
}

func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	raw := capability.StringArg(args, "url", "link", "query")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("web_lookup requires a url")
	}
	pageURL, err := url.Parse(raw)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("invalid url: %q", raw)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	html, err := t.renderer.render(ctx, pageURL.String())
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", pageURL, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return fmt.Sprintf("The page at %s had no readable text content.", pageURL), nil
	}
	if len(text) > t.cfg.MaxChars {
		text = text[:t.cfg.MaxChars] + "..."
	}

	title := strings.TrimSpace(article.Title)
	if title != "" {
		return fmt.Sprintf("%s\n\n%s", title, text), nil
	}
	return text, nil
}

// plainRenderer fetches the page body with a single GET.
type plainRenderer struct {
	client *http.Client
}

func (p *plainRenderer) render(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "errand/1.0 (+https://github.com/errandlabs/errand)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
