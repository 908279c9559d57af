// Package arxiv searches arXiv preprints through its Atom query API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/capability"
)

const (
	defaultMaxResults = 5
	maxAbstractChars  = 600
)

// Tool implements capability.Tool for paper search.
type Tool struct {
	cfg     config.ArxivConfig
	baseURL string
	client  *http.Client
}

// New builds the arXiv search tool.
func New(cfg config.ArxivConfig) *Tool {
	return &Tool{
		cfg:     cfg,
		baseURL: "https://export.arxiv.org",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *Tool) Name() string { return "arxiv" }

func (t *Tool) Description() string {
	return "Searches arXiv for papers and returns titles, authors and abstracts."
}

func (t *Tool) InputSchema() []capability.Field {
	return []capability.Field{
		{Name: "query", Type: "string", Description: "paper search terms", Required: true},
		{Name: "max_results", Type: "int", Description: "how many papers to return"},
	}
}

// feed mirrors the subset of the Atom response we render.
type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []author `xml:"author"`
	Links     []link   `xml:"link"`
}

type author struct {
	Name string `xml:"name"`
}

type link struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	query := capability.StringArg(args, "query", "q")
	if query == "" {
		return "", fmt.Errorf("arxiv requires a query")
	}
	k := capability.IntArg(args, "max_results", t.cfg.MaxResults)
	if k <= 0 {
		k = defaultMaxResults
	}

	u := fmt.Sprintf("%s/api/query?search_query=all:%s&start=0&max_results=%d&sortBy=relevance",
		t.baseURL, url.QueryEscape(query), k)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("arxiv query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arxiv status %d", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return "", fmt.Errorf("decode feed: %w", err)
	}
	if len(f.Entries) == 0 {
		return fmt.Sprintf("No papers found for %q.", query), nil
	}

	var b strings.Builder
	for i, e := range f.Entries {
		if i >= k {
			break
		}
		title := collapseWhitespace(e.Title)
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)

		var names []string
		for _, a := range e.Authors {
			names = append(names, a.Name)
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, "   %s", strings.Join(names, ", "))
			if e.Published != "" {
				fmt.Fprintf(&b, " (%s)", e.Published[:min(10, len(e.Published))])
			}
			b.WriteString("\n")
		}
		if href := pageLink(e.Links); href != "" {
			fmt.Fprintf(&b, "   %s\n", href)
		}
		abstract := collapseWhitespace(e.Summary)
		if len(abstract) > maxAbstractChars {
			abstract = abstract[:maxAbstractChars] + "..."
		}
		if abstract != "" {
			fmt.Fprintf(&b, "   %s\n", abstract)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// pageLink prefers the abstract page over the PDF.
func pageLink(links []link) string {
	for _, l := range links {
		if l.Rel == "alternate" && l.Type == "text/html" {
			return l.Href
		}
	}
	for _, l := range links {
		if l.Href != "" {
			return l.Href
		}
	}
	return ""
}

// collapseWhitespace folds the hard-wrapped Atom text into single lines.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
