// Package fileanalysis extracts text from an uploaded document and returns
// the passages most relevant to a query. Plain text is read directly, PDFs
// go through a text extractor, and passage ranking runs over an in-memory
// full-text index built per invocation.
package fileanalysis

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/ledongthuc/pdf"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/capability"
)

const (
	defaultChunkSize    = 1200
	defaultChunkOverlap = 200
	defaultMaxPassages  = 3
	maxFileBytes        = 32 << 20
)

// Tool implements capability.Tool for uploaded-document analysis.
type Tool struct {
	cfg config.FileAnalysisConfig
}

// New builds the file analysis tool.
func New(cfg config.FileAnalysisConfig) *Tool {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.MaxPassages <= 0 {
		cfg.MaxPassages = defaultMaxPassages
	}
	return &Tool{cfg: cfg}
}

func (t *Tool) Name() string { return capability.FileAnalysisToolName }

func (t *Tool) Description() string {
	return "Reads an uploaded text or PDF file and returns the passages most relevant to a query."
}

func (t *Tool) InputSchema() []capability.Field {
	return []capability.Field{
		{Name: "path", Type: "string", Description: "path of the uploaded file", Required: true},
		{Name: "query", Type: "string", Description: "what to look for in the document"},
	}
}

func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	path := capability.StringArg(args, "path", "file", "file_path")
	if path == "" {
		return "", fmt.Errorf("file_analysis requires a path")
	}
	query := capability.StringArg(args, "query", "q")

	text, err := extractText(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Sprintf("The file %s contains no extractable text.", filepath.Base(path)), nil
	}

	chunks := makeChunks(text, t.cfg.ChunkSize, t.cfg.ChunkOverlap)

	var passages []string
	if query == "" {
		// Without a question there is nothing to rank; show the opening.
		n := t.cfg.MaxPassages
		if n > len(chunks) {
			n = len(chunks)
		}
		passages = chunks[:n]
	} else {
		passages, err = rankChunks(ctx, chunks, query, t.cfg.MaxPassages)
		if err != nil {
			return "", fmt.Errorf("rank passages: %w", err)
		}
		if len(passages) == 0 {
			// No match beats no answer; fall back to the opening.
			n := t.cfg.MaxPassages
			if n > len(chunks) {
				n = len(chunks)
			}
			passages = chunks[:n]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Document %s (%d sections):\n", filepath.Base(path), len(chunks))
	for i, p := range passages {
		fmt.Fprintf(&b, "\n[passage %d]\n%s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// extractText pulls plain text out of the file based on its extension.
func extractText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > maxFileBytes {
		return "", fmt.Errorf("file too large (%d bytes)", info.Size())
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// makeChunks splits text into word-aligned windows of roughly size chars,
// with each window restarting overlap chars before the previous one ended.
func makeChunks(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		length := 0
		end := start
		for end < len(words) && length+len(words[end])+1 <= size {
			length += len(words[end]) + 1
			end++
		}
		if end == start {
			end++ // a single word longer than the window
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}
		next := end
		back := 0
		for next > start+1 && back < overlap {
			next--
			back += len(words[next]) + 1
		}
		start = next
	}
	return chunks
}

// rankChunks indexes the chunks in memory and returns the top matches for
// the query, in relevance order.
func rankChunks(ctx context.Context, chunks []string, query string, k int) ([]string, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	defer index.Close()

	for i, chunk := range chunks {
		if err := index.Index(strconv.Itoa(i), map[string]interface{}{"text": chunk}); err != nil {
			return nil, err
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), k, 0, false)
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(chunks) {
			continue
		}
		out = append(out, chunks[i])
	}
	return out, nil
}
