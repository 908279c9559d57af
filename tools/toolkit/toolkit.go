// Package toolkit assembles the tool registry the orchestrator runs against.
package toolkit

import (
	"fmt"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/capability"
	"github.com/errandlabs/errand/tools/arxiv"
	"github.com/errandlabs/errand/tools/fileanalysis"
	"github.com/errandlabs/errand/tools/github"
	"github.com/errandlabs/errand/tools/weather"
	"github.com/errandlabs/errand/tools/weblookup"
	"github.com/errandlabs/errand/tools/websearch"
	"github.com/errandlabs/errand/tools/wiki"
)

// Build constructs every tool from configuration and registers them. The
// registry is immutable afterwards; there is no runtime registration.
func Build(cfg *config.Config) (*capability.Registry, error) {
	search, err := websearch.New(cfg.Tools.WebSearch)
	if err != nil {
		return nil, fmt.Errorf("web_search: %w", err)
	}
	lookup, err := weblookup.New(cfg.Tools.WebLookup)
	if err != nil {
		return nil, fmt.Errorf("web_lookup: %w", err)
	}

	return capability.NewRegistry(
		search,
		lookup,
		weather.New(),
		github.New(cfg.Tools.GitHub),
		wiki.New(),
		arxiv.New(cfg.Tools.Arxiv),
		fileanalysis.New(cfg.Tools.FileAnalysis),
	)
}
