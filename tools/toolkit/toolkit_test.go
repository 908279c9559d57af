package toolkit

import (
	"strings"
	"testing"

	"github.com/errandlabs/errand/config"
)

func TestBuildRegistersAllTools(t *testing.T) {
	reg, err := Build(&config.Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"web_search", "web_lookup", "weather", "github_search", "wikipedia", "arxiv", "file_analysis"}
	names := reg.Names()
	if len(names) != len(want) {
		t.Fatalf("registered %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("registered %v, want %v", names, want)
		}
	}

	catalog := reg.Catalog()
	for _, name := range want {
		if !strings.Contains(catalog, name) {
			t.Fatalf("catalog missing %s:\n%s", name, catalog)
		}
	}
}

func TestBuildRejectsBadToolConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Tools.WebSearch.Provider = "altavista"
	if _, err := Build(cfg); err == nil {
		t.Fatal("bad provider must fail the build")
	}
}
