package capability

import (
	"context"
	"fmt"
	"strings"
)

// FileAnalysisToolName is the registry key of the uploaded-document tool.
// The executor injects the run's file path into this tool's arguments.
const FileAnalysisToolName = "file_analysis"

// Field describes one named argument in a tool's input schema.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, int
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool is a named external capability with a declared argument schema.
// Invoke returns a textual result; failures inside the tool come back as an
// error that the caller folds into the run history rather than raising.
type Tool interface {
	Name() string
	Description() string
	InputSchema() []Field
	Invoke(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry is an ordered, name-keyed tool catalog. It is built once at
// startup and consulted read-only afterwards.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry builds a registry from the given tools, preserving order.
func NewRegistry(tools ...Tool) (*Registry, error) {
	reg := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, ok := reg.byName[name]; ok {
			return nil, fmt.Errorf("duplicate tool name: %s", name)
		}
		reg.byName[name] = t
		reg.order = append(reg.order, name)
	}
	return reg, nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.byName[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	if r == nil {
		return nil
	}
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Catalog renders the tool descriptors as prompt-ready text: one block per
// tool with its name, description, and argument schema.
func (r *Registry) Catalog() string {
	if r == nil || len(r.order) == 0 {
		return "No tools available."
	}
	var b strings.Builder
	for _, name := range r.order {
		t := r.byName[name]
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
		for _, f := range t.InputSchema() {
			req := "optional"
			if f.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "    %s (%s, %s): %s\n", f.Name, f.Type, req, f.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
