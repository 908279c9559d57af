package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/agent/telemetry"
	"github.com/errandlabs/errand/internal/capability"
	"github.com/errandlabs/errand/internal/helpers"
)

// Planner asks the model for the single next step of a run.
type Planner struct {
	config    *config.Config
	llm       LLMProvider
	registry  *capability.Registry
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewPlanner creates a new planner instance.
func NewPlanner(cfg *config.Config, llm LLMProvider, registry *capability.Registry, tele *telemetry.Telemetry) *Planner {
	return &Planner{
		config:    cfg,
		llm:       llm,
		registry:  registry,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[PLANNER] ", log.LstdFlags),
	}
}

// Plan produces the next plan for the run: a single actionable instruction,
// or the completion sentinel when no action is needed. Malformed model
// output is never an error here: the planner substitutes the sentinel so
// the run terminates gracefully instead of looping on garbage. Only an
// unreachable model surfaces as an error.
func (p *Planner) Plan(ctx context.Context, state *RunState) ([]string, error) {
	started := time.Now()
	model := p.config.LLM.Routing.ModelFor("planning")

	prompt := p.buildPrompt(state)
	response, inTok, outTok, err := p.llm.GenerateWithTokens(ctx, prompt, model, map[string]interface{}{
		"temperature": 0.3, // lower temperature for more consistent planning
		"max_tokens":  600,
	})
	if err != nil {
		return nil, fmt.Errorf("planning call failed: %w", err)
	}
	cost := p.llm.CalculateCost(inTok, outTok, model)
	p.telemetry.RecordLLM(model, "planning", inTok, outTok, cost)
	state.AddUsage(inTok+outTok, cost)

	steps, ok := decodePlan(response)
	if !ok {
		p.logger.Printf("unparseable plan, substituting completion sentinel: %.120q", response)
		steps = []string{PlanComplete}
	}
	// The workflow executes one step per run; anything past the first is noise.
	if len(steps) > 1 {
		p.logger.Printf("model proposed %d steps, keeping the first", len(steps))
		steps = steps[:1]
	}

	p.telemetry.RecordStage("planner", time.Since(started))
	p.logger.Printf("planning completed in %v with %d step(s)", time.Since(started), len(steps))
	return steps, nil
}

func (p *Planner) buildPrompt(state *RunState) string {
	fileNote := ""
	if state.FilePath != "" {
		fileNote = "\nThe user attached a file; the file_analysis tool can read it."
	}
	return fmt.Sprintf(`You are a planning agent. Decide the single next action needed to answer the user's request, using exactly one of the available tools.%s

USER REQUEST: %s

AVAILABLE TOOLS:
%s

RULES:
1. Propose at most ONE step.
2. The step must be a short actionable instruction naming which tool to use and with what.
3. If the request needs no tool at all, return an empty step list.
4. If nothing further is needed, use the literal step %q.

OUTPUT FORMAT (JSON, no other text):
{"steps": ["<one instruction>"]}
or
{"steps": []}`, fileNote, state.Input, p.registry.Catalog(), PlanComplete)
}

// decodePlan extracts the step list from free-form model text. The second
// return value is false when no structurally valid plan could be recovered;
// callers must handle that branch explicitly.
func decodePlan(text string) ([]string, bool) {
	raw, err := helpers.ExtractJSON(text)
	if err != nil {
		return nil, false
	}
	var payload struct {
		Steps []string `json:"steps"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}
	if payload.Steps == nil {
		payload.Steps = []string{}
	}
	return payload.Steps, true
}
