package core

import (
	"context"
	"time"
)

// PlanComplete is the sentinel plan value signaling that no further action
// is needed and the run should proceed straight to synthesis.
const PlanComplete = "PLAN_COMPLETE"

// RunState is the per-request mutable state threaded through every
// orchestration stage. It exists for the lifetime of one request only.
type RunState struct {
	// Input is the original user query. Immutable once set.
	Input string
	// FilePath optionally points at an uploaded artifact the file-analysis
	// tool can read. Immutable once set; empty when nothing was uploaded.
	FilePath string
	// Plan holds zero or one instruction for the next action, or the
	// PlanComplete sentinel. Overwritten each time the planner runs.
	Plan []string
	// PastSteps is the append-only record of completed executions and the
	// evidence base for the final synthesis.
	PastSteps []StepRecord
	// Response is the final synthesized answer, set exactly once by the
	// responder.
	Response string

	// tokensUsed and cost accumulate LLM usage across this run's stages.
	tokensUsed int64
	cost       float64
}

// AddUsage accumulates token usage and spend for this run.
func (s *RunState) AddUsage(tokens int64, cost float64) {
	s.tokensUsed += tokens
	s.cost += cost
}

// Usage returns the run's accumulated token count and cost estimate.
func (s *RunState) Usage() (int64, float64) {
	return s.tokensUsed, s.cost
}

// SetPlan replaces the current plan. Plans never merge.
func (s *RunState) SetPlan(steps []string) {
	s.Plan = steps
}

// AppendSteps concatenates records onto the history; existing records are
// never replaced.
func (s *RunState) AppendSteps(recs ...StepRecord) {
	s.PastSteps = append(s.PastSteps, recs...)
}

// StepRecord is one completed execution: which tool ran and what it said.
type StepRecord struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

// ToolCall is a parsed instruction to invoke a specific tool.
type ToolCall struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// Route is the router's binary decision.
type Route int

const (
	// RouteExecute sends control to the executor stage.
	RouteExecute Route = iota
	// RouteRespond sends control straight to the responder stage.
	RouteRespond
)

func (r Route) String() string {
	if r == RouteExecute {
		return "execute"
	}
	return "respond"
}

// Request is one inbound query at the orchestrator boundary.
type Request struct {
	ID       string `json:"id"`
	Query    string `json:"query"`
	FilePath string `json:"file_path,omitempty"`
}

// Result is the final outcome of processing one request.
type Result struct {
	ID             string        `json:"id"`
	Query          string        `json:"query"`
	Response       string        `json:"response"`
	Steps          []StepRecord  `json:"steps,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	TokensUsed     int64         `json:"tokens_used"`
	CostEstimate   float64       `json:"cost_estimate"`
	CreatedAt      time.Time     `json:"created_at"`
}

// LLMProvider is the contract for language model providers. The orchestrator
// depends only on text-in/text-out completion; all structural validation of
// model output happens in the consuming stage.
type LLMProvider interface {
	// Generate generates text using the LLM.
	Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error)

	// GenerateWithTokens generates text and returns token usage.
	GenerateWithTokens(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, int64, int64, error)

	// GetAvailableModels returns available models.
	GetAvailableModels() []string

	// GetModelInfo returns information about a specific model.
	GetModelInfo(model string) (ModelInfo, error)

	// CalculateCost calculates the cost for a given number of tokens.
	CalculateCost(inputTokens, outputTokens int64, model string) float64
}

// ModelInfo contains information about an LLM model.
type ModelInfo struct {
	Name            string   `json:"name"`
	Provider        string   `json:"provider"`
	MaxTokens       int      `json:"max_tokens"`
	CostPer1KInput  float64  `json:"cost_per_1k_input"`
	CostPer1KOutput float64  `json:"cost_per_1k_output"`
	Capabilities    []string `json:"capabilities"`
	Description     string   `json:"description"`
}
