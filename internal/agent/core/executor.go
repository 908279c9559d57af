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

// Executor turns the planned instruction into one concrete tool invocation
// and folds the outcome into the run history.
type Executor struct {
	config    *config.Config
	llm       LLMProvider
	registry  *capability.Registry
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewExecutor creates a new executor instance.
func NewExecutor(cfg *config.Config, llm LLMProvider, registry *capability.Registry, tele *telemetry.Telemetry) *Executor {
	return &Executor{
		config:    cfg,
		llm:       llm,
		registry:  registry,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[EXECUTOR] ", log.LstdFlags),
	}
}

// Execute performs the planned step and returns exactly one StepRecord.
// Model output is treated as untrusted: a malformed tool call, an unknown
// tool, or missing arguments all degrade to deterministic records instead of
// errors, so the run always reaches the responder. Only an unreachable model
// surfaces as an error.
func (e *Executor) Execute(ctx context.Context, state *RunState) (StepRecord, error) {
	started := time.Now()
	instruction := state.Plan[len(state.Plan)-1]
	model := e.config.LLM.Routing.ModelFor("execution")

	prompt := e.buildPrompt(state.Input, instruction)
	response, inTok, outTok, err := e.llm.GenerateWithTokens(ctx, prompt, model, map[string]interface{}{
		"temperature": 0.2,
		"max_tokens":  600,
	})
	if err != nil {
		return StepRecord{}, fmt.Errorf("tool-call synthesis failed: %w", err)
	}
	cost := e.llm.CalculateCost(inTok, outTok, model)
	e.telemetry.RecordLLM(model, "execution", inTok, outTok, cost)
	state.AddUsage(inTok+outTok, cost)

	call, ok := decodeToolCall(response)
	if !ok {
		e.logger.Printf("unparseable tool call: %.120q", response)
		return StepRecord{
			Tool:   "executor",
			Output: "The model produced a malformed tool call, so no tool was invoked for this step.",
		}, nil
	}

	tool, found := e.registry.Lookup(call.Tool)
	if !found {
		e.logger.Printf("model selected unknown tool %q", call.Tool)
		return StepRecord{
			Tool:   call.Tool,
			Output: fmt.Sprintf("Tool %q is not registered; no action was taken.", call.Tool),
		}, nil
	}

	args := call.Args
	if len(args) == 0 {
		// Best-effort fallback: let the tool work from the raw query.
		e.logger.Printf("tool call for %s had no arguments, falling back to the query text", call.Tool)
		args = map[string]interface{}{"query": state.Input}
	} else if missing := capability.MissingRequired(tool.InputSchema(), args); len(missing) > 0 {
		e.logger.Printf("tool call for %s missing %v, supplying the query text", call.Tool, missing)
		if capability.StringArg(args, "query") == "" {
			args["query"] = state.Input
		}
	}

	// The uploaded artifact always wins over whatever path the model invented.
	if tool.Name() == capability.FileAnalysisToolName && state.FilePath != "" {
		args["path"] = state.FilePath
	}

	output, err := tool.Invoke(ctx, args)
	e.telemetry.RecordTool(tool.Name(), err != nil)
	if err != nil {
		output = fmt.Sprintf("Tool %s failed: %v", tool.Name(), err)
	}

	e.telemetry.RecordStage("executor", time.Since(started))
	e.logger.Printf("executed %s in %v", tool.Name(), time.Since(started))
	return StepRecord{Tool: tool.Name(), Output: output}, nil
}

func (e *Executor) buildPrompt(query, instruction string) string {
	return fmt.Sprintf(`You translate an instruction into a single tool call.

ORIGINAL REQUEST: %s

INSTRUCTION: %s

AVAILABLE TOOLS:
%s

Select exactly one tool and fill its arguments from the instruction and the
original request. Respond ONLY with JSON in this format:
{"tool": "<tool_name>", "args": {"<arg>": <value>}}`, query, instruction, e.registry.Catalog())
}

// decodeToolCall extracts a tool call from free-form model text. The second
// return value is false when nothing structurally valid could be recovered.
func decodeToolCall(text string) (ToolCall, bool) {
	raw, err := helpers.ExtractJSON(text)
	if err != nil {
		return ToolCall{}, false
	}
	var call ToolCall
	if err := json.Unmarshal([]byte(raw), &call); err != nil {
		return ToolCall{}, false
	}
	if call.Tool == "" {
		return ToolCall{}, false
	}
	if call.Args == nil {
		call.Args = map[string]interface{}{}
	}
	return call, true
}
