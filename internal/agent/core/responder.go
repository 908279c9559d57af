package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/agent/telemetry"
	"github.com/errandlabs/errand/internal/helpers"
)

// maxStepChars caps how much of a single tool output is quoted back into the
// synthesis prompt.
const maxStepChars = 6000

// Responder synthesizes the final answer from the accumulated history. It is
// the terminal stage and the only place where error records are turned into
// user-facing language.
type Responder struct {
	config    *config.Config
	llm       LLMProvider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewResponder creates a new responder instance.
func NewResponder(cfg *config.Config, llm LLMProvider, tele *telemetry.Telemetry) *Responder {
	return &Responder{
		config:    cfg,
		llm:       llm,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[RESPONDER] ", log.LstdFlags),
	}
}

// Respond produces the final answer text. A model failure here is fatal:
// with no synthesized answer there is nothing partial worth returning.
func (r *Responder) Respond(ctx context.Context, state *RunState) (string, error) {
	started := time.Now()
	model := r.config.LLM.Routing.ModelFor("synthesis")

	prompt := r.buildPrompt(state)
	response, inTok, outTok, err := r.llm.GenerateWithTokens(ctx, prompt, model, map[string]interface{}{
		"temperature": 0.5,
		"max_tokens":  1200,
	})
	if err != nil {
		return "", fmt.Errorf("response synthesis failed: %w", err)
	}
	cost := r.llm.CalculateCost(inTok, outTok, model)
	r.telemetry.RecordLLM(model, "synthesis", inTok, outTok, cost)
	state.AddUsage(inTok+outTok, cost)

	// Models occasionally wrap the whole answer in a code fence.
	response = strings.TrimSpace(helpers.ExtractStructured(response))
	if response == "" {
		response = "I wasn't able to put together an answer for this request."
	}

	r.telemetry.RecordStage("responder", time.Since(started))
	r.logger.Printf("synthesis completed in %v from %d step(s)", time.Since(started), len(state.PastSteps))
	return response, nil
}

func (r *Responder) buildPrompt(state *RunState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are answering a user's request based on the results of the steps already taken.\n\nUSER REQUEST: %s\n\n", state.Input)

	if len(state.PastSteps) == 0 {
		b.WriteString("No tools were executed and no information was gathered. Answer from the request alone, and say plainly when you don't have enough to go on.\n")
	} else {
		b.WriteString("STEP RESULTS:\n")
		for i, step := range state.PastSteps {
			output := step.Output
			if len(output) > maxStepChars {
				output = truncateOnRune(output, maxStepChars) + "..."
			}
			fmt.Fprintf(&b, "%d. [%s]\n%s\n\n", i+1, step.Tool, output)
		}
	}

	b.WriteString(`Write one coherent answer for the user. If any step result describes a failure or an unavailable tool, explain it gracefully in plain language instead of quoting the raw error. Do not mention tools, steps, or JSON.`)
	return b.String()
}

// truncateOnRune cuts s to at most n bytes without splitting a rune.
func truncateOnRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
