package core

import (
	"context"
	"fmt"
	"time"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/agent/telemetry"
	"github.com/errandlabs/errand/internal/capability"
)

// scriptedLLM replays canned responses in order and records every prompt it
// was given. When the script runs out it keeps returning the last response.
type scriptedLLM struct {
	responses []string
	err       error
	prompts   []string
	idx       int
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt, model string, options map[string]interface{}) (string, error) {
	resp, _, _, err := s.GenerateWithTokens(ctx, prompt, model, options)
	return resp, err
}

func (s *scriptedLLM) GenerateWithTokens(ctx context.Context, prompt, model string, options map[string]interface{}) (string, int64, int64, error) {
	if s.err != nil {
		return "", 0, 0, s.err
	}
	s.prompts = append(s.prompts, prompt)
	if len(s.responses) == 0 {
		return "", 10, 5, nil
	}
	i := s.idx
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	s.idx++
	return s.responses[i], 10, 5, nil
}

func (s *scriptedLLM) GetAvailableModels() []string { return []string{"test-model"} }

func (s *scriptedLLM) GetModelInfo(model string) (ModelInfo, error) {
	return ModelInfo{Name: model, Provider: "test"}, nil
}

func (s *scriptedLLM) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	return float64(inputTokens+outputTokens) * 0.001
}

// recordingTool captures the arguments of its last invocation.
type recordingTool struct {
	name     string
	schema   []capability.Field
	output   string
	err      error
	lastArgs map[string]interface{}
	calls    int
}

func (f *recordingTool) Name() string                    { return f.name }
func (f *recordingTool) Description() string             { return "test tool " + f.name }
func (f *recordingTool) InputSchema() []capability.Field { return f.schema }
func (f *recordingTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	f.calls++
	f.lastArgs = args
	return f.output, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		General: config.GeneralConfig{DefaultTimeout: 30 * time.Second},
		LLM: config.LLMConfig{
			Routing: config.LLMRoutingConfig{
				Planning:  "test-model",
				Execution: "test-model",
				Synthesis: "test-model",
				Fallback:  "test-model",
			},
		},
	}
}

func testTelemetry() *telemetry.Telemetry {
	return telemetry.NewTelemetry(config.TelemetryConfig{})
}

func testRegistry(t interface{ Fatalf(string, ...interface{}) }, tools ...capability.Tool) *capability.Registry {
	reg, err := capability.NewRegistry(tools...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func planJSON(steps ...string) string {
	out := `{"steps": [`
	for i, s := range steps {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", s)
	}
	return out + `]}`
}
