package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/errandlabs/errand/internal/agent/core"
)

type fakeLLM struct {
	models map[string]core.ModelInfo
}

func (f *fakeLLM) Generate(ctx context.Context, prompt, model string, options map[string]interface{}) (string, error) {
	return "", nil
}

func (f *fakeLLM) GenerateWithTokens(ctx context.Context, prompt, model string, options map[string]interface{}) (string, int64, int64, error) {
	return "", 0, 0, nil
}

func (f *fakeLLM) GetAvailableModels() []string {
	var names []string
	for name := range f.models {
		names = append(names, name)
	}
	return names
}

func (f *fakeLLM) GetModelInfo(model string) (core.ModelInfo, error) {
	info, ok := f.models[model]
	if !ok {
		return core.ModelInfo{}, fmt.Errorf("model not found: %s", model)
	}
	return info, nil
}

func (f *fakeLLM) CalculateCost(inputTokens, outputTokens int64, model string) float64 { return 0 }

func TestModelsListSorted(t *testing.T) {
	h := &ModelsHandler{LLM: &fakeLLM{models: map[string]core.ModelInfo{
		"zephyr": {Name: "zephyr", Provider: "openai"},
		"aria":   {Name: "aria", Provider: "openai"},
	}}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	if err := h.list(e.NewContext(req, rec)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var out []core.ModelInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 || out[0].Name != "aria" || out[1].Name != "zephyr" {
		t.Fatalf("unexpected listing: %+v", out)
	}
}
