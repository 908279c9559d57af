package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/errandlabs/errand/config"
)

// Collectors are package-level so repeated Telemetry construction (tests,
// multiple commands in one process) never double-registers them.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errand_runs_total",
		Help: "Completed orchestration runs by outcome",
	}, []string{"outcome"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "errand_stage_duration_seconds",
		Help:    "Wall time per orchestration stage",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"stage"})

	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errand_llm_requests_total",
		Help: "LLM completions by model and role",
	}, []string{"model", "role"})

	llmTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errand_llm_tokens_total",
		Help: "LLM token usage by model and direction",
	}, []string{"model", "direction"})

	toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errand_tool_invocations_total",
		Help: "Tool invocations by tool and outcome",
	}, []string{"tool", "outcome"})
)

// Telemetry records run metrics and tracks LLM spend.
type Telemetry struct {
	config config.TelemetryConfig
	logger *log.Logger

	mu          sync.Mutex
	totalCost   float64
	totalTokens int64
	modelCosts  map[string]float64
}

// NewTelemetry creates a telemetry instance.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	return &Telemetry{
		config:     cfg,
		logger:     log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		modelCosts: make(map[string]float64),
	}
}

// RecordRun counts one completed run.
func (t *Telemetry) RecordRun(success bool, d time.Duration) {
	if !t.config.Enabled {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	runsTotal.WithLabelValues(outcome).Inc()
	stageDuration.WithLabelValues("run").Observe(d.Seconds())
}

// RecordStage observes the latency of one orchestration stage.
func (t *Telemetry) RecordStage(stage string, d time.Duration) {
	if !t.config.Enabled {
		return
	}
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordLLM counts one model completion with token usage and cost.
func (t *Telemetry) RecordLLM(model, role string, inputTokens, outputTokens int64, cost float64) {
	if !t.config.Enabled {
		return
	}
	llmRequests.WithLabelValues(model, role).Inc()
	llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))

	if !t.config.CostTracking {
		return
	}
	t.mu.Lock()
	t.totalCost += cost
	t.totalTokens += inputTokens + outputTokens
	t.modelCosts[model] += cost
	t.mu.Unlock()
}

// RecordTool counts one tool invocation.
func (t *Telemetry) RecordTool(tool string, failed bool) {
	if !t.config.Enabled {
		return
	}
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	toolInvocations.WithLabelValues(tool, outcome).Inc()
}

// Totals returns accumulated cost and token usage.
func (t *Telemetry) Totals() (cost float64, tokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCost, t.totalTokens
}

// LogSummary prints the current spend per model.
func (t *Telemetry) LogSummary() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for model, cost := range t.modelCosts {
		t.logger.Printf("model %s: $%.4f", model, cost)
	}
	t.logger.Printf("total: $%.4f over %d tokens", t.totalCost, t.totalTokens)
}
