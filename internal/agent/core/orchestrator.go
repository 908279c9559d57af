package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/agent/telemetry"
	"github.com/errandlabs/errand/internal/capability"
)

// Orchestrator runs the request workflow:
//
//	START -> planner -> router -> {executor -> responder | responder} -> END
//
// Stages run strictly in sequence within a request; concurrent requests are
// independent because all mutable state lives in the per-request RunState.
// Step count is bounded by construction (one plan, at most one execute, one
// respond), not by a runtime counter.
type Orchestrator struct {
	config    *config.Config
	llm       LLMProvider
	registry  *capability.Registry
	telemetry *telemetry.Telemetry
	planner   *Planner
	executor  *Executor
	responder *Responder
	logger    *log.Logger
}

// NewOrchestrator wires the stages around a shared LLM provider and the tool
// registry. The registry is consulted read-only for the process lifetime.
func NewOrchestrator(cfg *config.Config, registry *capability.Registry, tele *telemetry.Telemetry) (*Orchestrator, error) {
	llm, err := NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	return newOrchestratorWithProvider(cfg, llm, registry, tele), nil
}

func newOrchestratorWithProvider(cfg *config.Config, llm LLMProvider, registry *capability.Registry, tele *telemetry.Telemetry) *Orchestrator {
	return &Orchestrator{
		config:    cfg,
		llm:       llm,
		registry:  registry,
		telemetry: tele,
		planner:   NewPlanner(cfg, llm, registry, tele),
		executor:  NewExecutor(cfg, llm, registry, tele),
		responder: NewResponder(cfg, llm, tele),
		logger:    log.New(log.Writer(), "[ORCH] ", log.LstdFlags),
	}
}

// LLM exposes the provider for boundary concerns like model listing.
func (o *Orchestrator) LLM() LLMProvider {
	return o.llm
}

// ProcessQuery executes one full run. The returned error covers only fatal
// infrastructure failures (model unreachable); every recoverable condition
// has already been folded into the response text by the stages.
func (o *Orchestrator) ProcessQuery(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	o.logger.Printf("run %s: %.80q", req.ID, req.Query)

	state := &RunState{Input: req.Query, FilePath: req.FilePath}

	steps, err := o.planner.Plan(ctx, state)
	if err != nil {
		o.telemetry.RecordRun(false, time.Since(started))
		return Result{}, err
	}
	state.SetPlan(steps)

	if route := DecideRoute(state); route == RouteExecute {
		rec, err := o.executor.Execute(ctx, state)
		if err != nil {
			o.telemetry.RecordRun(false, time.Since(started))
			return Result{}, err
		}
		state.AppendSteps(rec)
	} else {
		o.logger.Printf("run %s: routed straight to responder", req.ID)
	}

	response, err := o.responder.Respond(ctx, state)
	if err != nil {
		o.telemetry.RecordRun(false, time.Since(started))
		return Result{}, err
	}
	state.Response = response

	elapsed := time.Since(started)
	o.telemetry.RecordRun(true, elapsed)
	tokens, cost := state.Usage()

	return Result{
		ID:             req.ID,
		Query:          req.Query,
		Response:       state.Response,
		Steps:          state.PastSteps,
		ProcessingTime: elapsed,
		TokensUsed:     tokens,
		CostEstimate:   cost,
		CreatedAt:      time.Now(),
	}, nil
}
