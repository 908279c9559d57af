package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPlannerParsesFencedPlan(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"```json\n{\"steps\": [\"use web_search to find the capital of Norway\"]}\n```",
	}}
	p := NewPlanner(testConfig(), llm, testRegistry(t), testTelemetry())

	steps, err := p.Plan(context.Background(), &RunState{Input: "capital of Norway?"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(steps) != 1 || !strings.Contains(steps[0], "web_search") {
		t.Fatalf("unexpected steps: %v", steps)
	}
}

func TestPlannerSubstitutesSentinelOnGarbage(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"I think you should probably just search the web for that."}}
	p := NewPlanner(testConfig(), llm, testRegistry(t), testTelemetry())

	steps, err := p.Plan(context.Background(), &RunState{Input: "q"})
	if err != nil {
		t.Fatalf("malformed plan must not error: %v", err)
	}
	if len(steps) != 1 || steps[0] != PlanComplete {
		t.Fatalf("want sentinel, got %v", steps)
	}
}

func TestPlannerKeepsEmptyPlan(t *testing.T) {
	llm := &scriptedLLM{responses: []string{`{"steps": []}`}}
	p := NewPlanner(testConfig(), llm, testRegistry(t), testTelemetry())

	steps, err := p.Plan(context.Background(), &RunState{Input: "hi"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(steps) != 0 {
		t.Fatalf("want empty plan, got %v", steps)
	}
}

func TestPlannerTruncatesMultiStepPlans(t *testing.T) {
	llm := &scriptedLLM{responses: []string{planJSON("first step", "second step", "third step")}}
	p := NewPlanner(testConfig(), llm, testRegistry(t), testTelemetry())

	steps, err := p.Plan(context.Background(), &RunState{Input: "q"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(steps) != 1 || steps[0] != "first step" {
		t.Fatalf("want only the first step, got %v", steps)
	}
}

func TestPlannerPropagatesModelFailure(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("connection refused")}
	p := NewPlanner(testConfig(), llm, testRegistry(t), testTelemetry())

	if _, err := p.Plan(context.Background(), &RunState{Input: "q"}); err == nil {
		t.Fatal("unreachable model must surface as an error")
	}
}

func TestPlannerPromptMentionsAttachedFile(t *testing.T) {
	llm := &scriptedLLM{responses: []string{planJSON("analyze the file")}}
	p := NewPlanner(testConfig(), llm, testRegistry(t), testTelemetry())

	if _, err := p.Plan(context.Background(), &RunState{Input: "summarize this", FilePath: "/tmp/doc.pdf"}); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], "attached a file") {
		t.Fatalf("prompt should note the attachment: %q", llm.prompts)
	}
}

func TestDecodePlan(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
		ok   bool
	}{
		{"plain", `{"steps": ["a"]}`, []string{"a"}, true},
		{"fenced", "```json\n{\"steps\": [\"a\"]}\n```", []string{"a"}, true},
		{"chatter around json", `Sure! Here you go: {"steps": ["a"]} hope that helps`, []string{"a"}, true},
		{"empty", `{"steps": []}`, []string{}, true},
		{"missing key", `{"plan": ["a"]}`, []string{}, true},
		{"prose", "step one: search the web", nil, false},
		{"wrong shape", `{"steps": "a"}`, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := decodePlan(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if len(got) != len(tc.want) {
				t.Fatalf("steps = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("steps = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
