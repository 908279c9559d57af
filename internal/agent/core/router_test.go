package core

import "testing"

func TestDecideRoute(t *testing.T) {
	cases := []struct {
		name string
		plan []string
		want Route
	}{
		{"empty plan responds", []string{}, RouteRespond},
		{"nil plan responds", nil, RouteRespond},
		{"sentinel responds", []string{PlanComplete}, RouteRespond},
		{"instruction executes", []string{"look up the weather in Oslo"}, RouteExecute},
		{"sentinel-looking prose executes", []string{"the plan is complete"}, RouteExecute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := &RunState{Input: "q"}
			state.SetPlan(tc.plan)
			if got := DecideRoute(state); got != tc.want {
				t.Fatalf("DecideRoute(%v) = %s, want %s", tc.plan, got, tc.want)
			}
		})
	}
}

func TestDecideRouteIsPure(t *testing.T) {
	state := &RunState{Input: "q"}
	state.SetPlan([]string{"do something"})
	state.AppendSteps(StepRecord{Tool: "web_search", Output: "x"})

	_ = DecideRoute(state)

	if len(state.Plan) != 1 || state.Plan[0] != "do something" {
		t.Fatalf("router mutated the plan: %v", state.Plan)
	}
	if len(state.PastSteps) != 1 {
		t.Fatalf("router mutated the history: %v", state.PastSteps)
	}
}
