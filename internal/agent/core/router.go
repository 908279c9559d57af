package core

// DecideRoute inspects the current plan and picks the next stage. It is a
// pure function: no model calls, no side effects. An empty plan or the
// completion sentinel routes to the responder; anything else routes to the
// executor. This is the only branching point in the workflow; there is no
// cycle back from the executor to the planner, so each request performs at
// most one execute step.
func DecideRoute(state *RunState) Route {
	if len(state.Plan) == 0 {
		return RouteRespond
	}
	if state.Plan[0] == PlanComplete {
		return RouteRespond
	}
	return RouteExecute
}
