package tracing

import (
	"go/token"

	"github.com/sirkon/flowsense/internal/dataflow"
	"github.com/sirkon/flowsense/internal/symbolic"
)

// FlowPoint is a flow condition a CFG node is evaluated under.
type FlowPoint struct {
	// Context of the function the node belongs to.
	Context *dataflow.Context

	// Token of the flow condition.
	Token *symbolic.AtomicBool
}

// Implies checks if the flow condition at this point implies v.
func (p FlowPoint) Implies(v symbolic.BoolValue) dataflow.Verdict {
	return p.Context.FlowConditionImplies(p.Token, v)
}

// Reachable tells if the point may be reached. Solver timeouts count as
// reachable.
func (p FlowPoint) Reachable() bool {
	return !p.Implies(p.Context.BoolLiteral(false)).Holds()
}

// String renders the flow condition for debugging.
func (p FlowPoint) String() string {
	return p.Context.FlowConditionString(p.Token)
}

// Results of the analysis of a package exposed to dependent analyzers.
type Results struct {
	spans *SpanIndex
}

// FlowConditionAt returns the flow point of the innermost CFG node covering
// pos.
func (r *Results) FlowConditionAt(pos token.Pos) (FlowPoint, bool) {
	if r == nil || r.spans == nil {
		return FlowPoint{}, false
	}
	return r.spans.GetByPos(pos)
}
