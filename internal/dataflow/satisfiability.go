package dataflow

import (
	"github.com/sirupsen/logrus"

	"github.com/sirkon/flowsense/internal/solver"
	"github.com/sirkon/flowsense/internal/symbolic"
)

// Verdict is an outcome of a query that is answered with the solver.
type Verdict int

const (
	// VerdictUnknown means the solver could not decide in time. Callers
	// must not treat it as either answer.
	VerdictUnknown Verdict = iota
	VerdictHolds
	VerdictFails
)

var verdictNames = map[Verdict]string{
	VerdictUnknown: "unknown",
	VerdictHolds:   "holds",
	VerdictFails:   "fails",
}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return "verdict-invalid"
}

// Holds returns true only if the property was proven.
func (v Verdict) Holds() bool {
	return v == VerdictHolds
}

// FlowConditionImplies checks whether the flow condition identified by token
// implies v, i.e. whether {token, ¬v} with the token constraints is
// unsatisfiable.
func (c *Context) FlowConditionImplies(token *symbolic.AtomicBool, v symbolic.BoolValue) Verdict {
	constraints := newConstraintSet()
	constraints.Add(token)
	constraints.Add(c.Negation(v))
	c.addTransitiveFlowConditionConstraints(token, constraints, map[*symbolic.AtomicBool]struct{}{})

	return unsatVerdict(c.querySolver("implies", constraints))
}

// FlowConditionIsTautology checks whether the flow condition identified by
// token holds under every assignment.
func (c *Context) FlowConditionIsTautology(token *symbolic.AtomicBool) Verdict {
	constraints := newConstraintSet()
	constraints.Add(c.Negation(token))
	c.addTransitiveFlowConditionConstraints(token, constraints, map[*symbolic.AtomicBool]struct{}{})

	return unsatVerdict(c.querySolver("tautology", constraints))
}

// ProveEquivalent checks whether a and b are logically equivalent. Unlike
// EquivalentBoolValues it consults the solver, yet it takes no flow condition
// into account too.
func (c *Context) ProveEquivalent(a, b symbolic.BoolValue) Verdict {
	if c.EquivalentBoolValues(a, b) {
		return VerdictHolds
	}

	constraints := newConstraintSet()
	constraints.Add(c.Negation(c.Iff(a, b)))

	return unsatVerdict(c.querySolver("equivalence", constraints))
}

// addTransitiveFlowConditionConstraints binds every token reachable from the
// given one to its constraints: FC <=> (C1 ∧ C2 ∧ ...).
func (c *Context) addTransitiveFlowConditionConstraints(
	token *symbolic.AtomicBool,
	constraints *constraintSet,
	visited map[*symbolic.AtomicBool]struct{},
) {
	if _, ok := visited[token]; ok {
		return
	}
	visited[token] = struct{}{}

	if constraint, ok := c.flowConditionConstraints[token]; ok {
		constraints.Add(c.Iff(token, constraint))
	} else {
		// Unconstrained token is true.
		constraints.Add(token)
	}

	for _, dep := range c.flowConditionDeps[token] {
		c.addTransitiveFlowConditionConstraints(dep, constraints, visited)
	}
}

func (c *Context) querySolver(query string, constraints *constraintSet) solver.Result {
	constraints.Add(c.BoolLiteral(true))
	constraints.Add(c.Negation(c.BoolLiteral(false)))

	res := c.s.Solve(constraints.Slice())

	log := c.log.WithFields(logrus.Fields{
		"query":       query,
		"constraints": constraints.Len(),
	})
	if res == solver.TimedOut {
		log.Warn("solver gave up on the query")
	} else {
		log.WithField("result", res.String()).Debug("solver query")
	}

	return res
}

func unsatVerdict(res solver.Result) Verdict {
	switch res {
	case solver.Unsatisfiable:
		return VerdictHolds
	case solver.Satisfiable:
		return VerdictFails
	default:
		return VerdictUnknown
	}
}

// constraintSet is a set of boolean values keeping insertion order, so solver
// queries are reproducible.
type constraintSet struct {
	indices map[symbolic.BoolValue]int
	vals    []symbolic.BoolValue
}

func newConstraintSet() *constraintSet {
	return &constraintSet{
		indices: map[symbolic.BoolValue]int{},
	}
}

func (set *constraintSet) Add(v symbolic.BoolValue) {
	if set.Contains(v) {
		return
	}
	set.indices[v] = len(set.vals)
	set.vals = append(set.vals, v)
}

func (set *constraintSet) Contains(v symbolic.BoolValue) bool {
	_, ok := set.indices[v]
	return ok
}

func (set *constraintSet) Slice() []symbolic.BoolValue {
	return set.vals
}

func (set *constraintSet) Len() int {
	return len(set.vals)
}
