package solver

import (
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/sirkon/flowsense/internal/symbolic"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Gini is a Solver backed by the gini CDCL SAT solver.
type Gini struct {
	timeout time.Duration
}

// NewGini creates a gini-backed solver. Zero timeout means Solve waits for
// the answer as long as it takes.
func NewGini(timeout time.Duration) *Gini {
	return &Gini{timeout: timeout}
}

// Solve implements Solver.
func (s *Gini) Solve(constraints []symbolic.BoolValue) Result {
	c := logic.NewCCap(len(constraints) * 4)
	t := circuitTranslator{
		c:    c,
		lits: make(map[symbolic.BoolValue]z.Lit),
	}

	roots := make([]z.Lit, 0, len(constraints))
	for _, v := range constraints {
		roots = append(roots, t.lit(v))
	}

	g := gini.New()
	c.ToCnf(g)
	for _, m := range roots {
		g.Add(m)
		g.Add(z.LitNull)
	}

	var outcome int
	if s.timeout > 0 {
		outcome = g.Try(s.timeout)
	} else {
		outcome = g.Solve()
	}

	switch outcome {
	case satisfiable:
		return Satisfiable
	case unsatisfiable:
		return Unsatisfiable
	default:
		return TimedOut
	}
}

// circuitTranslator maps boolean values onto gates of a logic.C circuit.
// Shared sub-formulas are translated once.
type circuitTranslator struct {
	c    *logic.C
	lits map[symbolic.BoolValue]z.Lit
}

func (t *circuitTranslator) lit(v symbolic.BoolValue) z.Lit {
	if m, ok := t.lits[v]; ok {
		return m
	}

	var m z.Lit
	switch vv := v.(type) {
	case *symbolic.AtomicBool:
		m = t.c.Lit()
	case *symbolic.Conjunction:
		m = t.c.And(t.lit(vv.LHS()), t.lit(vv.RHS()))
	case *symbolic.Disjunction:
		m = t.c.Or(t.lit(vv.LHS()), t.lit(vv.RHS()))
	case *symbolic.Negation:
		m = t.lit(vv.Operand()).Not()
	default:
		panic(fmt.Errorf("missing handling for bool value kind %s", v.Kind()))
	}

	t.lits[v] = m
	return m
}
