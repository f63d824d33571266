package solver

import (
	"fmt"

	"github.com/sirkon/flowsense/internal/symbolic"
)

// TruthTable is a brute-force Solver enumerating every assignment of atomic
// booleans. It refuses inputs with more than maxAtoms distinct atoms by
// reporting TimedOut.
type TruthTable struct {
	maxAtoms int
}

// NewTruthTable creates a truth-table solver.
func NewTruthTable(maxAtoms int) *TruthTable {
	if maxAtoms > maxTruthTableAtoms {
		maxAtoms = maxTruthTableAtoms
	}
	return &TruthTable{maxAtoms: maxAtoms}
}

// Solve implements Solver.
func (s *TruthTable) Solve(constraints []symbolic.BoolValue) Result {
	atoms := symbolic.Atoms(constraints...)
	if len(atoms) > s.maxAtoms {
		return TimedOut
	}

	index := make(map[*symbolic.AtomicBool]uint, len(atoms))
	for i, a := range atoms {
		index[a] = uint(i)
	}

	memo := make(map[symbolic.BoolValue]bool)
	for assignment := uint64(0); assignment < 1<<len(atoms); assignment++ {
		clear(memo)
		e := evaluator{
			index:      index,
			assignment: assignment,
			memo:       memo,
		}

		ok := true
		for _, c := range constraints {
			if !e.eval(c) {
				ok = false
				break
			}
		}
		if ok {
			return Satisfiable
		}
	}

	return Unsatisfiable
}

type evaluator struct {
	index      map[*symbolic.AtomicBool]uint
	assignment uint64
	memo       map[symbolic.BoolValue]bool
}

func (e *evaluator) eval(v symbolic.BoolValue) bool {
	if res, ok := e.memo[v]; ok {
		return res
	}

	var res bool
	switch vv := v.(type) {
	case *symbolic.AtomicBool:
		res = e.assignment&(1<<e.index[vv]) != 0
	case *symbolic.Conjunction:
		res = e.eval(vv.LHS()) && e.eval(vv.RHS())
	case *symbolic.Disjunction:
		res = e.eval(vv.LHS()) || e.eval(vv.RHS())
	case *symbolic.Negation:
		res = !e.eval(vv.Operand())
	default:
		panic(fmt.Errorf("missing handling for bool value kind %s", v.Kind()))
	}

	e.memo[v] = res
	return res
}
