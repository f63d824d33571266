package tracing

import (
	"cmp"
	"maps"
	"slices"

	"github.com/sirkon/flowsense/internal/dataflow"
	"github.com/sirkon/flowsense/internal/symbolic"
)

// environment maps storage locations to values they hold at a program point.
// Locations missing in the environment hold unknown values.
type environment struct {
	vals map[symbolic.StorageLocation]symbolic.Value
}

func newEnvironment() *environment {
	return &environment{
		vals: map[symbolic.StorageLocation]symbolic.Value{},
	}
}

func (e *environment) clone() *environment {
	return &environment{
		vals: maps.Clone(e.vals),
	}
}

func (e *environment) get(loc symbolic.StorageLocation) symbolic.Value {
	return e.vals[loc]
}

func (e *environment) set(loc symbolic.StorageLocation, v symbolic.Value) {
	if v == nil {
		delete(e.vals, loc)
		return
	}
	e.vals[loc] = v
}

// invalidate forgets values of every location not passing keep.
func (e *environment) invalidate(keep func(loc symbolic.StorageLocation) bool) {
	maps.DeleteFunc(e.vals, func(loc symbolic.StorageLocation, _ symbolic.Value) bool {
		return !keep(loc)
	})
}

// locations returns locations having values in the order of their IDs.
func (e *environment) locations() []symbolic.StorageLocation {
	locs := slices.Collect(maps.Keys(e.vals))
	slices.SortFunc(locs, func(a, b symbolic.StorageLocation) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return locs
}

// joinEnvironments merges environments of two incoming edges with tokens
// first and second into the environment of the joined flow condition.
//
// Values that differ are replaced with fresh ones bound to the originals
// with X <=> (first ∧ a) ∨ (second ∧ b) on the joined token. Locations known
// on one edge only are dropped.
func joinEnvironments(
	fc *dataflow.Context,
	joined *symbolic.AtomicBool,
	first *symbolic.AtomicBool,
	a *environment,
	second *symbolic.AtomicBool,
	b *environment,
) *environment {
	res := newEnvironment()

	mergeBools := func(x, y symbolic.BoolValue) symbolic.BoolValue {
		if x == y {
			return x
		}

		v := fc.CreateAtomicBool()
		fc.AddFlowConditionConstraint(joined, fc.Iff(
			v,
			fc.Disjunction(fc.Conjunction(first, x), fc.Conjunction(second, y)),
		))
		return v
	}

	for _, loc := range a.locations() {
		va := a.get(loc)
		vb := b.get(loc)
		if vb == nil {
			continue
		}
		if va == vb {
			res.set(loc, va)
			continue
		}

		switch x := va.(type) {
		case symbolic.BoolValue:
			y, ok := vb.(symbolic.BoolValue)
			if !ok {
				continue
			}
			res.set(loc, mergeBools(x, y))

		case *symbolic.PointerValue:
			y, ok := vb.(*symbolic.PointerValue)
			if !ok || x.IsNull() == nil || y.IsNull() == nil {
				continue
			}

			pointee := x.Pointee()
			if pointee != y.Pointee() {
				pointee = fc.StableLocationForType(pointee.Type())
			}
			p := fc.CreatePointerValue(pointee)
			p.SetProperty(symbolic.PropertyIsNull, mergeBools(x.IsNull(), y.IsNull()))
			res.set(loc, p)
		}
	}

	return res
}
