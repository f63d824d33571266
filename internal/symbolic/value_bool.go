package symbolic

import (
	"strconv"
)

// AtomicBool is an opaque symbolic boolean variable with no sub-structure.
type AtomicBool struct {
	valueHeader
}

// NewAtomicBool creates an unowned atomic boolean.
func NewAtomicBool() *AtomicBool {
	return &AtomicBool{}
}

// Kind returns KindAtomicBool.
func (*AtomicBool) Kind() Kind { return KindAtomicBool }

func (v *AtomicBool) String() string {
	return "B" + strconv.Itoa(v.id)
}

// Conjunction is a LHS ∧ RHS value.
type Conjunction struct {
	valueHeader
	lhs BoolValue
	rhs BoolValue
}

// NewConjunction creates an unowned conjunction of the given operands.
func NewConjunction(lhs, rhs BoolValue) *Conjunction {
	return &Conjunction{lhs: lhs, rhs: rhs}
}

// Kind returns KindConjunction.
func (*Conjunction) Kind() Kind { return KindConjunction }

// LHS returns the left operand.
func (v *Conjunction) LHS() BoolValue { return v.lhs }

// RHS returns the right operand.
func (v *Conjunction) RHS() BoolValue { return v.rhs }

func (v *Conjunction) String() string {
	return "(" + v.lhs.String() + " & " + v.rhs.String() + ")"
}

// Disjunction is a LHS ∨ RHS value.
type Disjunction struct {
	valueHeader
	lhs BoolValue
	rhs BoolValue
}

// NewDisjunction creates an unowned disjunction of the given operands.
func NewDisjunction(lhs, rhs BoolValue) *Disjunction {
	return &Disjunction{lhs: lhs, rhs: rhs}
}

// Kind returns KindDisjunction.
func (*Disjunction) Kind() Kind { return KindDisjunction }

// LHS returns the left operand.
func (v *Disjunction) LHS() BoolValue { return v.lhs }

// RHS returns the right operand.
func (v *Disjunction) RHS() BoolValue { return v.rhs }

func (v *Disjunction) String() string {
	return "(" + v.lhs.String() + " | " + v.rhs.String() + ")"
}

// Negation is a ¬Operand value.
type Negation struct {
	valueHeader
	operand BoolValue
}

// NewNegation creates an unowned negation of the given operand.
func NewNegation(operand BoolValue) *Negation {
	return &Negation{operand: operand}
}

// Kind returns KindNegation.
func (*Negation) Kind() Kind { return KindNegation }

// Operand returns the negated value.
func (v *Negation) Operand() BoolValue { return v.operand }

func (v *Negation) String() string {
	return "!" + v.operand.String()
}

func (v *AtomicBool) header() *valueHeader {
	if v == nil {
		return nil
	}
	return &v.valueHeader
}

func (v *Conjunction) header() *valueHeader {
	if v == nil {
		return nil
	}
	return &v.valueHeader
}

func (v *Disjunction) header() *valueHeader {
	if v == nil {
		return nil
	}
	return &v.valueHeader
}

func (v *Negation) header() *valueHeader {
	if v == nil {
		return nil
	}
	return &v.valueHeader
}

func (*AtomicBool) isBool()  {}
func (*Conjunction) isBool() {}
func (*Disjunction) isBool() {}
func (*Negation) isBool()    {}

// Operands returns direct operands of a composite boolean value. Atomic values
// have none.
func Operands(v BoolValue) []BoolValue {
	switch vv := v.(type) {
	case *Conjunction:
		return []BoolValue{vv.lhs, vv.rhs}
	case *Disjunction:
		return []BoolValue{vv.lhs, vv.rhs}
	case *Negation:
		return []BoolValue{vv.operand}
	default:
		return nil
	}
}

// Atoms collects every distinct atomic boolean reachable from the given values
// in the order of their IDs.
func Atoms(vals ...BoolValue) []*AtomicBool {
	seen := make(map[BoolValue]struct{})
	var res []*AtomicBool

	var walk func(v BoolValue)
	walk = func(v BoolValue) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}

		if a, ok := v.(*AtomicBool); ok {
			res = append(res, a)
			return
		}
		for _, op := range Operands(v) {
			walk(op)
		}
	}
	for _, v := range vals {
		walk(v)
	}

	sortByID(res)
	return res
}
