package dataflow

import (
	"github.com/sirkon/flowsense/internal/symbolic"
)

// boolValuePair is an unordered pair of boolean values, canonicalized by arena
// IDs so that (a, b) and (b, a) share a key.
type boolValuePair struct {
	lo symbolic.BoolValue
	hi symbolic.BoolValue
}

func makeBoolValuePair(a, b symbolic.BoolValue) boolValuePair {
	if a.ID() > b.ID() {
		a, b = b, a
	}
	return boolValuePair{lo: a, hi: b}
}

// BoolLiteral returns the atomic boolean modelling the literal. Every call
// returns the same instance for the same argument.
func (c *Context) BoolLiteral(value bool) *symbolic.AtomicBool {
	if value {
		return c.trueVal
	}
	return c.falseVal
}

// Conjunction returns a value representing lhs ∧ rhs. Subsequent calls with
// the same arguments, regardless of their order, return the same result. If
// both arguments are the same value the result is the value itself.
func (c *Context) Conjunction(lhs, rhs symbolic.BoolValue) symbolic.BoolValue {
	if lhs == rhs {
		return lhs
	}

	key := makeBoolValuePair(lhs, rhs)
	if v, ok := c.conjunctionVals[key]; ok {
		return v
	}

	v := symbolic.Own(c.arena, symbolic.NewConjunction(lhs, rhs))
	c.conjunctionVals[key] = v
	return v
}

// Disjunction returns a value representing lhs ∨ rhs. Subsequent calls with
// the same arguments, regardless of their order, return the same result. If
// both arguments are the same value the result is the value itself.
func (c *Context) Disjunction(lhs, rhs symbolic.BoolValue) symbolic.BoolValue {
	if lhs == rhs {
		return lhs
	}

	key := makeBoolValuePair(lhs, rhs)
	if v, ok := c.disjunctionVals[key]; ok {
		return v
	}

	v := symbolic.Own(c.arena, symbolic.NewDisjunction(lhs, rhs))
	c.disjunctionVals[key] = v
	return v
}

// Negation returns a value representing ¬v. Subsequent calls with the same
// argument return the same result.
func (c *Context) Negation(v symbolic.BoolValue) symbolic.BoolValue {
	if n, ok := c.negationVals[v]; ok {
		return n
	}

	n := symbolic.Own(c.arena, symbolic.NewNegation(v))
	c.negationVals[v] = n
	return n
}

// Implication returns a value representing lhs => rhs, which is ¬lhs ∨ rhs.
// If both arguments are the same value the result is the true literal.
func (c *Context) Implication(lhs, rhs symbolic.BoolValue) symbolic.BoolValue {
	if lhs == rhs {
		return c.BoolLiteral(true)
	}

	return c.Disjunction(c.Negation(lhs), rhs)
}

// Iff returns a value representing lhs <=> rhs, which is the conjunction of
// implications in both directions. If both arguments are the same value the
// result is the true literal.
func (c *Context) Iff(lhs, rhs symbolic.BoolValue) symbolic.BoolValue {
	if lhs == rhs {
		return c.BoolLiteral(true)
	}

	return c.Conjunction(c.Implication(lhs, rhs), c.Implication(rhs, lhs))
}

// EquivalentBoolValues checks if the values are the same up to double
// negations. It does not consult the solver and does not take flow condition
// constraints into account. Use ProveEquivalent for logical equivalence.
func (c *Context) EquivalentBoolValues(a, b symbolic.BoolValue) bool {
	return stripDoubleNegations(a) == stripDoubleNegations(b)
}

func stripDoubleNegations(v symbolic.BoolValue) symbolic.BoolValue {
	for {
		n, ok := v.(*symbolic.Negation)
		if !ok {
			return v
		}
		nn, ok := n.Operand().(*symbolic.Negation)
		if !ok {
			return v
		}
		v = nn.Operand()
	}
}
