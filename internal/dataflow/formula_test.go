package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirkon/flowsense/internal/solver"
	"github.com/sirkon/flowsense/internal/symbolic"
)

func newTestContext(t *testing.T, options ...Option) *Context {
	t.Helper()

	s, err := solver.New(solver.KindGini)
	require.NoError(t, err)
	return New(s, options...)
}

func TestLiterals(t *testing.T) {
	c := newTestContext(t)

	require.Same(t, c.BoolLiteral(true), c.BoolLiteral(true))
	require.Same(t, c.BoolLiteral(false), c.BoolLiteral(false))
	require.NotSame(t, c.BoolLiteral(true), c.BoolLiteral(false))
	assert.Equal(t, 2, c.Arena().Values())
}

func TestBinaryOperationsDedup(t *testing.T) {
	c := newTestContext(t)
	x := c.CreateAtomicBool()
	y := c.CreateAtomicBool()

	tests := []struct {
		name string
		op   func(l, r symbolic.BoolValue) symbolic.BoolValue
		kind symbolic.Kind
	}{
		{
			name: "conjunction",
			op:   c.Conjunction,
			kind: symbolic.KindConjunction,
		},
		{
			name: "disjunction",
			op:   c.Disjunction,
			kind: symbolic.KindDisjunction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xy := tt.op(x, y)
			require.Equal(t, tt.kind, xy.Kind())

			before := c.Arena().Values()
			assert.Same(t, xy, tt.op(x, y), "same order")
			assert.Same(t, xy, tt.op(y, x), "swapped order")
			assert.Equal(t, before, c.Arena().Values(), "no new values")

			assert.Same(t, x, tt.op(x, x), "identity")
		})
	}

	// Conjunction and disjunction of the same pair are distinct values.
	assert.NotEqual(t, c.Conjunction(x, y).ID(), c.Disjunction(x, y).ID())
}

func TestNegation(t *testing.T) {
	c := newTestContext(t)
	x := c.CreateAtomicBool()

	nx := c.Negation(x)
	require.Same(t, nx, c.Negation(x))
	require.Same(t, x, nx.(*symbolic.Negation).Operand())

	nnx := c.Negation(nx)
	require.NotSame(t, x, nnx, "double negation is not collapsed")
	require.Same(t, nnx, c.Negation(nx))
}

func TestImplicationAndIff(t *testing.T) {
	c := newTestContext(t)
	x := c.CreateAtomicBool()
	y := c.CreateAtomicBool()

	assert.Same(t, c.BoolLiteral(true), c.Implication(x, x))
	assert.Same(t, c.BoolLiteral(true), c.Iff(y, y))

	assert.Same(t, c.Disjunction(c.Negation(x), y), c.Implication(x, y))
	assert.Same(
		t,
		c.Conjunction(c.Implication(x, y), c.Implication(y, x)),
		c.Iff(x, y),
	)
	assert.Equal(t, "((!B3 | B4) & (!B4 | B3))", c.Iff(x, y).String())
}

func TestEquivalentBoolValues(t *testing.T) {
	c := newTestContext(t)
	x := c.CreateAtomicBool()
	y := c.CreateAtomicBool()

	tests := []struct {
		name string
		a    symbolic.BoolValue
		b    symbolic.BoolValue
		want bool
	}{
		{
			name: "identity",
			a:    x,
			b:    x,
			want: true,
		},
		{
			name: "double negation",
			a:    c.Negation(c.Negation(x)),
			b:    x,
			want: true,
		},
		{
			name: "quadruple negation on both sides",
			a:    c.Negation(c.Negation(c.Negation(c.Negation(x)))),
			b:    c.Negation(c.Negation(x)),
			want: true,
		},
		{
			name: "single negation",
			a:    c.Negation(x),
			b:    x,
			want: false,
		},
		{
			name: "different atoms",
			a:    x,
			b:    y,
			want: false,
		},
		{
			name: "logically equivalent but structurally different",
			a:    c.Negation(c.Conjunction(x, y)),
			b:    c.Disjunction(c.Negation(x), c.Negation(y)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.EquivalentBoolValues(tt.a, tt.b))
			assert.Equal(t, tt.want, c.EquivalentBoolValues(tt.b, tt.a))
		})
	}
}
