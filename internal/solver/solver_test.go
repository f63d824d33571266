package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirkon/flowsense/internal/symbolic"
)

type formulas struct {
	a *symbolic.Arena
}

func (f formulas) atom() *symbolic.AtomicBool {
	return symbolic.Own(f.a, symbolic.NewAtomicBool())
}

func (f formulas) and(l, r symbolic.BoolValue) symbolic.BoolValue {
	return symbolic.Own(f.a, symbolic.NewConjunction(l, r))
}

func (f formulas) or(l, r symbolic.BoolValue) symbolic.BoolValue {
	return symbolic.Own(f.a, symbolic.NewDisjunction(l, r))
}

func (f formulas) not(v symbolic.BoolValue) symbolic.BoolValue {
	return symbolic.Own(f.a, symbolic.NewNegation(v))
}

func TestSolvers(t *testing.T) {
	f := formulas{a: symbolic.NewArena()}
	x := f.atom()
	y := f.atom()
	z := f.atom()

	tests := []struct {
		name        string
		constraints []symbolic.BoolValue
		want        Result
	}{
		{
			name: "empty",
			want: Satisfiable,
		},
		{
			name:        "single atom",
			constraints: []symbolic.BoolValue{x},
			want:        Satisfiable,
		},
		{
			name:        "atom and its negation",
			constraints: []symbolic.BoolValue{x, f.not(x)},
			want:        Unsatisfiable,
		},
		{
			name:        "double negation",
			constraints: []symbolic.BoolValue{x, f.not(f.not(x))},
			want:        Satisfiable,
		},
		{
			name:        "contradicting conjunction",
			constraints: []symbolic.BoolValue{f.and(x, f.not(x))},
			want:        Unsatisfiable,
		},
		{
			name:        "excluded middle",
			constraints: []symbolic.BoolValue{f.not(f.or(x, f.not(x)))},
			want:        Unsatisfiable,
		},
		{
			name: "resolution",
			constraints: []symbolic.BoolValue{
				f.or(x, y),
				f.or(f.not(x), z),
				f.not(y),
				f.not(z),
			},
			want: Unsatisfiable,
		},
		{
			name: "shared subformula",
			constraints: func() []symbolic.BoolValue {
				shared := f.and(x, y)
				return []symbolic.BoolValue{
					f.or(shared, z),
					f.or(shared, f.not(z)),
				}
			}(),
			want: Satisfiable,
		},
	}

	for _, kind := range []Kind{KindGini, KindTruthTable} {
		s, err := New(kind, WithTimeout(10*time.Second))
		require.NoError(t, err)

		for _, tt := range tests {
			t.Run(kind.String()+"/"+tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, s.Solve(tt.constraints))
			})
		}
	}
}

func TestTruthTableGivesUp(t *testing.T) {
	f := formulas{a: symbolic.NewArena()}

	s, err := New(KindTruthTable, WithMaxAtoms(2))
	require.NoError(t, err)

	var acc symbolic.BoolValue = f.atom()
	require.Equal(t, Satisfiable, s.Solve([]symbolic.BoolValue{acc}))

	for range 2 {
		acc = f.and(acc, f.atom())
	}
	assert.Equal(t, TimedOut, s.Solve([]symbolic.BoolValue{acc}))
}

func TestNew(t *testing.T) {
	_, err := New(Kind(0))
	assert.Error(t, err)

	_, err = New(KindGini, WithTimeout(-time.Second))
	assert.Error(t, err)

	_, err = New(KindTruthTable, WithMaxAtoms(0))
	assert.Error(t, err)

	_, err = New(KindTruthTable, WithMaxAtoms(maxTruthTableAtoms+1))
	assert.Error(t, err)

	s, err := New(KindTruthTable, WithMaxAtoms(4))
	require.NoError(t, err)
	assert.Equal(t, &TruthTable{maxAtoms: 4}, s)
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindGini, KindTruthTable} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("z3")))
	assert.Equal(t, "solver-kind-invalid(0)", k.String())
	assert.Equal(t, "timed-out", TimedOut.String())
	assert.Equal(t, "invalid(0)", Result(0).String())
}
