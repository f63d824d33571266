package tracing

import (
	"go/token"
	"testing"

	"github.com/sirkon/flowsense/internal/dataflow"
	"github.com/sirkon/flowsense/internal/solver"
	"github.com/sirkon/flowsense/internal/symbolic"
)

func TestSpanIndexDepthPattern_ASCII(t *testing.T) {
	s, err := solver.New(solver.KindTruthTable)
	if err != nil {
		t.Fatal(err)
	}
	fc := dataflow.New(s)
	idx := NewSpanIndex()

	names := map[*symbolic.AtomicBool]string{}
	pointn := func(name string) FlowPoint {
		tok := fc.MakeFlowConditionToken()
		names[tok] = name
		return FlowPoint{Context: fc, Token: tok}
	}
	add := func(name string, start, end token.Pos) {
		idx.Add(pointn(name), Span{start: start, end: end})
	}

	if _, ok := idx.GetByPos(0); ok {
		t.Fatal("nothing was expected at pos 0 right now")
	}

	add("ground", 0, 200)

	res, ok := idx.GetByPos(10)
	if !ok || names[res.Token] != "ground" {
		t.Fatal("ground was expected at pos 10")
	}

	add("mid1", 10, 90)
	add("mid11", 20, 30)
	add("mid12", 40, 80)
	add("mid13", 85, 88)
	add("mid2", 110, 190)
	add("mid21", 120, 130)

	type test struct {
		name  string
		pos   token.Pos
		isnil bool
	}
	testingFunc := func(tt test) func(t *testing.T) {
		return func(t *testing.T) {
			point, ok := idx.GetByPos(tt.pos)
			if !ok && !tt.isnil {
				t.Fatalf("point %q was not found at position %d", tt.name, tt.pos)
			}
			if ok && tt.isnil {
				t.Fatalf("no point was expected at position %d, got %q", tt.pos, names[point.Token])
			}
			if !ok && tt.isnil {
				t.Logf("no point was found at %d as was expected", tt.pos)
			}
			if ok {
				if got := names[point.Token]; got != tt.name {
					t.Fatalf("point %q was expected, got %q at position %d", tt.name, got, tt.pos)
				}
				t.Logf("expected point %q found at %d", tt.name, tt.pos)
			}
		}
	}

	tests := []test{
		{name: "ground", pos: 0},
		{name: "ground", pos: 5},
		{name: "ground", pos: 200},
		{name: "mid1", pos: 90},
		{name: "mid11", pos: 25},
		{name: "mid12", pos: 41},
		{name: "mid12", pos: 79},
		{name: "mid13", pos: 86},
		{name: "ground", pos: 100},
		{name: "mid2", pos: 115},
		{name: "mid21", pos: 125},
		{name: "on-the-left", pos: -1, isnil: true},
		{name: "on-the-right", pos: 201, isnil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, testingFunc(tt))
	}

	add("underground", -10, 300)
	tests = []test{
		{name: "underground", pos: -5},
		{name: "underground", pos: 250},
		{name: "ground", pos: 2},
		{name: "mid21", pos: 121},
	}
	for _, tt := range tests {
		t.Run(tt.name, testingFunc(tt))
	}
}

func TestSpanIndexPartialOverlap(t *testing.T) {
	idx := NewSpanIndex()
	idx.Add(FlowPoint{}, Span{start: 10, end: 20})

	defer func() {
		if recover() == nil {
			t.Fatal("partial overlap must panic")
		}
	}()
	idx.Add(FlowPoint{}, Span{start: 15, end: 25})
}

func TestResultsWithoutSpans(t *testing.T) {
	var r *Results
	if _, ok := r.FlowConditionAt(1); ok {
		t.Fatal("nil results must not find anything")
	}
}
