package tracing

import (
	"go/token"

	"github.com/sirkon/rbtree"
)

// NewSpanIndex creates an empty SpanIndex.
func NewSpanIndex() *SpanIndex {
	return &SpanIndex{tree: rbtree.New[*spanNode]()}
}

// SpanIndex maps source spans of CFG nodes to flow points the nodes are
// evaluated at. Spans are either disjoint or nested, the innermost one wins
// on lookups.
type SpanIndex struct {
	tree *rbtree.Tree[*spanNode]
}

// Span is a [start,end] range of source positions.
type Span struct {
	start token.Pos
	end   token.Pos
}

// NodeSpan returns the span of the given node.
func NodeSpan(n interface {
	Pos() token.Pos
	End() token.Pos
}) Span {
	return Span{start: n.Pos(), end: n.End()}
}

// GetByPos returns the flow point of the most specific (innermost) span
// covering pos.
func (c *SpanIndex) GetByPos(pos token.Pos) (FlowPoint, bool) {
	probe := &spanNode{start: pos, end: pos}
	res := c.tree.Search(probe)
	if res == nil {
		return FlowPoint{}, false
	}
	return descendSearch(res, pos)
}

// Add registers a flow point with its [start,end] span.
// The RB-tree orders only disjoint spans; any overlap is reported back via
// InsertReturn, and we resolve it into a strict containment hierarchy.
func (c *SpanIndex) Add(point FlowPoint, s Span) {
	span := &spanNode{start: s.start, end: s.end, point: point}
	attachInto(c.tree, span)
}
