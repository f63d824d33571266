package tracing

import (
	"go/token"

	"github.com/sirkon/rbtree"
)

// spanNode stores a [start,end] span for a flow point and, if needed,
// a nested RB-tree for child spans fully contained in this span.
type spanNode struct {
	start token.Pos
	end   token.Pos

	point    FlowPoint
	children *rbtree.Tree[*spanNode]
}

// Cmp defines ordering for the RB-tree as "disjoint by position".
// - return -1 if this span is strictly before other (ends before other's start)
// - return  1 if this span is strictly after  other (starts after other's end)
// - return  0 if spans overlap in any way (including containment).
//
// NOTE: We rely on an *invariant of the input*: any two overlapping spans must
// be in a strict containment relationship (no partial overlaps). Spans of AST
// nodes always are.
func (n *spanNode) Cmp(other *spanNode) int {
	if n.end < other.start {
		return -1
	}
	if n.start > other.end {
		return 1
	}
	return 0
}

func contains(a, b *spanNode) bool {
	return a.start <= b.start && a.end >= b.end
}

// attachInto inserts span s into RB-tree t, using the following containment rules:
//   - If t has no overlapping node, s is inserted as a sibling in t.
//   - If an overlapping node r exists and s contains r, mutate r in-place to become s
//     and re-attach the old r as a child of the new s.
//   - If r contains s, recursively attach s into r.children.
func attachInto(t *rbtree.Tree[*spanNode], s *spanNode) {
	r := t.InsertReturn(s)
	if r == s {
		return
	}

	if contains(s, r) {
		old := *r
		*r = *s

		if r.children == nil {
			r.children = rbtree.New[*spanNode]()
		}
		attachInto(r.children, &old)
		return
	}

	if contains(r, s) {
		if r.children == nil {
			r.children = rbtree.New[*spanNode]()
		}
		attachInto(r.children, s)
		return
	}

	panic("attachInto: partial-overlap spans are not supported")
}

func descendSearch(n *spanNode, pos token.Pos) (FlowPoint, bool) {
	if n.children == nil {
		return n.point, true
	}
	probe := &spanNode{start: pos, end: pos}
	child := n.children.Search(probe)
	if child == nil {
		return n.point, true
	}
	return descendSearch(child, pos)
}
