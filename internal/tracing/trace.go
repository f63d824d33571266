package tracing

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/tools/go/cfg"

	"github.com/sirkon/flowsense/internal/dataflow"
	"github.com/sirkon/flowsense/internal/rules"
	"github.com/sirkon/flowsense/internal/symbolic"
)

// funcTracer interprets CFG of a single function.
type funcTracer struct {
	e    *Engine
	info *types.Info
	fc   *dataflow.Context
	log  logrus.FieldLogger
	body *ast.BlockStmt

	trace *ReporterPhase
	check *ReporterPhase

	// Variables declared by the function and those having their address
	// taken or captured by closures.
	locals  map[types.Object]struct{}
	escaped map[types.Object]struct{}

	// Locations of local variables that nothing but the function itself can
	// change. Only these survive calls and indirect writes.
	stable map[symbolic.StorageLocation]struct{}

	// Case expressions of switches with a tag: they are compared with the tag
	// rather than being conditions themselves.
	taggedCases map[ast.Expr]struct{}

	// Keys and values of range statements: they are written by the loop.
	rangeVars map[ast.Expr]struct{}

	exits      map[*cfg.Block]*blockExit
	conditions []conditionSite
	reported   map[reportKey]struct{}
}

// blockState is a state of the block being interpreted.
type blockState struct {
	token *symbolic.AtomicBool
	env   *environment
}

// blockExit is what an interpreted block passes to its successors.
type blockExit struct {
	env *environment

	// Flow condition tokens of outgoing edges, one per successor.
	edges []*symbolic.AtomicBool
}

// conditionSite is a branch condition recorded for post-trace checks.
type conditionSite struct {
	expr  ast.Expr
	cond  symbolic.BoolValue
	point FlowPoint
}

type reportKey struct {
	rule rules.Rule
	pos  token.Pos
}

type incomingEdge struct {
	from  *cfg.Block
	index int
}

func (t *funcTracer) run(g *cfg.CFG, sig *types.Signature) {
	order := reversePostOrder(g)
	if len(order) == 0 {
		return
	}

	t.collectLocals(sig)
	entry := t.entryEnvironment(sig)

	preds := map[*cfg.Block][]incomingEdge{}
	for _, b := range order {
		for i, succ := range b.Succs {
			preds[succ] = append(preds[succ], incomingEdge{from: b, index: i})
		}
	}

	t.log.WithField("blocks", len(order)).Debug("trace function")
	for i, b := range order {
		var st *blockState
		if i == 0 {
			st = &blockState{
				token: t.fc.MakeFlowConditionToken(),
				env:   entry,
			}
		} else {
			st = t.enter(b, preds[b])
		}

		t.interpretBlock(b, st)
	}

	t.checkConditions()
	t.log.WithField("conditions", len(t.conditions)).Debug("function traced")
}

// reversePostOrder returns blocks reachable from the entry in reverse
// post-order, so every block goes after its predecessors except for loop
// back edges.
func reversePostOrder(g *cfg.CFG) []*cfg.Block {
	if len(g.Blocks) == 0 {
		return nil
	}

	type frame struct {
		block *cfg.Block
		next  int
	}

	var order []*cfg.Block
	visited := map[*cfg.Block]bool{g.Blocks[0]: true}
	stack := []frame{{block: g.Blocks[0]}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next == len(f.block.Succs) {
			order = append(order, f.block)
			stack = stack[:len(stack)-1]
			continue
		}

		succ := f.block.Succs[f.next]
		f.next++
		if !visited[succ] {
			visited[succ] = true
			stack = append(stack, frame{block: succ})
		}
	}

	slices.Reverse(order)
	return order
}

// enter computes the state at the entry of a block from states its
// predecessors passed along edges. A block with a predecessor not visited yet
// is a loop head, it starts from scratch: true flow condition, nothing known.
func (t *funcTracer) enter(b *cfg.Block, preds []incomingEdge) *blockState {
	type incoming struct {
		token *symbolic.AtomicBool
		env   *environment
	}

	var ins []incoming
	for _, p := range preds {
		exit, ok := t.exits[p.from]
		if !ok {
			t.log.WithField("block", b.Index).Debug("widen loop head")
			return &blockState{
				token: t.fc.MakeFlowConditionToken(),
				env:   newEnvironment(),
			}
		}
		ins = append(ins, incoming{token: exit.edges[p.index], env: exit.env})
	}

	switch len(ins) {
	case 0:
		return &blockState{
			token: t.fc.MakeFlowConditionToken(),
			env:   newEnvironment(),
		}
	case 1:
		return &blockState{
			token: t.fc.ForkFlowCondition(ins[0].token),
			env:   ins[0].env.clone(),
		}
	}

	token, env := ins[0].token, ins[0].env
	for _, in := range ins[1:] {
		joined := t.fc.JoinFlowConditions(token, in.token)
		env = joinEnvironments(t.fc, joined, token, env, in.token, in.env)
		token = joined
	}

	return &blockState{
		token: token,
		env:   env,
	}
}

func (t *funcTracer) interpretBlock(b *cfg.Block, st *blockState) {
	var cond symbolic.BoolValue
	for i, n := range b.Nodes {
		if !t.synthesized(n) {
			t.e.spans.Add(t.point(st.token), NodeSpan(n))
		}

		if e, ok := n.(ast.Expr); ok && i == len(b.Nodes)-1 && t.isCondition(b, e) {
			cond = t.condition(st, e)
			continue
		}

		t.interpretNode(st, n)
	}

	edges := make([]*symbolic.AtomicBool, len(b.Succs))
	if cond != nil {
		edges[0] = t.fc.ForkFlowCondition(st.token)
		t.fc.AddFlowConditionConstraint(edges[0], cond)
		edges[1] = t.fc.ForkFlowCondition(st.token)
		t.fc.AddFlowConditionConstraint(edges[1], t.fc.Negation(cond))
	} else {
		for i := range edges {
			edges[i] = st.token
		}
	}

	t.exits[b] = &blockExit{
		env:   st.env,
		edges: edges,
	}
}

// synthesized tells if the node was made up by go/cfg rather than parsed.
// The implicit return at the closing brace is the only one of these.
func (t *funcTracer) synthesized(n ast.Node) bool {
	ret, ok := n.(*ast.ReturnStmt)
	return ok && ret.Return == t.body.Rbrace
}

// isCondition checks if the expression ending a block decides which of two
// successors is taken: the first one on true, the second one on false.
func (t *funcTracer) isCondition(b *cfg.Block, e ast.Expr) bool {
	if len(b.Succs) != 2 {
		return false
	}
	if _, ok := t.taggedCases[e]; ok {
		return false
	}

	tv, ok := t.info.Types[e]
	return ok && tv.IsValue() && isBool(tv.Type)
}

// condition evaluates a branch condition and records it for checks.
func (t *funcTracer) condition(st *blockState, e ast.Expr) symbolic.BoolValue {
	t.scanDerefs(st, e)
	cond := t.evalBool(st, e)
	t.afterCalls(st, e)

	if tv := t.info.Types[e]; tv.Value == nil && t.e.cfg.Checks.RedundantConditions {
		t.conditions = append(t.conditions, conditionSite{
			expr:  e,
			cond:  cond,
			point: t.point(st.token),
		})
	}

	return cond
}

// checkConditions reports reachable conditions having the same value on
// every path reaching them.
func (t *funcTracer) checkConditions() {
	for _, site := range t.conditions {
		if !site.point.Reachable() {
			continue
		}

		switch {
		case site.point.Implies(site.cond).Holds():
			t.report(t.check, rules.ConditionAlwaysTrue(), site.expr.Pos(), site.point,
				fmt.Sprintf("condition %s is always true", types.ExprString(site.expr)))
		case site.point.Implies(t.fc.Negation(site.cond)).Holds():
			t.report(t.check, rules.ConditionAlwaysFalse(), site.expr.Pos(), site.point,
				fmt.Sprintf("condition %s is always false", types.ExprString(site.expr)))
		}
	}
}

func (t *funcTracer) report(phase *ReporterPhase, rule rules.Rule, pos token.Pos, point FlowPoint, msg string) {
	key := reportKey{rule: rule, pos: pos}
	if _, ok := t.reported[key]; ok {
		return
	}
	t.reported[key] = struct{}{}

	phase.Report(rule, msg, pos, point)
}

func (t *funcTracer) point(token *symbolic.AtomicBool) FlowPoint {
	return FlowPoint{
		Context: t.fc,
		Token:   token,
	}
}

// collectLocals finds variables of the function, those escaping it and some
// syntax facts go/cfg does not keep.
func (t *funcTracer) collectLocals(sig *types.Signature) {
	if recv := sig.Recv(); recv != nil {
		t.locals[recv] = struct{}{}
	}
	for v := range sig.Params().Variables() {
		t.locals[v] = struct{}{}
	}
	for v := range sig.Results().Variables() {
		t.locals[v] = struct{}{}
	}

	ast.Inspect(t.body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.Ident:
			if v, ok := t.info.Defs[x].(*types.Var); ok && !v.IsField() {
				t.locals[v] = struct{}{}
			}

		case *ast.UnaryExpr:
			if x.Op == token.AND {
				t.escape(x.X)
			}

		case *ast.SelectorExpr:
			// Methods with pointer receivers take the address implicitly.
			sel := t.info.Selections[x]
			if sel == nil || sel.Kind() != types.MethodVal {
				return true
			}
			sig, ok := sel.Obj().Type().(*types.Signature)
			if !ok || sig.Recv() == nil {
				return true
			}
			if _, ok := sig.Recv().Type().(*types.Pointer); ok && !isPointer(t.info.TypeOf(x.X)) {
				t.escape(x.X)
			}

		case *ast.FuncLit:
			t.captures(x)

		case *ast.SwitchStmt:
			if x.Tag == nil {
				return true
			}
			for _, clause := range x.Body.List {
				for _, e := range clause.(*ast.CaseClause).List {
					t.taggedCases[e] = struct{}{}
				}
			}

		case *ast.RangeStmt:
			if x.Key != nil {
				t.rangeVars[x.Key] = struct{}{}
			}
			if x.Value != nil {
				t.rangeVars[x.Value] = struct{}{}
			}
		}

		return true
	})
}

// escape marks the variable the addressable expression is rooted at.
func (t *funcTracer) escape(e ast.Expr) {
	for {
		switch x := dataflow.IgnoreCFGOmittedNodes(e).(type) {
		case *ast.Ident:
			if obj := t.info.ObjectOf(x); obj != nil {
				t.escaped[obj] = struct{}{}
			}
			return
		case *ast.SelectorExpr:
			if sel := t.info.Selections[x]; sel == nil || sel.Indirect() {
				return
			}
			e = x.X
		case *ast.IndexExpr:
			if _, ok := t.info.TypeOf(x.X).Underlying().(*types.Array); !ok {
				return
			}
			e = x.X
		default:
			return
		}
	}
}

// captures marks variables declared outside the literal and used inside.
func (t *funcTracer) captures(lit *ast.FuncLit) {
	ast.Inspect(lit.Body, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}

		v, ok := t.info.Uses[id].(*types.Var)
		if !ok || v.IsField() {
			return true
		}
		if v.Pos() < lit.Pos() || v.Pos() >= lit.End() {
			t.escaped[v] = struct{}{}
		}
		return true
	})
}

// entryEnvironment binds receiver, parameters and named results.
func (t *funcTracer) entryEnvironment(sig *types.Signature) *environment {
	env := newEnvironment()
	st := &blockState{env: env}

	if recv := sig.Recv(); recv != nil {
		if p, ok := recv.Type().Underlying().(*types.Pointer); ok {
			pointee := t.fc.StableLocationForType(p.Elem())
			t.fc.SetThisPointeeLocation(pointee)

			// Methods can be called on nil pointers in Go.
			this := t.fc.CreatePointerValue(pointee)
			this.SetProperty(symbolic.PropertyIsNull, t.fc.CreateAtomicBool())
			env.set(t.declLocation(recv), this)
		}
	}

	for v := range sig.Params().Variables() {
		env.set(t.declLocation(v), t.unknownValue(v.Type()))
	}
	for v := range sig.Results().Variables() {
		if v.Name() == "" {
			continue
		}
		t.writeVar(st, v, t.zeroValue(v.Type()))
	}

	return env
}
