package tracing

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"

	"github.com/sirkon/flowsense/internal/dataflow"
	"github.com/sirkon/flowsense/internal/rules"
	"github.com/sirkon/flowsense/internal/symbolic"
)

// interpretNode applies effects of a CFG node to the block state.
func (t *funcTracer) interpretNode(st *blockState, n ast.Node) {
	switch x := n.(type) {
	case *ast.AssignStmt:
		t.assign(st, x)

	case *ast.ValueSpec:
		t.valueSpec(st, x)

	case *ast.ExprStmt:
		t.scanDerefs(st, x.X)
		if call, ok := dataflow.IgnoreCFGOmittedNodes(x.X).(*ast.CallExpr); ok {
			if kind, ok := t.e.noReturn.lookup(t.info, call); ok {
				t.log.WithField("kind", kind.String()).Debug("call never returns")
			}
		}
		t.afterCalls(st, x.X)

	case *ast.IncDecStmt:
		t.scanDerefs(st, x.X)
		t.write(st, x.X, nil)

	case *ast.SendStmt:
		t.scanDerefs(st, x.Chan)
		t.scanDerefs(st, x.Value)
		t.afterCalls(st, x.Chan, x.Value)

	case *ast.GoStmt:
		t.scanDerefs(st, x.Call)
		t.invalidate(st)

	case *ast.DeferStmt:
		t.scanDerefs(st, x.Call.Fun)
		for _, arg := range x.Call.Args {
			t.scanDerefs(st, arg)
		}

	case *ast.ReturnStmt:
		for _, r := range x.Results {
			t.scanDerefs(st, r)
		}
		t.afterCalls(st, x.Results...)

	case ast.Expr:
		t.scanDerefs(st, x)
		t.afterCalls(st, x)
		if _, ok := t.rangeVars[x]; ok {
			t.write(st, x, nil)
		}
	}
}

func (t *funcTracer) assign(st *blockState, s *ast.AssignStmt) {
	for _, r := range s.Rhs {
		t.scanDerefs(st, r)
	}
	for _, l := range s.Lhs {
		t.scanDerefs(st, l)
	}

	switch {
	case s.Tok != token.ASSIGN && s.Tok != token.DEFINE:
		t.afterCalls(st, s.Rhs...)
		t.write(st, s.Lhs[0], nil)

	case len(s.Lhs) == len(s.Rhs):
		vals := make([]symbolic.Value, len(s.Rhs))
		for i, r := range s.Rhs {
			vals[i] = t.evalFor(st, r, t.info.TypeOf(s.Lhs[i]))
		}
		t.afterCalls(st, s.Rhs...)
		for i, l := range s.Lhs {
			t.write(st, l, vals[i])
		}

	default:
		t.afterCalls(st, s.Rhs...)
		for _, l := range s.Lhs {
			t.write(st, l, nil)
		}
	}
}

func (t *funcTracer) valueSpec(st *blockState, s *ast.ValueSpec) {
	for _, v := range s.Values {
		t.scanDerefs(st, v)
	}

	switch {
	case len(s.Values) == 0:
		for _, name := range s.Names {
			t.write(st, name, t.zeroValue(t.info.TypeOf(name)))
		}

	case len(s.Values) == len(s.Names):
		vals := make([]symbolic.Value, len(s.Values))
		for i, v := range s.Values {
			vals[i] = t.evalFor(st, v, t.info.TypeOf(s.Names[i]))
		}
		t.afterCalls(st, s.Values...)
		for i, name := range s.Names {
			t.write(st, name, vals[i])
		}

	default:
		t.afterCalls(st, s.Values...)
		for _, name := range s.Names {
			t.write(st, name, nil)
		}
	}
}

// write stores the value into the location the expression designates. Nil
// value means unknown. Writes through pointers and into fields may change
// anything but stable locals.
func (t *funcTracer) write(st *blockState, lhs ast.Expr, v symbolic.Value) {
	lhs = dataflow.IgnoreCFGOmittedNodes(lhs)
	if id, ok := lhs.(*ast.Ident); ok && id.Name == "_" {
		return
	}

	loc := t.locationOf(st, lhs)
	if _, ok := lhs.(*ast.Ident); !ok {
		t.invalidate(st)
	}
	if loc == nil {
		return
	}

	st.env.set(loc, v)
}

func (t *funcTracer) writeVar(st *blockState, v *types.Var, val symbolic.Value) {
	st.env.set(t.declLocation(v), val)
}

// afterCalls forgets everything a call might change if any of expressions
// makes one.
func (t *funcTracer) afterCalls(st *blockState, exprs ...ast.Expr) {
	for _, e := range exprs {
		if t.containsCall(e) {
			t.invalidate(st)
			return
		}
	}
}

func (t *funcTracer) invalidate(st *blockState) {
	st.env.invalidate(func(loc symbolic.StorageLocation) bool {
		_, ok := t.stable[loc]
		return ok
	})
}

// containsCall checks if the expression calls a function. Conversions and
// builtins do not count. Bodies of function literals are not executed.
func (t *funcTracer) containsCall(e ast.Expr) bool {
	var found bool
	ast.Inspect(e, func(n ast.Node) bool {
		if found {
			return false
		}

		switch x := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.CallExpr:
			if t.info.Types[x.Fun].IsType() {
				return true
			}
			if id, ok := dataflow.IgnoreCFGOmittedNodes(x.Fun).(*ast.Ident); ok {
				if _, ok := t.info.Uses[id].(*types.Builtin); ok {
					return true
				}
			}
			found = true
			return false
		case *ast.UnaryExpr:
			// Receiving from a channel blocks and lets other goroutines run.
			if x.Op == token.ARROW {
				found = true
				return false
			}
		}
		return true
	})

	return found
}

// declLocation returns the location of the variable.
func (t *funcTracer) declLocation(v types.Object) symbolic.StorageLocation {
	loc := t.fc.StableLocationForDecl(v)
	if _, ok := t.locals[v]; ok {
		if _, ok := t.escaped[v]; !ok {
			t.stable[loc] = struct{}{}
		}
	}
	return loc
}

// locationOf returns the location the expression designates or nil if it
// cannot be tracked.
func (t *funcTracer) locationOf(st *blockState, e ast.Expr) symbolic.StorageLocation {
	switch x := dataflow.IgnoreCFGOmittedNodes(e).(type) {
	case *ast.Ident:
		v, ok := t.info.ObjectOf(x).(*types.Var)
		if !ok || v.IsField() {
			return nil
		}
		return t.declLocation(v)

	case *ast.StarExpr:
		return t.evalPointer(st, x.X).Pointee()

	case *ast.SelectorExpr:
		sel := t.info.Selections[x]
		if sel == nil {
			// Qualified identifier.
			v, ok := t.info.Uses[x.Sel].(*types.Var)
			if !ok {
				return nil
			}
			return t.declLocation(v)
		}
		if sel.Kind() != types.FieldVal || len(sel.Index()) != 1 {
			return nil
		}

		var base symbolic.StorageLocation
		if sel.Indirect() {
			base = t.evalPointer(st, x.X).Pointee()
		} else {
			base = t.locationOf(st, x.X)
		}
		agg, ok := base.(*symbolic.AggregateLocation)
		if !ok {
			return nil
		}
		field, _ := sel.Obj().(*types.Var)
		return agg.Child(field)
	}

	return nil
}

// evalFor evaluates the expression as a value assigned to something of dst
// type. Nil means the value is not tracked.
func (t *funcTracer) evalFor(st *blockState, e ast.Expr, dst types.Type) symbolic.Value {
	src := t.info.TypeOf(e)
	if dst == nil {
		dst = src
	}
	if dst == nil {
		return nil
	}

	// A concrete value boxed into an interface makes a non-nil interface,
	// even if the value is a nil pointer.
	if types.IsInterface(dst) && src != nil && !types.IsInterface(src) && !t.isNil(e) {
		return t.notNull(t.fc.StableLocationForExpr(e, nil))
	}

	switch {
	case isBool(dst):
		return t.evalBool(st, e)
	case isNilable(dst):
		return t.evalPointer(st, e)
	default:
		return nil
	}
}

// evalBool evaluates a boolean expression. Anything it cannot reason about is
// a fresh atomic boolean.
func (t *funcTracer) evalBool(st *blockState, e ast.Expr) symbolic.BoolValue {
	e = dataflow.IgnoreCFGOmittedNodes(e)
	if tv, ok := t.info.Types[e]; ok && tv.Value != nil && tv.Value.Kind() == constant.Bool {
		return t.fc.BoolLiteral(constant.BoolVal(tv.Value))
	}

	switch x := e.(type) {
	case *ast.UnaryExpr:
		if x.Op == token.NOT {
			return t.fc.Negation(t.evalBool(st, x.X))
		}

	case *ast.BinaryExpr:
		switch x.Op {
		case token.LAND:
			return t.fc.Conjunction(t.evalBool(st, x.X), t.evalBool(st, x.Y))
		case token.LOR:
			return t.fc.Disjunction(t.evalBool(st, x.X), t.evalBool(st, x.Y))
		case token.EQL, token.NEQ:
			v := t.evalEquality(st, x)
			if v == nil {
				break
			}
			if x.Op == token.NEQ {
				return t.fc.Negation(v)
			}
			return v
		}

	case *ast.Ident, *ast.SelectorExpr, *ast.StarExpr:
		loc := t.locationOf(st, x)
		if loc == nil {
			break
		}
		if v, ok := st.env.get(loc).(symbolic.BoolValue); ok {
			return v
		}
		v := t.fc.CreateAtomicBool()
		st.env.set(loc, v)
		return v
	}

	return t.fc.CreateAtomicBool()
}

// evalEquality evaluates x == y for comparisons with nil and of booleans.
// Returns nil for other comparisons.
func (t *funcTracer) evalEquality(st *blockState, x *ast.BinaryExpr) symbolic.BoolValue {
	switch {
	case t.isNil(x.Y) && isNilable(t.info.TypeOf(x.X)):
		return t.evalPointer(st, x.X).IsNull()
	case t.isNil(x.X) && isNilable(t.info.TypeOf(x.Y)):
		return t.evalPointer(st, x.Y).IsNull()
	case isBool(t.info.TypeOf(x.X)) && isBool(t.info.TypeOf(x.Y)):
		return t.fc.Iff(t.evalBool(st, x.X), t.evalBool(st, x.Y))
	default:
		return nil
	}
}

// evalPointer evaluates an expression of a nilable type. The result always
// has its is_null property set.
func (t *funcTracer) evalPointer(st *blockState, e ast.Expr) *symbolic.PointerValue {
	e = dataflow.IgnoreCFGOmittedNodes(e)
	typ := t.info.TypeOf(e)
	if t.isNil(e) {
		return t.fc.NullPointerValue(pointeeType(typ))
	}

	switch x := e.(type) {
	case *ast.UnaryExpr:
		if x.Op != token.AND {
			break
		}

		inner := dataflow.IgnoreCFGOmittedNodes(x.X)
		if _, ok := inner.(*ast.CompositeLit); ok {
			return t.notNull(t.fc.StableLocationForExpr(inner, t.info.TypeOf(inner)))
		}
		if loc := t.locationOf(st, inner); loc != nil {
			return t.notNull(loc)
		}
		return t.notNull(t.fc.StableLocationForExpr(inner, t.info.TypeOf(inner)))

	case *ast.CallExpr:
		switch {
		case t.isBuiltin(x, "new"):
			return t.notNull(t.fc.StableLocationForExpr(x, pointeeType(typ)))
		case t.isBuiltin(x, "make"):
			return t.notNull(t.fc.StableLocationForExpr(x, nil))
		case t.info.Types[x.Fun].IsType() && len(x.Args) == 1 && isNilable(t.info.TypeOf(x.Args[0])):
			return t.evalPointer(st, x.Args[0])
		}

	case *ast.CompositeLit, *ast.FuncLit:
		return t.notNull(t.fc.StableLocationForExpr(x, nil))

	case *ast.Ident, *ast.SelectorExpr, *ast.StarExpr:
		loc := t.locationOf(st, x)
		if loc == nil {
			break
		}
		if p, ok := st.env.get(loc).(*symbolic.PointerValue); ok && p.IsNull() != nil {
			return p
		}
		p := t.unknownPointer(typ)
		st.env.set(loc, p)
		return p
	}

	return t.unknownPointer(typ)
}

func (t *funcTracer) notNull(pointee symbolic.StorageLocation) *symbolic.PointerValue {
	p := t.fc.CreatePointerValue(pointee)
	p.SetProperty(symbolic.PropertyIsNull, t.fc.BoolLiteral(false))
	return p
}

func (t *funcTracer) unknownPointer(typ types.Type) *symbolic.PointerValue {
	p := t.fc.CreatePointerValue(t.fc.StableLocationForType(pointeeType(typ)))
	p.SetProperty(symbolic.PropertyIsNull, t.fc.CreateAtomicBool())
	return p
}

// unknownValue returns a fresh value of a tracked type or nil.
func (t *funcTracer) unknownValue(typ types.Type) symbolic.Value {
	switch {
	case isBool(typ):
		return t.fc.CreateAtomicBool()
	case isNilable(typ):
		return t.unknownPointer(typ)
	default:
		return nil
	}
}

// zeroValue returns the zero value of a tracked type or nil.
func (t *funcTracer) zeroValue(typ types.Type) symbolic.Value {
	switch {
	case isBool(typ):
		return t.fc.BoolLiteral(false)
	case isNilable(typ):
		return t.fc.NullPointerValue(pointeeType(typ))
	default:
		return nil
	}
}

// scanDerefs checks every pointer dereference in the expression under the
// flow condition of the state. Right operands of && and || are checked under
// the condition that they are evaluated.
func (t *funcTracer) scanDerefs(st *blockState, e ast.Node) {
	if e == nil {
		return
	}

	ast.Inspect(e, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.FuncLit:
			return false

		case *ast.BinaryExpr:
			if x.Op != token.LAND && x.Op != token.LOR {
				return true
			}

			t.scanDerefs(st, x.X)
			cond := t.evalBool(st, x.X)
			if x.Op == token.LOR {
				cond = t.fc.Negation(cond)
			}
			rhs := &blockState{
				token: t.fc.ForkFlowCondition(st.token),
				env:   st.env,
			}
			t.fc.AddFlowConditionConstraint(rhs.token, cond)
			t.scanDerefs(rhs, x.Y)
			return false

		case *ast.StarExpr:
			if t.info.Types[x].IsType() {
				return false
			}
			t.scanDerefs(st, x.X)
			t.checkDeref(st, x.X, x.Pos())
			return false

		case *ast.SelectorExpr:
			sel := t.info.Selections[x]
			if sel == nil || sel.Kind() != types.FieldVal || !sel.Indirect() || len(sel.Index()) != 1 {
				return true
			}
			t.scanDerefs(st, x.X)
			t.checkDeref(st, x.X, x.Pos())
			return false
		}

		return true
	})
}

// checkDeref reports the dereference of a pointer that is nil on every path
// and learns that the pointer is not nil past this point.
func (t *funcTracer) checkDeref(st *blockState, ptr ast.Expr, pos token.Pos) {
	isNull := t.evalPointer(st, ptr).IsNull()
	if isNull == nil {
		return
	}

	point := t.point(st.token)
	if t.e.cfg.Checks.NilDereference && point.Implies(isNull).Holds() && point.Reachable() {
		t.report(t.trace, rules.NilDereference(), pos, point,
			fmt.Sprintf("%s is nil here", types.ExprString(ptr)))
	}

	t.learn(st, t.fc.Negation(isNull))
}

// learn adds a fact holding past the current point. Flow points published
// before keep their token, the state moves on to a fork of it.
func (t *funcTracer) learn(st *blockState, fact symbolic.BoolValue) {
	st.token = t.fc.ForkFlowCondition(st.token)
	t.fc.AddFlowConditionConstraint(st.token, fact)
}

func (t *funcTracer) isNil(e ast.Expr) bool {
	tv, ok := t.info.Types[dataflow.IgnoreCFGOmittedNodes(e)]
	return ok && tv.IsNil()
}

func (t *funcTracer) isBuiltin(call *ast.CallExpr, name string) bool {
	id, ok := dataflow.IgnoreCFGOmittedNodes(call.Fun).(*ast.Ident)
	if !ok {
		return false
	}
	b, ok := t.info.Uses[id].(*types.Builtin)
	return ok && b.Name() == name
}

func isBool(typ types.Type) bool {
	if typ == nil {
		return false
	}
	b, ok := typ.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsBoolean != 0
}

func isPointer(typ types.Type) bool {
	if typ == nil {
		return false
	}
	_, ok := typ.Underlying().(*types.Pointer)
	return ok
}

// isNilable checks if nil is a value of the type.
func isNilable(typ types.Type) bool {
	if typ == nil {
		return false
	}
	if _, ok := typ.(*types.TypeParam); ok {
		return false
	}

	switch t := typ.Underlying().(type) {
	case *types.Pointer, *types.Map, *types.Slice, *types.Chan, *types.Signature, *types.Interface:
		return true
	case *types.Basic:
		return t.Kind() == types.UntypedNil || t.Kind() == types.UnsafePointer
	default:
		return false
	}
}

// pointeeType returns the type of the storage a value of the given type
// refers to, nil when it is not a pointer.
func pointeeType(typ types.Type) types.Type {
	if typ == nil {
		return nil
	}
	if p, ok := typ.Underlying().(*types.Pointer); ok {
		return p.Elem()
	}
	return nil
}
