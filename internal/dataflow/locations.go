package dataflow

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/sirkon/flowsense/internal/symbolic"
)

// IgnoreCFGOmittedNodes skips past nodes that go/cfg does not emit. These
// nodes are invisible to flow-sensitive analysis and are ignored as they will
// effectively not exist.
//
//   - ParenExpr: the CFG takes the operator precedence into account but
//     omits the node afterwards.
func IgnoreCFGOmittedNodes(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// ObjectFields returns direct fields of the given struct type in declaration
// order. Fields of embedded structs are reachable through the embedded field
// itself. Returns nil for non-struct types.
func ObjectFields(typ types.Type) []*types.Var {
	if typ == nil {
		return nil
	}

	st, ok := typ.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	fields := make([]*types.Var, st.NumFields())
	for i := range fields {
		fields[i] = st.Field(i)
	}
	return fields
}

// StableLocationForType returns a fresh storage location appropriate for the
// given type. Nothing is cached: every call creates a new location, unlike
// StableLocationForDecl and StableLocationForExpr. Struct types get an
// aggregate location with child locations created for every field eagerly.
func (c *Context) StableLocationForType(typ types.Type) symbolic.StorageLocation {
	if typ == nil {
		return symbolic.OwnLocation(c.arena, symbolic.NewScalarLocation(nil))
	}
	if _, ok := typ.Underlying().(*types.Struct); !ok {
		return symbolic.OwnLocation(c.arena, symbolic.NewScalarLocation(typ))
	}

	fields := ObjectFields(typ)
	children := make(map[*types.Var]symbolic.StorageLocation, len(fields))
	for _, field := range fields {
		children[field] = c.StableLocationForType(field.Type())
	}
	return symbolic.OwnLocation(c.arena, symbolic.NewAggregateLocation(typ, fields, children))
}

// StableLocationForDecl returns a stable storage location for the declared
// object. The location is created on the first request.
func (c *Context) StableLocationForDecl(obj types.Object) symbolic.StorageLocation {
	if loc := c.DeclLocation(obj); loc != nil {
		return loc
	}

	loc := c.StableLocationForType(obj.Type())
	c.SetDeclLocation(obj, loc)
	return loc
}

// StableLocationForExpr returns a stable storage location for the expression.
// Distinct expression nodes get distinct locations even if they look the same.
func (c *Context) StableLocationForExpr(e ast.Expr, typ types.Type) symbolic.StorageLocation {
	if loc := c.ExprLocation(e); loc != nil {
		return loc
	}

	loc := c.StableLocationForType(typ)
	c.SetExprLocation(e, loc)
	return loc
}

// SetDeclLocation assigns the location to the declared object. The object must
// not have an assigned location yet.
func (c *Context) SetDeclLocation(obj types.Object, loc symbolic.StorageLocation) {
	if obj == nil || loc == nil {
		panic(fmt.Errorf("assign location: nil declaration or location"))
	}
	if _, ok := c.declToLoc[obj]; ok {
		panic(fmt.Errorf("declaration %s has a storage location already", obj.Name()))
	}

	c.declToLoc[obj] = loc
}

// DeclLocation returns the location assigned to the declared object or nil.
func (c *Context) DeclLocation(obj types.Object) symbolic.StorageLocation {
	return c.declToLoc[obj]
}

// SetExprLocation assigns the location to the expression. Nodes omitted by the
// CFG are skipped, so (x) and x share the assignment. The expression must not
// have an assigned location yet.
func (c *Context) SetExprLocation(e ast.Expr, loc symbolic.StorageLocation) {
	if e == nil || loc == nil {
		panic(fmt.Errorf("assign location: nil expression or location"))
	}

	canon := IgnoreCFGOmittedNodes(e)
	if _, ok := c.exprToLoc[canon]; ok {
		panic(fmt.Errorf("expression at %d has a storage location already", canon.Pos()))
	}

	c.exprToLoc[canon] = loc
}

// ExprLocation returns the location assigned to the expression or nil.
func (c *Context) ExprLocation(e ast.Expr) symbolic.StorageLocation {
	return c.exprToLoc[IgnoreCFGOmittedNodes(e)]
}

// SetThisPointeeLocation assigns the location of the method receiver pointee.
// It can only be assigned once.
func (c *Context) SetThisPointeeLocation(loc symbolic.StorageLocation) {
	if loc == nil {
		panic(fmt.Errorf("assign receiver pointee location: nil location"))
	}
	if c.thisPointeeLoc != nil {
		panic(fmt.Errorf("receiver pointee has a storage location already"))
	}

	c.thisPointeeLoc = loc
}

// ThisPointeeLocation returns the location of the method receiver pointee or
// nil.
func (c *Context) ThisPointeeLocation() symbolic.StorageLocation {
	return c.thisPointeeLoc
}

// NullPointerValue returns a pointer value representing nil. Identical pointee
// types get the same value. The nil pointee type stands for an untyped nil.
//
// The value has its is_null property set to the true literal.
func (c *Context) NullPointerValue(pointee types.Type) *symbolic.PointerValue {
	if pointee == nil {
		if c.untypedNullPtrVal == nil {
			c.untypedNullPtrVal = c.newNullPointer(nil)
		}
		return c.untypedNullPtrVal
	}

	if v := c.nullPointerVals.At(pointee); v != nil {
		return v.(*symbolic.PointerValue)
	}

	v := c.newNullPointer(pointee)
	c.nullPointerVals.Set(pointee, v)
	return v
}

func (c *Context) newNullPointer(pointee types.Type) *symbolic.PointerValue {
	v := c.CreatePointerValue(c.StableLocationForType(pointee))
	v.SetProperty(symbolic.PropertyIsNull, c.trueVal)
	return v
}
