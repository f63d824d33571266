package dataflow

import (
	"fmt"
	"go/ast"
	"go/types"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/sirkon/flowsense/internal/solver"
	"github.com/sirkon/flowsense/internal/symbolic"
)

// Context owns objects that encompass the state of a program and stores
// context that is used during dataflow analysis of a single function.
//
// Context is not safe for concurrent use.
type Context struct {
	s     solver.Solver
	log   logrus.FieldLogger
	arena *symbolic.Arena

	// Assignments of locations to declarations and expressions. They are
	// global across basic blocks and make locations stable when the same
	// blocks are evaluated multiple times. Locations in scope of a given
	// block are tracked by the driving analysis.
	declToLoc map[types.Object]symbolic.StorageLocation
	exprToLoc map[ast.Expr]symbolic.StorageLocation

	thisPointeeLoc symbolic.StorageLocation

	// Null pointer values keyed by the canonical pointee type. The nil
	// pointee type is not a valid typeutil.Map key, so it is kept apart.
	nullPointerVals   typeutil.Map
	untypedNullPtrVal *symbolic.PointerValue

	trueVal  *symbolic.AtomicBool
	falseVal *symbolic.AtomicBool

	// Indices used to avoid recreating the same composite boolean values.
	conjunctionVals map[boolValuePair]*symbolic.Conjunction
	disjunctionVals map[boolValuePair]*symbolic.Disjunction
	negationVals    map[symbolic.BoolValue]*symbolic.Negation

	// Each flow condition is a token bound to the clause defining it:
	// FC <=> (C1 ∧ C2 ∧ ...). The clause is kept in flowConditionConstraints
	// and tokens it was forked or joined from in flowConditionDeps.
	flowConditionDeps        map[*symbolic.AtomicBool][]*symbolic.AtomicBool
	flowConditionConstraints map[*symbolic.AtomicBool]symbolic.BoolValue
}

// Option tunes a Context.
type Option func(c *Context)

// WithLogger sets a logger for solver queries.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Context) {
		c.log = log
	}
}

// New constructs a dataflow analysis context. The solver must not be nil.
func New(s solver.Solver, options ...Option) *Context {
	if s == nil {
		panic(fmt.Errorf("dataflow context requires a solver"))
	}

	c := &Context{
		s:                        s,
		arena:                    symbolic.NewArena(),
		declToLoc:                make(map[types.Object]symbolic.StorageLocation),
		exprToLoc:                make(map[ast.Expr]symbolic.StorageLocation),
		conjunctionVals:          make(map[boolValuePair]*symbolic.Conjunction),
		disjunctionVals:          make(map[boolValuePair]*symbolic.Disjunction),
		negationVals:             make(map[symbolic.BoolValue]*symbolic.Negation),
		flowConditionDeps:        make(map[*symbolic.AtomicBool][]*symbolic.AtomicBool),
		flowConditionConstraints: make(map[*symbolic.AtomicBool]symbolic.BoolValue),
	}
	for _, option := range options {
		option(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}

	c.trueVal = c.CreateAtomicBool()
	c.falseVal = c.CreateAtomicBool()
	return c
}

// Arena returns the owner of every location and value of this context.
func (c *Context) Arena() *symbolic.Arena {
	return c.arena
}

// CreateAtomicBool creates a fresh atomic boolean value.
func (c *Context) CreateAtomicBool() *symbolic.AtomicBool {
	return symbolic.Own(c.arena, symbolic.NewAtomicBool())
}

// CreatePointerValue creates a fresh pointer value to the given location.
func (c *Context) CreatePointerValue(pointee symbolic.StorageLocation) *symbolic.PointerValue {
	return symbolic.Own(c.arena, symbolic.NewPointerValue(pointee))
}
