package symbolic

import (
	"go/types"
	"strconv"
)

// StorageLocation is an abstract memory location of a variable, a field or
// a temporary.
type StorageLocation interface {
	// ID returns the identity assigned by the owning Arena.
	ID() int

	// Type returns the type of the location. It is nil for untyped
	// locations such as the pointee of an untyped nil.
	Type() types.Type

	String() string

	locHeader() *locationHeader
}

type locationHeader struct {
	id    int
	owner *Arena
	typ   types.Type
}

func (h *locationHeader) ID() int {
	return h.id
}

func (h *locationHeader) Type() types.Type {
	return h.typ
}

// ScalarLocation is a location of a value without addressable sub-parts.
type ScalarLocation struct {
	locationHeader
}

// NewScalarLocation creates an unowned scalar location of the given type.
func NewScalarLocation(typ types.Type) *ScalarLocation {
	return &ScalarLocation{locationHeader: locationHeader{typ: typ}}
}

func (l *ScalarLocation) locHeader() *locationHeader {
	if l == nil {
		return nil
	}
	return &l.locationHeader
}

func (l *ScalarLocation) String() string {
	return "L" + strconv.Itoa(l.id)
}

// AggregateLocation is a location of a struct value. It has a child location
// for every field.
type AggregateLocation struct {
	locationHeader
	fields   []*types.Var
	children map[*types.Var]StorageLocation
}

// NewAggregateLocation creates an unowned aggregate location. Fields are kept in
// the given order.
func NewAggregateLocation(typ types.Type, fields []*types.Var, children map[*types.Var]StorageLocation) *AggregateLocation {
	return &AggregateLocation{
		locationHeader: locationHeader{typ: typ},
		fields:         fields,
		children:       children,
	}
}

// Child returns the location of the given field or nil if the field does not
// belong to the aggregate.
func (l *AggregateLocation) Child(field *types.Var) StorageLocation {
	return l.children[field]
}

// Fields returns fields of the aggregate in declaration order.
func (l *AggregateLocation) Fields() []*types.Var {
	return l.fields
}

func (l *AggregateLocation) locHeader() *locationHeader {
	if l == nil {
		return nil
	}
	return &l.locationHeader
}

func (l *AggregateLocation) String() string {
	return "A" + strconv.Itoa(l.id)
}
