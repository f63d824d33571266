package symbolic

import (
	"fmt"
	"sort"
)

// Kind discriminates values.
type Kind int

const (
	KindInvalid Kind = iota
	KindAtomicBool
	KindConjunction
	KindDisjunction
	KindNegation
	KindPointer
)

var kindValueMap = map[Kind]string{
	KindAtomicBool:  "atomic-bool",
	KindConjunction: "conjunction",
	KindDisjunction: "disjunction",
	KindNegation:    "negation",
	KindPointer:     "pointer",
}

func (k Kind) String() string {
	v, ok := kindValueMap[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", k)
	}

	return v
}

// Value is a symbolic value computed during analysis.
type Value interface {
	// ID returns the identity assigned by the owning Arena. Zero means
	// the value has no owner yet.
	ID() int

	// Kind returns the variant of the value.
	Kind() Kind

	// Property returns the value bound to the named property or nil.
	Property(name string) Value

	// SetProperty binds a value to the named property.
	SetProperty(name string, v Value)

	String() string

	header() *valueHeader
}

// BoolValue is a Value of one of boolean kinds.
type BoolValue interface {
	Value
	isBool()
}

type valueHeader struct {
	id    int
	owner *Arena
	props map[string]Value
}

func (h *valueHeader) ID() int {
	return h.id
}

func (h *valueHeader) Property(name string) Value {
	return h.props[name]
}

func (h *valueHeader) SetProperty(name string, v Value) {
	if h.props == nil {
		h.props = make(map[string]Value)
	}
	h.props[name] = v
}

// PropertyNames returns the names of properties set on the value, sorted.
func PropertyNames(v Value) []string {
	h := v.header()
	names := make([]string, 0, len(h.props))
	for name := range h.props {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// IsBoolKind checks if the kind belongs to a boolean value.
func IsBoolKind(k Kind) bool {
	switch k {
	case KindAtomicBool, KindConjunction, KindDisjunction, KindNegation:
		return true
	default:
		return false
	}
}
