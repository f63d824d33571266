package symbolic

import (
	"fmt"
	"sort"
)

// Arena is the exclusive owner of every location and value of an analysis
// run. It never frees anything.
type Arena struct {
	vals []Value
	locs []StorageLocation
	next int
}

// NewArena creates an empty Arena.
func NewArena() *Arena {
	return &Arena{}
}

// Own takes ownership of the value and returns it back for convenience.
//
// Panics if the value is nil, already has an owner or refers to operands or
// a pointee not owned by this arena.
func Own[T Value](a *Arena, v T) T {
	var iv Value = v
	if iv == nil || iv.header() == nil {
		panic(fmt.Errorf("take ownership of a nil value"))
	}

	h := iv.header()
	if h.owner != nil {
		panic(fmt.Errorf("value %s is already owned", iv))
	}
	if b, ok := iv.(BoolValue); ok {
		for _, op := range Operands(b) {
			if op == nil || op.header() == nil || op.header().owner != a {
				panic(fmt.Errorf("operand of %s value is not owned by the arena", iv.Kind()))
			}
		}
	}
	if p, ok := iv.(*PointerValue); ok {
		if p.pointee == nil || p.pointee.locHeader() == nil || p.pointee.locHeader().owner != a {
			panic(fmt.Errorf("pointee of a pointer value is not owned by the arena"))
		}
	}

	a.next++
	h.id = a.next
	h.owner = a
	a.vals = append(a.vals, iv)
	return v
}

// OwnLocation takes ownership of the location and returns it back for
// convenience.
//
// Panics if the location is nil or already has an owner.
func OwnLocation[T StorageLocation](a *Arena, l T) T {
	var il StorageLocation = l
	if il == nil || il.locHeader() == nil {
		panic(fmt.Errorf("take ownership of a nil location"))
	}

	h := il.locHeader()
	if h.owner != nil {
		panic(fmt.Errorf("location %s is already owned", il))
	}

	a.next++
	h.id = a.next
	h.owner = a
	a.locs = append(a.locs, il)
	return l
}

// Values returns the number of owned values.
func (a *Arena) Values() int {
	return len(a.vals)
}

// Locations returns the number of owned locations.
func (a *Arena) Locations() int {
	return len(a.locs)
}

// ValueByID returns the owned value with the given ID or nil.
func (a *Arena) ValueByID(id int) Value {
	i := sort.Search(len(a.vals), func(i int) bool {
		return a.vals[i].ID() >= id
	})
	if i < len(a.vals) && a.vals[i].ID() == id {
		return a.vals[i]
	}

	return nil
}

type identified interface {
	ID() int
}

func sortByID[T identified](items []T) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID() < items[j].ID()
	})
}

// SortByID orders values by their arena IDs.
func SortByID[T Value](vals []T) {
	sortByID(vals)
}
