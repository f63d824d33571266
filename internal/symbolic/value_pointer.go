package symbolic

import (
	"strconv"
)

// PropertyIsNull names the boolean property telling whether a pointer-like
// value is nil.
const PropertyIsNull = "is_null"

// PointerValue references a pointee location.
type PointerValue struct {
	valueHeader
	pointee StorageLocation
}

// NewPointerValue creates an unowned pointer to the given location.
func NewPointerValue(pointee StorageLocation) *PointerValue {
	return &PointerValue{pointee: pointee}
}

// Kind returns KindPointer.
func (*PointerValue) Kind() Kind { return KindPointer }

// Pointee returns the location this pointer points to.
func (v *PointerValue) Pointee() StorageLocation { return v.pointee }

// IsNull returns the is_null property of the value if it was set.
func (v *PointerValue) IsNull() BoolValue {
	b, _ := v.Property(PropertyIsNull).(BoolValue)
	return b
}

func (v *PointerValue) header() *valueHeader {
	if v == nil {
		return nil
	}
	return &v.valueHeader
}

func (v *PointerValue) String() string {
	return "P" + strconv.Itoa(v.id) + "->" + v.pointee.String()
}
