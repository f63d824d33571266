package rules

import "fmt"

// Rule represents a flowsense rule code (FS-series).
type Rule int

const (
	ruleInvalid Rule = iota

	FS010ConditionAlwaysTrue
	FS011ConditionAlwaysFalse
	FS020NilDereference
)

// String returns the canonical code and short name of the rule.
// Example: "FS020: NilDereference"
func (r Rule) String() string {
	switch r {
	case FS010ConditionAlwaysTrue:
		return "FS010: ConditionAlwaysTrue"
	case FS011ConditionAlwaysFalse:
		return "FS011: ConditionAlwaysFalse"
	case FS020NilDereference:
		return "FS020: NilDereference"
	default:
		return fmt.Sprintf("rule-unknown(%d)", r)
	}
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	switch r {
	case FS010ConditionAlwaysTrue:
		return "Condition is always true on every path reaching it."
	case FS011ConditionAlwaysFalse:
		return "Condition is always false on every path reaching it."
	case FS020NilDereference:
		return "Pointer is nil on every path reaching its dereference."
	default:
		return fmt.Sprintf("rule-unknown(%d)", r)
	}
}

// Code returns the rule code alone, e.g. "FS010".
func (r Rule) Code() string {
	if r <= ruleInvalid || r > FS020NilDereference {
		return ""
	}
	s := r.String()
	return s[:len("FS000")]
}

// Canonical constructors.

func ConditionAlwaysTrue() Rule  { return FS010ConditionAlwaysTrue }
func ConditionAlwaysFalse() Rule { return FS011ConditionAlwaysFalse }
func NilDereference() Rule       { return FS020NilDereference }
