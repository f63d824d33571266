// Package rules defines the canonical FS-series rule codes reported by
// flowsense.
//
// Rule codes follow the format "FS<NNN>: <Name>". Identifiers are stable,
// never renumber existing codes. They are grouped by functional area:
//
//	000–019  Redundant conditions
//	020–039  Nil pointer usage
//
// Example:
//
//	rules.FS020NilDereference.String()      → "FS020: NilDereference"
//	rules.FS020NilDereference.Description() → "Pointer is nil on every path reaching its dereference."
package rules
