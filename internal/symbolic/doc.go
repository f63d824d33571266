// Package symbolic defines the objects an analysis run is made of: storage
// locations, symbolic values and the Arena that owns them.
//
// Every location and value gets its identity from the Arena. Ownership assigns
// a stable, monotonically growing ID that the rest of the analyzer uses for
// ordering, hashing of unordered pairs and deterministic output. Objects are
// never released individually: the Arena lives exactly as long as the analysis
// context that created it.
//
// Values:
//
//   - AtomicBool
//     An opaque symbolic boolean variable. Used both as a formula leaf and as
//     a flow condition token.
//
//   - Conjunction, Disjunction, Negation
//     Composite boolean values. Operands are always values owned by the same
//     Arena, which makes the value graph acyclic by construction.
//
//   - PointerValue
//     A pointer to a storage location.
package symbolic
