// Package dataflow provides the state shared by a flow-sensitive analysis of
// a single function.
//
// The Context owns every storage location and value created during the
// analysis, keeps them stable when the same code is evaluated repeatedly,
// builds deduplicated boolean formulas, and tracks flow conditions. A flow
// condition is an atomic boolean token standing for the path constraints
// that hold at a program point. Tokens are forked at branches and joined at
// merge points, and queries about them are answered with a solver.Solver.
package dataflow
