// Package tracing interprets control flow graphs of Go functions over the
// symbolic values of the dataflow package.
//
// Every CFG block gets a flow condition token describing paths reaching it.
// Branch conditions fork tokens, merging edges join them, loop heads are
// widened to a fresh unconstrained token. Boolean and pointer-like local
// variables are tracked in an environment mapping storage locations to
// symbolic values. Environments of merging edges are joined with fresh
// values bound to the incoming ones under the joined flow condition.
//
// Core components:
//
//   - Engine
//     Traces functions one by one, each with its own dataflow context and
//     solver. Collects reports and flow points of visited CFG nodes.
//
//   - Span index
//     Maps source spans of CFG nodes to flow points. Spans are nested or
//     disjoint, lookups return the innermost one.
//
//   - Report engine
//     Collects rule violations found while tracing and by post-trace checks
//     of recorded branch conditions.
//
// Calls and writes through pointers invalidate everything but local
// variables whose address is never taken. Calls known to never return end
// their blocks, code after them is not traced.
package tracing
