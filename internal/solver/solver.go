// Package solver provides decision procedures answering whether a set of
// boolean constraints has a satisfying assignment of its atomic booleans.
package solver

import (
	"encoding"
	"fmt"
	"time"

	"github.com/sirkon/flowsense/internal/symbolic"
)

// Result is an outcome of a satisfiability check.
type Result int

const (
	_ Result = iota

	// Satisfiable means there exists an assignment of atomic booleans making
	// every constraint true.
	Satisfiable

	// Unsatisfiable means no such assignment exists.
	Unsatisfiable

	// TimedOut means the solver gave up before reaching either answer.
	TimedOut
)

var resultValueMap = map[Result]string{
	Satisfiable:   "satisfiable",
	Unsatisfiable: "unsatisfiable",
	TimedOut:      "timed-out",
}

func (r Result) String() string {
	v, ok := resultValueMap[r]
	if !ok {
		return fmt.Sprintf("invalid(%d)", r)
	}

	return v
}

// Solver checks satisfiability of a conjunction of constraints.
//
// An implementation must never report Satisfiable for an unsatisfiable set or
// vice versa. It may report TimedOut instead of either answer for resource
// reasons.
type Solver interface {
	Solve(constraints []symbolic.BoolValue) Result
}

// Kind selects a Solver implementation.
type Kind int

const (
	_ Kind = iota
	KindGini
	KindTruthTable
)

func (k Kind) String() string {
	v, err := k.MarshalText()
	if err != nil {
		return fmt.Sprintf("solver-kind-invalid(%d)", k)
	}

	return string(v)
}

var (
	_ encoding.TextUnmarshaler = (*Kind)(nil)
	_ encoding.TextMarshaler   = Kind(0)
)

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "gini":
		*k = KindGini
		return nil
	case "truth-table":
		*k = KindTruthTable
		return nil
	default:
		return fmt.Errorf("unknown kind %q of solver", b)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindGini:
		return []byte("gini"), nil
	case KindTruthTable:
		return []byte("truth-table"), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid Kind(%d)", k)
	}
}

// DefaultMaxAtoms limits the truth-table solver unless set explicitly.
const DefaultMaxAtoms = 20

// maxTruthTableAtoms is a hard cap for the truth-table enumeration.
const maxTruthTableAtoms = 30

type settings struct {
	timeout  time.Duration
	maxAtoms int
}

// Option tunes a solver created with New.
type Option func(s *settings) error

// WithTimeout limits the time of a single Solve call. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) error {
		if timeout < 0 {
			return fmt.Errorf("negative timeout %s", timeout)
		}
		s.timeout = timeout
		return nil
	}
}

// WithMaxAtoms limits the number of distinct atoms the truth-table solver
// agrees to enumerate.
func WithMaxAtoms(n int) Option {
	return func(s *settings) error {
		if n <= 0 || n > maxTruthTableAtoms {
			return fmt.Errorf("max atoms must be in [1, %d], got %d", maxTruthTableAtoms, n)
		}
		s.maxAtoms = n
		return nil
	}
}

// New creates a solver of the given kind.
func New(kind Kind, options ...Option) (Solver, error) {
	s := settings{
		maxAtoms: DefaultMaxAtoms,
	}
	for _, option := range options {
		if err := option(&s); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	switch kind {
	case KindGini:
		return NewGini(s.timeout), nil
	case KindTruthTable:
		return NewTruthTable(s.maxAtoms), nil
	default:
		return nil, fmt.Errorf("unsupported solver kind %s", kind)
	}
}
