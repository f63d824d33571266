package tracing

import (
	"fmt"
	"go/ast"
	"go/types"
	"maps"

	"golang.org/x/tools/go/types/typeutil"
)

// AbandonKind describes how a call abandons execution of the current
// function.
type AbandonKind int

const (
	AbandonKindInvalid AbandonKind = iota

	// AbandonKindPanic unwinds the stack, deferred calls run and can recover.
	AbandonKindPanic

	// AbandonKindGoexit stops the current goroutine after deferred calls.
	AbandonKindGoexit

	// AbandonKindExit terminates the program right away.
	AbandonKindExit
)

var abandonKindValueMap = map[AbandonKind]string{
	AbandonKindPanic:  "panic",
	AbandonKindGoexit: "goexit",
	AbandonKindExit:   "exit",
}

func (k AbandonKind) String() string {
	v, ok := abandonKindValueMap[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", k)
	}

	return v
}

// UnmarshalText for setting values with configs, CLI, etc.
func (k *AbandonKind) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for key, v := range abandonKindValueMap {
		if v == text {
			*k = key
			return nil
		}
	}

	return fmt.Errorf("unknown execution abandon kind %q", text)
}

// NoReturn describes a function that never returns to its caller.
type NoReturn struct {
	Ref  Reference   `yaml:"ref"`
	Kind AbandonKind `yaml:"kind"`
}

// Some funcs are known for stopping current func execution or even stopping
// the whole program. Code after their calls is unreachable and flow
// conditions must not carry anything from there.
type knownNoReturnFuncs struct {
	known map[Reference]AbandonKind
}

func newKnownNoReturnFuncs(custom []NoReturn) *knownNoReturnFuncs {
	predefined := map[Reference]AbandonKind{
		// Stdlib.
		{Package: "builtin", Name: "panic"}:                   AbandonKindPanic,
		{Package: "os", Name: "Exit"}:                         AbandonKindExit,
		{Package: "runtime", Name: "Goexit"}:                  AbandonKindGoexit,
		{Package: "log", Name: "Fatal"}:                       AbandonKindExit,
		{Package: "log", Name: "Fatalf"}:                      AbandonKindExit,
		{Package: "log", Name: "Fatalln"}:                     AbandonKindExit,
		{Package: "log", Name: "Panic"}:                       AbandonKindPanic,
		{Package: "log", Name: "Panicf"}:                      AbandonKindPanic,
		{Package: "log", Name: "Panicln"}:                     AbandonKindPanic,
		{Package: "log", Type: "Logger", Name: "Fatal"}:       AbandonKindExit,
		{Package: "log", Type: "Logger", Name: "Fatalf"}:      AbandonKindExit,
		{Package: "log", Type: "Logger", Name: "Fatalln"}:     AbandonKindExit,
		{Package: "log", Type: "Logger", Name: "Panic"}:       AbandonKindPanic,
		{Package: "log", Type: "Logger", Name: "Panicf"}:      AbandonKindPanic,
		{Package: "log", Type: "Logger", Name: "Panicln"}:     AbandonKindPanic,
		{Package: "testing", Type: "common", Name: "FailNow"}: AbandonKindGoexit,
		{Package: "testing", Type: "common", Name: "Fatal"}:   AbandonKindGoexit,
		{Package: "testing", Type: "common", Name: "Fatalf"}:  AbandonKindGoexit,
		{Package: "testing", Type: "common", Name: "SkipNow"}: AbandonKindGoexit,
		{Package: "testing", Type: "common", Name: "Skip"}:    AbandonKindGoexit,
		{Package: "testing", Type: "common", Name: "Skipf"}:   AbandonKindGoexit,

		// Logrus.
		{Package: "github.com/sirupsen/logrus", Name: "Fatal"}:                  AbandonKindExit,
		{Package: "github.com/sirupsen/logrus", Name: "Fatalf"}:                 AbandonKindExit,
		{Package: "github.com/sirupsen/logrus", Name: "Fatalln"}:                AbandonKindExit,
		{Package: "github.com/sirupsen/logrus", Name: "Panic"}:                  AbandonKindPanic,
		{Package: "github.com/sirupsen/logrus", Name: "Panicf"}:                 AbandonKindPanic,
		{Package: "github.com/sirupsen/logrus", Name: "Panicln"}:                AbandonKindPanic,
		{Package: "github.com/sirupsen/logrus", Type: "Logger", Name: "Fatal"}:  AbandonKindExit,
		{Package: "github.com/sirupsen/logrus", Type: "Logger", Name: "Fatalf"}: AbandonKindExit,
		{Package: "github.com/sirupsen/logrus", Type: "Logger", Name: "Panic"}:  AbandonKindPanic,
		{Package: "github.com/sirupsen/logrus", Type: "Logger", Name: "Panicf"}: AbandonKindPanic,
		{Package: "github.com/sirupsen/logrus", Type: "Entry", Name: "Fatal"}:   AbandonKindExit,
		{Package: "github.com/sirupsen/logrus", Type: "Entry", Name: "Fatalf"}:  AbandonKindExit,
		{Package: "github.com/sirupsen/logrus", Type: "Entry", Name: "Panic"}:   AbandonKindPanic,
		{Package: "github.com/sirupsen/logrus", Type: "Entry", Name: "Panicf"}:  AbandonKindPanic,

		// Zap.
		{Package: "go.uber.org/zap", Type: "Logger", Name: "DPanic"}: AbandonKindPanic,
		{Package: "go.uber.org/zap", Type: "Logger", Name: "Panic"}:  AbandonKindPanic,
		{Package: "go.uber.org/zap", Type: "Logger", Name: "Fatal"}:  AbandonKindExit,
	}

	known := maps.Clone(predefined)
	for _, c := range custom {
		kind := c.Kind
		if kind == AbandonKindInvalid {
			kind = AbandonKindExit
		}
		known[c.Ref] = kind
	}

	return &knownNoReturnFuncs{
		known: known,
	}
}

// lookup returns the way the call abandons execution if it is known to
// never return.
func (f *knownNoReturnFuncs) lookup(info *types.Info, call *ast.CallExpr) (AbandonKind, bool) {
	ref, ok := referenceOf(typeutil.Callee(info, call))
	if !ok {
		return AbandonKindInvalid, false
	}

	kind, ok := f.known[ref]
	return kind, ok
}

// mayReturn builds a predicate for go/cfg telling calls that can return.
func (f *knownNoReturnFuncs) mayReturn(info *types.Info) func(call *ast.CallExpr) bool {
	return func(call *ast.CallExpr) bool {
		_, ok := f.lookup(info, call)
		return !ok
	}
}
