package tracing

import (
	"go/token"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sirkon/flowsense/internal/rules"
)

func TestReporter_ReportPhases(t *testing.T) {
	tests := []struct {
		name    string
		phase   ReportPhase
		rule    rules.Rule
		message string
		want    string
		pos     token.Pos
	}{
		{
			name:    "trace-phase nil dereference",
			phase:   ReportTrace,
			rule:    rules.NilDereference(),
			message: "p is nil here",
			want:    "p is nil here",
			pos:     10,
		},
		{
			name:    "check-phase always true",
			phase:   ReportCheck,
			rule:    rules.ConditionAlwaysTrue(),
			message: "condition x is always true",
			want:    "condition x is always true",
			pos:     20,
		},
		{
			name:  "check-phase description fallback",
			phase: ReportCheck,
			rule:  rules.ConditionAlwaysFalse(),
			want:  rules.ConditionAlwaysFalse().Description(),
			pos:   42,
		},
	}

	var r ReportEngine

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase := r.Phase(tt.phase)
			phase.Report(tt.rule, tt.message, tt.pos, FlowPoint{})
		})
	}

	reps := r.Reports()
	if len(reps) != len(tests) {
		t.Fatalf("expected %d reports, got %d", len(tests), len(reps))
	}

	for i, rep := range reps {
		want := tests[i]
		if rep.Phase != want.phase {
			t.Errorf("[%s] phase mismatch: got %v, want %v", want.name, rep.Phase, want.phase)
		}
		if rep.RuleCode != want.rule {
			t.Errorf("[%s] rule mismatch: got %v, want %v", want.name, rep.RuleCode, want.rule)
		}
		if rep.Message != want.want {
			t.Errorf("[%s] message mismatch: got %q, want %q", want.name, rep.Message, want.want)
		}
		if rep.Pos != want.pos {
			t.Errorf("[%s] position mismatch: got %d, want %d", want.name, rep.Pos, want.pos)
		}
	}
}

func TestReporter_ConcurrencySafety(t *testing.T) {
	const n = 500
	var (
		r  ReportEngine
		wg sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Report(Report{
				Phase:    ReportTrace,
				RuleCode: rules.NilDereference(),
				Message:  "parallel add",
				Pos:      token.Pos(i),
			})
		}(i)
	}
	wg.Wait()

	reps := r.Reports()
	if len(reps) != n {
		t.Fatalf("expected %d reports, got %d", n, len(reps))
	}
	reps[0].Message = "changed"
	reps2 := r.Reports()
	if reps2[0].Message == "changed" {
		t.Fatalf("Reports() returned shared slice, expected copy")
	}
}

func TestReporter_LogSummary(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("main.go", -1, 100)
	file.SetLines([]int{0, 10, 20})

	var r ReportEngine
	r.Phase(ReportCheck).Report(rules.ConditionAlwaysTrue(), "condition ok is always true", file.Pos(12), FlowPoint{})

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r.LogSummary(logger, fset)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("summary entry was expected")
	}
	if entry.Message != "condition ok is always true" {
		t.Errorf("message mismatch: got %q", entry.Message)
	}
	if entry.Data["pos"] != "main.go:2" {
		t.Errorf("position mismatch: got %v", entry.Data["pos"])
	}
	if entry.Data["rule"] != "FS010: ConditionAlwaysTrue" {
		t.Errorf("rule mismatch: got %v", entry.Data["rule"])
	}
	if _, ok := entry.Data["flow-condition"]; ok {
		t.Error("no flow condition was expected without a context")
	}
}
