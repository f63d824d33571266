package tracing

import (
	"fmt"
	"go/token"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sirkon/flowsense/internal/rules"
)

// ReportEngine collects inconsistencies discovered during tracing.
type ReportEngine struct {
	mu      sync.Mutex
	reports []Report
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase    ReportPhase
	RuleCode rules.Rule
	Pos      token.Pos
	Message  string

	// Point is where the violation was proven.
	Point FlowPoint
}

// ReportPhase marks the tracing stage where a report was generated.
type ReportPhase int

const (
	_           ReportPhase = iota
	ReportTrace             // block interpretation
	ReportCheck             // post-trace checks of recorded conditions
)

func (p ReportPhase) String() string {
	switch p {
	case ReportTrace:
		return "trace"
	case ReportCheck:
		return "check"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// ReporterPhase binds a ReportEngine to a fixed phase.
// It is used during an entire analysis pass to record rule violations
// without specifying the phase repeatedly.
type ReporterPhase struct {
	parent *ReportEngine
	phase  ReportPhase
}

// Phase returns a pointer to a phase-bound reporter that automatically
// sets the given phase for all reports produced through it.
func (r *ReportEngine) Phase(p ReportPhase) *ReporterPhase {
	return &ReporterPhase{parent: r, phase: p}
}

// Report adds a new record to the reporter.
func (r *ReportEngine) Report(rep Report) {
	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()
}

// Report records a new rule violation under the bound phase. Empty message is
// replaced with the rule description.
func (rp *ReporterPhase) Report(rule rules.Rule, message string, pos token.Pos, point FlowPoint) {
	if message == "" {
		message = rule.Description()
	}
	rp.parent.Report(Report{
		Phase:    rp.phase,
		RuleCode: rule,
		Message:  message,
		Pos:      pos,
		Point:    point,
	})
}

// Reports returns a snapshot of all collected records.
func (r *ReportEngine) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// LogSummary logs all collected reports at debug level with flow conditions
// they were proven under.
func (r *ReportEngine) LogSummary(log logrus.FieldLogger, fset *token.FileSet) {
	for _, rep := range r.Reports() {
		pos := fset.Position(rep.Pos)
		entry := log.WithFields(logrus.Fields{
			"phase": rep.Phase.String(),
			"rule":  rep.RuleCode.String(),
			"pos":   fmt.Sprintf("%s:%d", pos.Filename, pos.Line),
		})
		if rep.Point.Context != nil {
			entry = entry.WithField("flow-condition", rep.Point.String())
		}
		entry.Debug(rep.Message)
	}
}
