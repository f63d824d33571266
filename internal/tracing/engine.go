package tracing

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/tools/go/cfg"

	"github.com/sirkon/flowsense/internal/dataflow"
	"github.com/sirkon/flowsense/internal/symbolic"
)

// Engine traces functions of a package, collects reports and flow
// conditions of every visited CFG node.
type Engine struct {
	cfg      *Config
	log      logrus.FieldLogger
	noReturn *knownNoReturnFuncs
	reports  *ReportEngine
	spans    *SpanIndex
}

// NewEngine creates an Engine. Nil config means the default one.
func NewEngine(cfg *Config, log logrus.FieldLogger) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Engine{
		cfg:      cfg,
		log:      log,
		noReturn: newKnownNoReturnFuncs(cfg.NoReturn),
		reports:  &ReportEngine{},
		spans:    NewSpanIndex(),
	}
}

// Trace analyzes a function declaration or a function literal. Functions
// nested into the given one are not traced, they need their own call.
func (e *Engine) Trace(fset *token.FileSet, info *types.Info, fn ast.Node) error {
	var (
		body *ast.BlockStmt
		sig  *types.Signature
		name string
	)
	switch f := fn.(type) {
	case *ast.FuncDecl:
		body = f.Body
		name = f.Name.Name
		if obj, ok := info.Defs[f.Name].(*types.Func); ok {
			sig, _ = obj.Type().(*types.Signature)
			name = obj.FullName()
		}
	case *ast.FuncLit:
		body = f.Body
		sig, _ = info.TypeOf(f).(*types.Signature)
		name = fmt.Sprintf("func literal at %s", fset.Position(f.Pos()))
	default:
		return fmt.Errorf("unsupported function node %T", fn)
	}
	if body == nil || sig == nil {
		return nil
	}

	s, err := e.cfg.NewSolver()
	if err != nil {
		return fmt.Errorf("set up solver for %s: %w", name, err)
	}

	log := e.log.WithField("func", name)
	t := &funcTracer{
		e:     e,
		info:  info,
		fc:    dataflow.New(s, dataflow.WithLogger(log.WithField("component", "dataflow"))),
		log:   log,
		body:  body,
		trace: e.reports.Phase(ReportTrace),
		check: e.reports.Phase(ReportCheck),

		locals:      map[types.Object]struct{}{},
		escaped:     map[types.Object]struct{}{},
		stable:      map[symbolic.StorageLocation]struct{}{},
		taggedCases: map[ast.Expr]struct{}{},
		rangeVars:   map[ast.Expr]struct{}{},
		exits:       map[*cfg.Block]*blockExit{},
		reported:    map[reportKey]struct{}{},
	}
	t.run(cfg.New(body, e.noReturn.mayReturn(info)), sig)

	return nil
}

// Reports returns reports collected so far.
func (e *Engine) Reports() []Report {
	return e.reports.Reports()
}

// LogSummary logs collected reports at debug level.
func (e *Engine) LogSummary(fset *token.FileSet) {
	e.reports.LogSummary(e.log, fset)
}

// Results returns flow conditions of traced code.
func (e *Engine) Results() *Results {
	return &Results{spans: e.spans}
}
