package main

import (
	"fmt"
	"go/ast"
	"os"
	"reflect"

	"github.com/sirupsen/logrus"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/analysis/singlechecker"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/flowsense/internal/tracing"
)

const doc = `flowsense reports branch conditions having the same value on every path
reaching them and dereferences of pointers that are nil on every path.`

// Analyzer is the main entry point for the linter
var Analyzer = &analysis.Analyzer{
	Name:       "flowsense",
	Doc:        doc,
	Requires:   []*analysis.Analyzer{inspect.Analyzer},
	Run:        run,
	ResultType: reflect.TypeOf((*tracing.Results)(nil)),
}

var configPath string

func init() {
	Analyzer.Flags.StringVar(&configPath, "config", "", "path to YAML configuration file")
}

func main() {
	singlechecker.Main(Analyzer)
}

func run(pass *analysis.Pass) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg)
	engine := tracing.NewEngine(cfg, log.WithField("package", pass.Pkg.Path()))

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.FuncLit)(nil),
	}

	// Preorder visits enclosing functions first, spans of their nodes must
	// be registered before spans of nested literals.
	var traceErr error
	pector.Preorder(nodeFilter, func(node ast.Node) {
		if traceErr != nil {
			return
		}
		if err := engine.Trace(pass.Fset, pass.TypesInfo, node); err != nil {
			traceErr = fmt.Errorf("trace function at %s: %w", pass.Fset.Position(node.Pos()), err)
		}
	})
	if traceErr != nil {
		return nil, traceErr
	}

	for _, rep := range engine.Reports() {
		pass.Report(analysis.Diagnostic{
			Pos:      rep.Pos,
			Category: rep.RuleCode.Code(),
			Message:  fmt.Sprintf("%s: %s", rep.RuleCode.Code(), rep.Message),
		})
	}
	engine.LogSummary(pass.Fset)

	return engine.Results(), nil
}

func loadConfig() (*tracing.Config, error) {
	if configPath == "" {
		return tracing.DefaultConfig(), nil
	}

	cfg, err := tracing.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *tracing.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	return log
}
