package main

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestFlowsense(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Analyzer, "conditions", "nilderef")
}

func TestFlowsenseConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowsense.yaml")
	const cfg = `
solver:
  kind: truth-table
checks:
  redundant-conditions: false
  nil-dereference: false
`
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := Analyzer.Flags.Set("config", path); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = Analyzer.Flags.Set("config", "")
	}()

	analysistest.Run(t, analysistest.TestData(), Analyzer, "quiet")
}

func TestFlowsenseBadConfig(t *testing.T) {
	if err := Analyzer.Flags.Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = Analyzer.Flags.Set("config", "")
	}()

	if _, err := loadConfig(); err == nil {
		t.Fatal("error was expected for a missing config file")
	}
}
