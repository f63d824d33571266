package tracing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirkon/flowsense/internal/solver"
)

func TestParseConfig(t *testing.T) {
	const src = `
solver:
  kind: truth-table
  timeout: 500ms
  max-atoms: 12
checks:
  redundant-conditions: false
no-return:
  - '"github.com/acme/log".Fatal'
  - ref: '"github.com/acme/log".Logger.Panic'
    kind: panic
log-level: debug
`

	cfg, err := ParseConfig(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, solver.KindTruthTable, cfg.Solver.Kind)
	assert.Equal(t, 500*time.Millisecond, cfg.Solver.Timeout)
	assert.Equal(t, 12, cfg.Solver.MaxAtoms)
	assert.False(t, cfg.Checks.RedundantConditions)
	assert.True(t, cfg.Checks.NilDereference, "missing keys keep defaults")
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, []NoReturn{
		{
			Ref:  Reference{Package: "github.com/acme/log", Name: "Fatal"},
			Kind: AbandonKindExit,
		},
		{
			Ref:  Reference{Package: "github.com/acme/log", Type: "Logger", Name: "Panic"},
			Kind: AbandonKindPanic,
		},
	}, cfg.NoReturn)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "unknown key",
			src:  "solver:\n  kind: gini\n  depth: 3\n",
		},
		{
			name: "unknown solver",
			src:  "solver:\n  kind: minisat\n",
		},
		{
			name: "negative timeout",
			src:  "solver:\n  timeout: -1s\n",
		},
		{
			name: "bad reference",
			src:  "no-return:\n  - log.Fatal\n",
		},
		{
			name: "bad kind",
			src:  "no-return:\n  - ref: '\"log\".Fatal'\n    kind: explode\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(tt.src))
			require.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowsense.yaml")
	require.NoError(t, os.WriteFile(path, []byte("checks:\n  nil-dereference: false\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Checks.NilDereference)
	assert.True(t, cfg.Checks.RedundantConditions)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestReferenceText(t *testing.T) {
	tests := []struct {
		text string
		want Reference
	}{
		{
			text: `"os".Exit`,
			want: Reference{Package: "os", Name: "Exit"},
		},
		{
			text: `"github.com/sirupsen/logrus".Entry.Fatal`,
			want: Reference{Package: "github.com/sirupsen/logrus", Type: "Entry", Name: "Fatal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var ref Reference
			require.NoError(t, ref.UnmarshalText([]byte(tt.text)))
			require.Equal(t, tt.want, ref)

			text, err := ref.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.text, string(text))
			assert.Equal(t, tt.text, ref.String())
		})
	}

	for _, bad := range []string{"", "os.Exit", `"os"`, `"os".`, `"os".a.b.c`, `"".Exit`, `"os".1x`} {
		var ref Reference
		assert.Error(t, ref.UnmarshalText([]byte(bad)), bad)
	}
}
