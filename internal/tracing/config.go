package tracing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sirkon/flowsense/internal/solver"
)

// Config of the analysis.
type Config struct {
	Solver   SolverConfig `yaml:"solver"`
	Checks   ChecksConfig `yaml:"checks"`
	NoReturn []NoReturn   `yaml:"no-return"`
	LogLevel logrus.Level `yaml:"log-level"`
}

// SolverConfig selects and tunes the decision procedure.
type SolverConfig struct {
	Kind     solver.Kind   `yaml:"kind"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxAtoms int           `yaml:"max-atoms"`
}

// ChecksConfig enables rule groups.
type ChecksConfig struct {
	RedundantConditions bool `yaml:"redundant-conditions"`
	NilDereference      bool `yaml:"nil-dereference"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Kind:     solver.KindGini,
			Timeout:  2 * time.Second,
			MaxAtoms: solver.DefaultMaxAtoms,
		},
		Checks: ChecksConfig{
			RedundantConditions: true,
			NilDereference:      true,
		},
		LogLevel: logrus.WarnLevel,
	}
}

// LoadConfig reads YAML configuration from the given file. Values missing in
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cfg, err := ParseConfig(file)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ParseConfig decodes YAML configuration. Unknown keys are errors.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if _, err := cfg.NewSolver(); err != nil {
		return nil, fmt.Errorf("check solver settings: %w", err)
	}

	return cfg, nil
}

// NewSolver creates a solver with configured settings.
func (c *Config) NewSolver() (solver.Solver, error) {
	s, err := solver.New(
		c.Solver.Kind,
		solver.WithTimeout(c.Solver.Timeout),
		solver.WithMaxAtoms(c.Solver.MaxAtoms),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s solver: %w", c.Solver.Kind, err)
	}

	return s, nil
}

var _ yaml.Unmarshaler = (*NoReturn)(nil)

// UnmarshalYAML accepts either a full mapping or a bare reference, which
// stands for a function exiting the program:
//
//	no-return:
//	  - '"github.com/acme/log".Fatal'
//	  - ref: '"github.com/acme/log".Logger.Panic'
//	    kind: panic
func (n *NoReturn) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var ref Reference
		if err := ref.UnmarshalText([]byte(value.Value)); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}

		*n = NoReturn{
			Ref:  ref,
			Kind: AbandonKindExit,
		}
		return nil
	}

	type plain NoReturn
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if p.Kind == AbandonKindInvalid {
		p.Kind = AbandonKindExit
	}

	*n = NoReturn(p)
	return nil
}
