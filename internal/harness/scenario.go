package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/transpile"
)

// Scenario defines a conformance test scenario: a sequence of sources fed
// through the transpiler, with expected outcomes and trace assertions.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Idioms lists overlay idiom files layered onto the built-in table.
	// Paths are relative to the scenario file location.
	Idioms []string `yaml:"idioms,omitempty"`

	// Steps are transpiled in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and cache state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one source program and its expected outcome.
type Step struct {
	Source string        `yaml:"source"`
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
// Exactly one of Output or Error must be set.
type ExpectClause struct {
	// Output is the exact rendered Rust text.
	Output *string `yaml:"output,omitempty"`

	// Error is the expected diagnostic kind, e.g. "unsupported_identifier".
	Error string `yaml:"error,omitempty"`

	// Code, Line and Column further constrain an expected error when set.
	Code   string `yaml:"code,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	Column int    `yaml:"column,omitempty"`
}

// Assertion validates the trace or final cache state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Output is the expected output substring (trace_contains).
	Output string `yaml:"output,omitempty"`

	// Kinds is the expected statement kind order (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Kind is the statement kind to count (trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Cache is the cache outcome to count, "hit" or "miss" (trace_count).
	Cache string `yaml:"cache,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect holds expected cache totals: records, hits, statements (final_state).
	Expect map[string]int `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

var (
	errorKinds = map[string]bool{
		transpile.KindParse:                 true,
		transpile.KindUnsupportedStatement:  true,
		transpile.KindUnsupportedExpression: true,
		transpile.KindUnsupportedIdentifier: true,
	}
	statementKinds = map[string]bool{
		ir.KindFunctionCall: true,
		ir.KindListLiteral:  true,
		ir.KindLet:          true,
	}
	stateKeys = map[string]bool{
		"records":    true,
		"hits":       true,
		"statements": true,
	}
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Idiom overlay paths are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Idioms {
		if !filepath.IsAbs(p) {
			scenario.Idioms[i] = filepath.Join(base, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, p := range s.Idioms {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("idiom file not found: %s", p)
		}
	}

	for i, step := range s.Steps {
		if step.Expect == nil {
			continue
		}
		if err := validateExpect(i, step.Expect); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateExpect(index int, e *ExpectClause) error {
	switch {
	case e.Output != nil && e.Error != "":
		return fmt.Errorf("steps[%d].expect: output and error are mutually exclusive", index)
	case e.Output == nil && e.Error == "":
		return fmt.Errorf("steps[%d].expect: one of output or error is required", index)
	case e.Error != "" && !errorKinds[e.Error]:
		return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, e.Error)
	case e.Output != nil && (e.Code != "" || e.Line != 0 || e.Column != 0):
		return fmt.Errorf("steps[%d].expect: code, line and column apply only to errors", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Output == "" {
			return fmt.Errorf("assertions[%d]: output is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
		for _, k := range a.Kinds {
			if !statementKinds[k] {
				return fmt.Errorf("assertions[%d]: unknown statement kind %q", index, k)
			}
		}
	case AssertTraceCount:
		if (a.Kind == "") == (a.Cache == "") {
			return fmt.Errorf("assertions[%d]: exactly one of kind or cache is required for trace_count", index)
		}
		if a.Kind != "" && !statementKinds[a.Kind] {
			return fmt.Errorf("assertions[%d]: unknown statement kind %q", index, a.Kind)
		}
		if a.Cache != "" && a.Cache != CacheHit && a.Cache != CacheMiss {
			return fmt.Errorf("assertions[%d]: cache must be %q or %q", index, CacheHit, CacheMiss)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
		for k := range a.Expect {
			if !stateKeys[k] {
				return fmt.Errorf("assertions[%d]: unknown final_state key %q", index, k)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
