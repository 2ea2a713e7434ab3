package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: test_scenario
description: "Test scenario for validation"
steps:
  - source: 'print("hi")'
    expect:
      output: 'println!("hi")'
  - source: 'foo()'
    expect:
      error: unsupported_identifier
      code: E212
assertions:
  - type: trace_contains
    output: println!
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	require.Len(t, scenario.Steps, 2)
	require.NotNil(t, scenario.Steps[0].Expect.Output)
	assert.Equal(t, `println!("hi")`, *scenario.Steps[0].Expect.Output)
	assert.Equal(t, "unsupported_identifier", scenario.Steps[1].Expect.Error)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_EmptyOutput(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: empty
description: "Comment-only source renders nothing"
steps:
  - source: "# nothing here\n"
    expect:
      output: ""
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	require.NotNil(t, scenario.Steps[0].Expect.Output)
	assert.Equal(t, "", *scenario.Steps[0].Expect.Output)
}

func TestLoadScenario_ResolvesIdiomPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte("idioms: {}\n"), 0644))
	path := writeScenario(t, dir, `
name: overlay
description: "Relative idiom path"
idioms: [extra.yaml]
steps:
  - source: 'print("x")'
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "extra.yaml")}, scenario.Idioms)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: "Misspelled key"
steps:
  - source: 'print("x")'
assertion:
  - type: trace_contains
    output: x
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nsteps:\n  - source: x\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nsteps:\n  - source: x\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			content: "name: n\ndescription: d\n",
			wantErr: "steps list is required",
		},
		{
			name:    "missing idiom file",
			content: "name: n\ndescription: d\nidioms: [nope.yaml]\nsteps:\n  - source: x\n",
			wantErr: "idiom file not found",
		},
		{
			name:    "output and error",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\n    expect: {output: a, error: parse}\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "empty expect",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\n    expect: {}\n",
			wantErr: "one of output or error is required",
		},
		{
			name:    "unknown error kind",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\n    expect: {error: oops}\n",
			wantErr: `unknown error kind "oops"`,
		},
		{
			name:    "code on output",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\n    expect: {output: a, code: E201}\n",
			wantErr: "apply only to errors",
		},
		{
			name:    "missing assertion type",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\nassertions:\n  - output: x\n",
			wantErr: "type is required",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\nassertions:\n  - type: trace_magic\n",
			wantErr: `unknown assertion type "trace_magic"`,
		},
		{
			name:    "trace_contains without output",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\nassertions:\n  - type: trace_contains\n",
			wantErr: "output is required for trace_contains",
		},
		{
			name:    "trace_order unknown kind",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\nassertions:\n  - type: trace_order\n    kinds: [loop]\n",
			wantErr: `unknown statement kind "loop"`,
		},
		{
			name:    "trace_count with both",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\nassertions:\n  - type: trace_count\n    kind: let\n    cache: hit\n",
			wantErr: "exactly one of kind or cache",
		},
		{
			name:    "trace_count bad cache",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\nassertions:\n  - type: trace_count\n    cache: warm\n",
			wantErr: "cache must be",
		},
		{
			name:    "final_state unknown key",
			content: "name: n\ndescription: d\nsteps:\n  - source: x\nassertions:\n  - type: final_state\n    expect: {rows: 1}\n",
			wantErr: `unknown final_state key "rows"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
