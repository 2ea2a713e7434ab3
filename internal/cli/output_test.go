package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: FormatJSON, Writer: buf}

	require.NoError(t, f.Success(map[string]int{"statements": 2}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Contains(t, buf.String(), "\n  \"status\"")
}

func TestOutputFormatter_ErrorYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: FormatYAML, Writer: buf}

	require.NoError(t, f.Error(ErrCodeNotFound, "source not found: x.py", nil))

	var resp CLIResponse
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "source not found: x.py", resp.Error.Message)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: FormatText, Writer: buf, Verbose: true}

	require.NoError(t, f.Error(ErrCodeGeneric, "boom", "more"))
	assert.Equal(t, "Error [E001]: boom\nDetails: more\n", buf.String())
}

func TestOutputFormatter_PassFail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: FormatText, Writer: buf}

	f.Pass("ok %d", 1)
	f.Fail("bad %s", "x")
	assert.Equal(t, "✓ ok 1\n✗ bad x\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	f := &OutputFormatter{Format: FormatJSON, Writer: out, ErrWriter: errOut}
	f.VerboseLog("hidden")
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 1)
	assert.Equal(t, "shown 1\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestOutputFormatter_Structured(t *testing.T) {
	assert.False(t, (&OutputFormatter{Format: FormatText}).Structured())
	assert.True(t, (&OutputFormatter{Format: FormatJSON}).Structured())
	assert.True(t, (&OutputFormatter{Format: FormatYAML}).Structured())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("x"), ExitFailure},
		{"exit failure", NewExitError(ExitFailure, "x"), ExitFailure},
		{"command error", NewExitError(ExitCommandError, "x"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "x", errors.New("y"))), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "writing", inner)
	assert.Equal(t, "writing: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestOutputFormatter_ColorJSON(t *testing.T) {
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = true })

	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: FormatJSON, Writer: buf}
	require.NoError(t, f.Success(map[string]int{"statements": 2}))

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "statements")
}
