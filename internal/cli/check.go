package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pyrs/internal/transpile"
)

// CheckResult holds check results.
type CheckResult struct {
	File        string                 `json:"file" yaml:"file"`
	Valid       bool                   `json:"valid" yaml:"valid"`
	Diagnostics []transpile.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.py|->",
		Short: "Report every unsupported construct without transpiling",
		Long: `Check a Python file against the idiom table without producing output.

Unlike transpile, check keeps going after the first unsupported statement
and reports all of them in source order. A syntax error is reported alone.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	tr, err := opts.Transpiler()
	if err != nil {
		return setupError(formatter, path, err)
	}
	source, err := readSource(cmd, path)
	if err != nil {
		return setupError(formatter, path, err)
	}

	if err := tr.Check(source); err != nil {
		return outputDiagnostics(formatter, "Check", path, err)
	}

	if formatter.Structured() {
		return formatter.Success(CheckResult{File: displayName(path), Valid: true})
	}
	formatter.Pass("%s: no unsupported constructs", displayName(path))
	return nil
}
