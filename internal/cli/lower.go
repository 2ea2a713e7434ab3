package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrs/internal/ir"
)

// LowerResult is the IR dump of a program.
type LowerResult struct {
	File        string    `json:"file" yaml:"file"`
	ProgramHash string    `json:"program_hash" yaml:"program_hash"`
	Statements  []ir.Node `json:"statements" yaml:"statements"`
}

// NewLowerCommand creates the lower command.
func NewLowerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lower <file.py|->",
		Short: "Print the IR a Python file lowers to",
		Long: `Parse and lower a Python file, printing the IR instead of Rust.

Text output is one s-expression per statement; json and yaml output the
full node tree with the program fingerprint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLower(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	tr, err := opts.Transpiler()
	if err != nil {
		return setupError(formatter, path, err)
	}
	source, err := readSource(cmd, path)
	if err != nil {
		return setupError(formatter, path, err)
	}

	stmts, err := tr.Lower(source)
	if err != nil {
		return outputDiagnostics(formatter, "Lowering", path, err)
	}
	hash, err := ir.Fingerprint(stmts)
	if err != nil {
		return outputDiagnostics(formatter, "Lowering", path, err)
	}

	nodes := ir.DumpAll(stmts)
	if formatter.Structured() {
		return formatter.Success(LowerResult{
			File:        displayName(path),
			ProgramHash: hash,
			Statements:  nodes,
		})
	}

	for _, n := range nodes {
		fmt.Fprintln(formatter.Writer, n.String())
	}
	formatter.VerboseLog("Program hash: %s", hash)
	return nil
}
