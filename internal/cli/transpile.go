package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/store"
	"github.com/roach88/pyrs/internal/transpile"
)

// TranspileOptions holds flags for the transpile command.
type TranspileOptions struct {
	*RootOptions
	Output string // output file path
}

// TranspileResult is the structured output of the transpile command.
type TranspileResult struct {
	File        string `json:"file" yaml:"file"`
	Output      string `json:"output" yaml:"output"`
	Statements  int    `json:"statements" yaml:"statements"`
	ProgramHash string `json:"program_hash" yaml:"program_hash"`
	Cache       string `json:"cache,omitempty" yaml:"cache,omitempty"` // "hit" or "miss" with --cache
	Written     string `json:"written,omitempty" yaml:"written,omitempty"`
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranspileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transpile <file.py|->",
		Short: "Transpile Python source to Rust",
		Long: `Transpile a Python file (or standard input with "-") to Rust.

Transpilation is all-or-nothing: the first unsupported construct fails
the whole file and no partial output is written. With --cache, results
are looked up in and stored to a SQLite cache keyed by source and idiom
table.

Exit codes:
  0 - Transpiled
  1 - Unsupported construct or syntax error
  2 - Command error (missing file, bad idiom overlay, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranspile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&rootOpts.Cache, "cache", "", "transpilation cache database path")

	return cmd
}

func runTranspile(ctx context.Context, opts *TranspileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	tr, err := opts.Transpiler()
	if err != nil {
		return setupError(formatter, path, err)
	}
	source, err := readSource(cmd, path)
	if err != nil {
		return setupError(formatter, path, err)
	}
	formatter.VerboseLog("Transpiling %s (%d bytes) with %d idiom(s)", displayName(path), len(source), tr.Table().Len())

	result := TranspileResult{File: displayName(path)}
	if opts.Cache != "" {
		err = transpileCached(ctx, opts.Cache, tr, source, &result)
	} else {
		err = transpileDirect(tr, source, &result)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = formatter.Error(ErrCodeCache, exitErr.Error(), nil)
		return exitErr
	}
	if err != nil {
		return outputDiagnostics(formatter, "Transpilation", path, err)
	}
	if result.Cache != "" {
		formatter.VerboseLog("Cache %s: %s", result.Cache, opts.Cache)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.Output+"\n"), 0644); err != nil {
			message := fmt.Sprintf("writing output file: %v", err)
			_ = formatter.Error(ErrCodeWriteFailed, message, nil)
			return WrapExitError(ExitCommandError, message, nil)
		}
		result.Written = opts.Output
	}

	return outputTranspileSuccess(formatter, result)
}

func transpileDirect(tr *transpile.Transpiler, source string, result *TranspileResult) error {
	stmts, err := tr.Lower(source)
	if err != nil {
		return err
	}
	hash, err := ir.Fingerprint(stmts)
	if err != nil {
		return err
	}
	result.Output = tr.Render(stmts)
	result.Statements = len(stmts)
	result.ProgramHash = hash
	return nil
}

// transpileCached returns transpilation errors unwrapped and cache
// failures as *ExitError.
func transpileCached(ctx context.Context, path string, tr *transpile.Transpiler, source string, result *TranspileResult) error {
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening cache", err)
	}
	defer st.Close()

	rec, hit, err := st.Transpile(ctx, tr, source)
	if err != nil {
		if transpile.Classify(err)[0].Kind == transpile.KindInternal {
			return WrapExitError(ExitCommandError, "cache", err)
		}
		return err
	}

	result.Output = rec.Output
	result.Statements = rec.Statements
	result.ProgramHash = rec.ProgramHash
	result.Cache = "miss"
	if hit {
		result.Cache = "hit"
	}
	return nil
}

// outputTranspileSuccess prints the Rust text, or a status line when it
// was written to a file.
func outputTranspileSuccess(formatter *OutputFormatter, result TranspileResult) error {
	if formatter.Structured() {
		return formatter.Success(result)
	}
	if result.Written != "" {
		formatter.Pass("Transpiled %d statement(s) to %s", result.Statements, result.Written)
		return nil
	}
	if result.Output != "" {
		fmt.Fprintln(formatter.Writer, result.Output)
	}
	return nil
}
