package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/lang"
	"github.com/roach88/pyrs/internal/transpile"
)

type pr = lang.PythonRust

// stdinPath names standard input as a source argument.
const stdinPath = "-"

var errStdinTerminal = errors.New("standard input is a terminal: pipe a Python file or pass its path")

// readSource reads a Python file, or standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinPath {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && isTerminal(f) {
			return "", errStdinTerminal
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// displayName is the name used for path in messages.
func displayName(path string) string {
	if path == stdinPath {
		return "<stdin>"
	}
	return path
}

// setupError reports a failure that happens before any source is
// transpiled: unreadable input or a broken idiom overlay.
func setupError(formatter *OutputFormatter, path string, err error) error {
	code, message := ErrCodeGeneric, err.Error()

	var loadErr *idiom.LoadError
	switch {
	case errors.As(err, &loadErr):
		code = ErrCodeIdioms
		message = fmt.Sprintf("loading idioms: %v", err)
	case errors.Is(err, fs.ErrNotExist):
		code = ErrCodeNotFound
		message = fmt.Sprintf("source not found: %s", path)
	}

	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputDiagnostics reports transpilation failures. In structured formats
// the first diagnostic is the envelope error and all of them are the data.
func outputDiagnostics(formatter *OutputFormatter, verb, path string, err error) error {
	diags := transpile.Classify(err)

	if formatter.Structured() {
		if encErr := formatter.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    diags[0].Code,
				Message: diags[0].Message,
			},
			Data: diags,
		}); encErr != nil {
			return encErr
		}
	} else {
		formatter.Fail("%s failed: %s", verb, displayName(path))
		for _, d := range diags {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", d.Code, d.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("%s failed with %d error(s)", verb, len(diags)))
}
