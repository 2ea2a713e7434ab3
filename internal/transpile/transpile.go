// Package transpile is the entry point of the pyrs core: it parses Python
// source, lowers each statement to IR and renders the IR as Rust.
//
// Transpile is fail-fast: the first parse or lowering failure is returned
// and no partial output is produced. Check reports every lowering failure
// at once for diagnostics.
package transpile

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/lang"
	"github.com/roach88/pyrs/internal/lower"
	"github.com/roach88/pyrs/internal/pyast"
	"github.com/roach88/pyrs/internal/pyparse"
	"github.com/roach88/pyrs/internal/rustgen"
)

// ErrParse matches every ParseError with errors.Is.
var ErrParse = errors.New("parse failure")

// CodeParse is the diagnostic code for parse failures.
const CodeParse = "E201"

// ParseError wraps a failure reported by the Python parser.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Code returns the diagnostic code for this error.
func (e *ParseError) Code() string { return CodeParse }

// Pos returns the position of the syntax error, if the parser reported one.
func (e *ParseError) Pos() pyast.Pos {
	var syntaxErr *pyparse.SyntaxError
	if errors.As(e.Err, &syntaxErr) {
		return syntaxErr.Pos()
	}
	return pyast.Pos{}
}

type pr = lang.PythonRust

// Transpiler converts Python source to Rust with a fixed idiom table.
// A Transpiler holds no mutable state and is safe for concurrent use.
type Transpiler struct {
	table    *idiom.Table[pr]
	lowerer  *lower.Lowerer[pr]
	renderer *rustgen.Renderer
	logger   *slog.Logger
}

// Option configures a Transpiler.
type Option func(*Transpiler)

// WithTable replaces the built-in idiom table.
func WithTable(table *idiom.Table[pr]) Option {
	return func(t *Transpiler) {
		t.table = table
	}
}

// WithLogger sets the logger for debug output. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transpiler) {
		t.logger = logger
	}
}

// New creates a Transpiler. Without WithTable it uses idiom.Default.
func New(opts ...Option) (*Transpiler, error) {
	t := &Transpiler{}
	for _, opt := range opts {
		opt(t)
	}
	if t.table == nil {
		table, err := idiom.Default()
		if err != nil {
			return nil, err
		}
		t.table = table
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t.lowerer = lower.New(t.table, lower.WithSpelling[pr](rustgen.Ident))
	t.renderer = rustgen.New(t.table)
	return t, nil
}

var defaultTranspiler = sync.OnceValues(func() (*Transpiler, error) {
	return New()
})

// Transpile converts source with the built-in idiom table.
func Transpile(source string) (string, error) {
	t, err := defaultTranspiler()
	if err != nil {
		return "", err
	}
	return t.Transpile(source)
}

// Table returns the idiom table in use.
func (t *Transpiler) Table() *idiom.Table[pr] {
	return t.table
}

// Transpile converts source to Rust, one output line per top-level
// statement in source order. Empty source yields "".
func (t *Transpiler) Transpile(source string) (string, error) {
	stmts, err := t.Lower(source)
	if err != nil {
		return "", err
	}

	out := t.Render(stmts)
	t.logger.Debug("transpiled",
		"statements", len(stmts),
		"output_bytes", len(out))
	return out, nil
}

// Render renders lowered statements, newline-joined in order.
func (t *Transpiler) Render(stmts []ir.Statement[pr]) string {
	return t.renderer.RenderProgram(stmts)
}

// Lower parses and lowers source without rendering.
func (t *Transpiler) Lower(source string) ([]ir.Statement[pr], error) {
	mod, err := t.parse(source)
	if err != nil {
		return nil, err
	}

	stmts, err := t.lowerer.Module(mod)
	if err != nil {
		t.logger.Debug("lowering failed", "error", err)
		return nil, err
	}
	return stmts, nil
}

// Check lowers every statement and returns all failures, in source order,
// as a *multierror.Error. A parse failure is returned alone.
func (t *Transpiler) Check(source string) error {
	mod, err := t.parse(source)
	if err != nil {
		return err
	}

	var result *multierror.Error
	scope := t.lowerer.NewScope()
	for _, s := range mod.Body {
		if _, err := scope.Statement(s); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result != nil {
		t.logger.Debug("check found unsupported constructs",
			"statements", len(mod.Body),
			"failures", len(result.Errors))
		result.ErrorFormat = listFormat
	}
	return result.ErrorOrNil()
}

func (t *Transpiler) parse(source string) (*pyast.Module, error) {
	mod, err := pyparse.Parse(source)
	if err != nil {
		t.logger.Debug("parse failed", "error", err)
		return nil, &ParseError{Err: err}
	}
	t.logger.Debug("parsed", "statements", len(mod.Body))
	return mod, nil
}

// listFormat prints one failure per line.
func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}
