// Package lang identifies source and target languages and the pairs the
// transpiler is instantiated for.
//
// A Pair is used as a type parameter, never as a value that is switched on.
// IR values, idiom tables and renderers that are instantiated with different
// pairs are distinct Go types, so mixing them does not compile.
package lang

import "fmt"

// Language names a programming language.
type Language string

const (
	Python Language = "python"
	Rust   Language = "rust"
)

// Pair is the constraint satisfied by (source, target) marker types.
type Pair interface {
	comparable
	Source() Language
	Target() Language
}

// PythonRust is the marker for transpiling Python to Rust.
type PythonRust struct{}

func (PythonRust) Source() Language { return Python }
func (PythonRust) Target() Language { return Rust }

// Describe returns "source->target" for the pair P.
func Describe[P Pair]() string {
	var p P
	return fmt.Sprintf("%s->%s", p.Source(), p.Target())
}
