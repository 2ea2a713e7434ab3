package idiom

import (
	"slices"
	"strings"
	"sync"

	"github.com/roach88/pyrs/internal/lang"
)

// Kind classifies the target spelling of an idiom.
type Kind string

const (
	KindFunction Kind = "function" // plain function, e.g. drop
	KindMacro    Kind = "macro"    // macro invocation, spelled with a trailing '!'
	KindPath     Kind = "path"     // path expression, e.g. String::from
)

// Idiom maps one source-language identifier to its target spelling.
type Idiom struct {
	Name   string `json:"name" yaml:"name"`
	Target string `json:"target" yaml:"target"`
	Kind   Kind   `json:"kind" yaml:"kind"`

	// Format marks macros whose first argument is a format string.
	Format bool   `json:"format,omitempty" yaml:"format,omitempty"`
	Doc    string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Table is an immutable idiom table for the language pair P.
// A Table is safe for concurrent use; nothing mutates it after construction.
type Table[P lang.Pair] struct {
	entries map[string]Idiom
}

// New builds a table from the given entries. Later entries win.
func New[P lang.Pair](entries ...Idiom) *Table[P] {
	t := &Table[P]{entries: make(map[string]Idiom, len(entries))}
	for _, e := range entries {
		t.entries[e.Name] = e
	}
	return t
}

// Lookup returns the idiom registered for name.
// A miss is reported through ok; the table itself never fails.
func (t *Table[P]) Lookup(name string) (Idiom, bool) {
	if t == nil {
		return Idiom{}, false
	}
	e, ok := t.entries[name]
	return e, ok
}

// Spelling returns only the target spelling for name.
func (t *Table[P]) Spelling(name string) (string, bool) {
	e, ok := t.Lookup(name)
	return e.Target, ok
}

// Len returns the number of entries.
func (t *Table[P]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns all idioms sorted by source name.
func (t *Table[P]) Entries() []Idiom {
	if t == nil {
		return nil
	}
	out := make([]Idiom, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Idiom) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// With returns a copy of t with extra entries layered on top.
func (t *Table[P]) With(extra ...Idiom) *Table[P] {
	merged := make([]Idiom, 0, t.Len()+len(extra))
	merged = append(merged, t.Entries()...)
	merged = append(merged, extra...)
	return New[P](merged...)
}

var defaultTable = sync.OnceValues(Builtin)

// Default returns the process-wide built-in Python -> Rust table.
// It is compiled from the embedded CUE document on first use.
func Default() (*Table[lang.PythonRust], error) {
	return defaultTable()
}
