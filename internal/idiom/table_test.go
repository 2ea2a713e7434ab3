package idiom

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyrs/internal/lang"
)

func TestDefault_BuiltinEntries(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		kind   Kind
	}{
		{"print", "println!", KindMacro},
		{"str", "String::from", KindPath},
		{"list", "Vec::from", KindPath},
		{"exit", "std::process::exit", KindPath},
		{"quit", "std::process::exit", KindPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := table.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.name, e.Name)
			assert.Equal(t, tt.target, e.Target)
			assert.Equal(t, tt.kind, e.Kind)
		})
	}

	printIdiom, _ := table.Lookup("print")
	assert.True(t, printIdiom.Format, "println! takes a format string")
	strIdiom, _ := table.Lookup("str")
	assert.False(t, strIdiom.Format)
}

func TestDefault_Miss(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	_, ok := table.Lookup("foo")
	assert.False(t, ok)
	spelling, ok := table.Spelling("foo")
	assert.False(t, ok)
	assert.Empty(t, spelling)
}

func TestDefault_StableAcrossCalls(t *testing.T) {
	first, err := Default()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := Default()
			assert.NoError(t, err)
			assert.Same(t, first, table)
			spelling, ok := table.Spelling("print")
			assert.True(t, ok)
			assert.Equal(t, "println!", spelling)
		}()
	}
	wg.Wait()
}

func TestEntries_Sorted(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	var names []string
	for _, e := range table.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"exit", "list", "print", "quit", "str"}, names)
	assert.Equal(t, 5, table.Len())
}

func TestWith_OverridesWithoutMutating(t *testing.T) {
	base := New[lang.PythonRust](Idiom{Name: "print", Target: "println!", Kind: KindMacro})
	extended := base.With(Idiom{Name: "print", Target: "eprintln!", Kind: KindMacro})

	s, _ := base.Spelling("print")
	assert.Equal(t, "println!", s)
	s, _ = extended.Spelling("print")
	assert.Equal(t, "eprintln!", s)
}

func TestNilTable(t *testing.T) {
	var table *Table[lang.PythonRust]
	_, ok := table.Lookup("print")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Nil(t, table.Entries())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "extra.yaml", `
idioms:
  eprint:
    target: "eprintln!"
    kind: macro
    format: true
  drop:
    target: drop
`)
	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Idiom{Name: "drop", Target: "drop", Kind: KindFunction}, entries[0])
	assert.Equal(t, Idiom{Name: "eprint", Target: "eprintln!", Kind: KindMacro, Format: true}, entries[1])
}

func TestLoadFile_CUE(t *testing.T) {
	path := writeFile(t, "extra.cue", `
idioms: dbg: {
	target: "dbg!"
	kind:   "macro"
	doc:    "debug print"
}
`)
	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dbg", entries[0].Name)
	assert.Equal(t, "dbg!", entries[0].Target)
	assert.Equal(t, "debug print", entries[0].Doc)
	assert.False(t, entries[0].Format)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "macro without bang",
			file:    "bad.yaml",
			content: "idioms:\n  eprint:\n    target: eprintln\n    kind: macro\n",
		},
		{
			name:    "format on a path",
			file:    "bad.yaml",
			content: "idioms:\n  s:\n    target: String::from\n    kind: path\n    format: true\n",
		},
		{
			name:    "empty target",
			file:    "bad.yaml",
			content: "idioms:\n  s:\n    target: \"\"\n",
		},
		{
			name:    "unknown kind",
			file:    "bad.yaml",
			content: "idioms:\n  s:\n    target: x\n    kind: method\n",
		},
		{
			name:    "unknown yaml field",
			file:    "bad.yaml",
			content: "idioms:\n  s:\n    target: x\n    spelling: y\n",
		},
		{
			name:    "unknown cue field",
			file:    "bad.cue",
			content: "idioms: s: {target: \"x\", kind: \"path\", extra: 1}\n",
		},
		{
			name:    "cue without idioms",
			file:    "bad.cue",
			content: "other: 1\n",
		},
		{
			name:    "unsupported extension",
			file:    "bad.json",
			content: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %T", err)
			assert.Equal(t, path, loadErr.File)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_EmptyYAML(t *testing.T) {
	entries, err := LoadFile(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtend(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	path := writeFile(t, "extra.yaml", "idioms:\n  print:\n    target: \"eprintln!\"\n    kind: macro\n")
	extended, err := Extend(base, path)
	require.NoError(t, err)

	s, _ := extended.Spelling("print")
	assert.Equal(t, "eprintln!", s)
	s, _ = base.Spelling("print")
	assert.Equal(t, "println!", s, "the default table is never mutated")
	assert.Equal(t, base.Len(), extended.Len())
}
