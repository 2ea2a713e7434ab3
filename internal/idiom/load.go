package idiom

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pyrs/internal/lang"
)

//go:embed schema.cue
var schemaSource string

//go:embed builtin.cue
var builtinSource string

// LoadError reports an idiom document that failed to compile or validate.
type LoadError struct {
	File    string
	Name    string // idiom name, empty for file-level errors
	Message string
	Pos     token.Pos
	Err     error
}

func (e *LoadError) Error() string {
	where := e.File
	if e.Pos.IsValid() {
		where = fmt.Sprintf("%s:%d:%d", e.File, e.Pos.Line(), e.Pos.Column())
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: idiom %q: %s", where, e.Name, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(file, name string, err error) *LoadError {
	le := &LoadError{File: file, Name: name, Message: err.Error(), Err: err}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Pos = errs[0].Position()
	}
	return le
}

// entry is the on-disk shape of a single idiom, shared by CUE and YAML.
type entry struct {
	Target string `json:"target" yaml:"target"`
	Kind   string `json:"kind" yaml:"kind"`
	Format bool   `json:"format,omitempty" yaml:"format,omitempty"`
	Doc    string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type overlayFile struct {
	Idioms map[string]entry `yaml:"idioms"`
}

// compiler validates idiom documents against the #Idiom schema.
// Values from different CUE contexts cannot be unified, so the schema is
// compiled into the same context as the documents it checks.
type compiler struct {
	ctx    *cue.Context
	schema cue.Value
}

func newCompiler() (*compiler, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, newLoadError("schema.cue", "", err)
	}
	return &compiler{ctx: ctx, schema: v.LookupPath(cue.ParsePath("#Idiom"))}, nil
}

func (c *compiler) validate(file, name string, v cue.Value) (Idiom, error) {
	if name == "" {
		return Idiom{}, &LoadError{File: file, Message: "idiom name must be non-empty"}
	}
	unified := c.schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Idiom{}, newLoadError(file, name, err)
	}
	var e entry
	if err := unified.Decode(&e); err != nil {
		return Idiom{}, newLoadError(file, name, err)
	}
	return Idiom{
		Name:   name,
		Target: e.Target,
		Kind:   Kind(e.Kind),
		Format: e.Format,
		Doc:    e.Doc,
	}, nil
}

// compileCUE reads the top-level "idioms" struct of a CUE document.
func (c *compiler) compileCUE(file, src string) ([]Idiom, error) {
	v := c.ctx.CompileString(src, cue.Filename(file))
	if err := v.Err(); err != nil {
		return nil, newLoadError(file, "", err)
	}
	idiomsVal := v.LookupPath(cue.ParsePath("idioms"))
	if !idiomsVal.Exists() {
		return nil, &LoadError{File: file, Message: "missing top-level idioms field"}
	}
	iter, err := idiomsVal.Fields()
	if err != nil {
		return nil, newLoadError(file, "", err)
	}

	var out []Idiom
	for iter.Next() {
		e, err := c.validate(file, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// compileYAML decodes a YAML overlay and checks each entry against the
// schema. A missing kind defaults to "function".
func (c *compiler) compileYAML(file string, data []byte) ([]Idiom, error) {
	var doc overlayFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{File: file, Message: fmt.Sprintf("decoding yaml: %v", err), Err: err}
	}

	names := make([]string, 0, len(doc.Idioms))
	for name := range doc.Idioms {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]Idiom, 0, len(names))
	for _, name := range names {
		e := doc.Idioms[name]
		if e.Kind == "" {
			e.Kind = string(KindFunction)
		}
		idm, err := c.validate(file, name, c.ctx.Encode(e))
		if err != nil {
			return nil, err
		}
		out = append(out, idm)
	}
	return out, nil
}

// Builtin compiles the embedded Python -> Rust table.
func Builtin() (*Table[lang.PythonRust], error) {
	c, err := newCompiler()
	if err != nil {
		return nil, err
	}
	entries, err := c.compileCUE("builtin.cue", builtinSource)
	if err != nil {
		return nil, err
	}
	return New[lang.PythonRust](entries...), nil
}

// LoadFile reads overlay idioms from a .cue, .yaml or .yml file.
func LoadFile(path string) ([]Idiom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("reading file: %v", err), Err: err}
	}
	c, err := newCompiler()
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".cue":
		return c.compileCUE(path, string(data))
	case ".yaml", ".yml":
		return c.compileYAML(path, data)
	default:
		return nil, &LoadError{File: path, Message: "unsupported idiom file extension (want .cue, .yaml or .yml)"}
	}
}

// Extend layers the idioms from each file onto t, in order.
func Extend[P lang.Pair](t *Table[P], paths ...string) (*Table[P], error) {
	for _, path := range paths {
		extra, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		t = t.With(extra...)
	}
	return t, nil
}
