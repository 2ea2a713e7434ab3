package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/lang"
)

// Transpiler is the part of transpile.Transpiler the cache drives.
type Transpiler interface {
	Lower(source string) ([]ir.Statement[lang.PythonRust], error)
	Render(stmts []ir.Statement[lang.PythonRust]) string
	Table() *idiom.Table[lang.PythonRust]
}

// SourceHash returns the cache key component for source text. The text is
// hashed byte for byte: string literal contents reach the output verbatim.
func SourceHash(source string) string {
	return ir.Digest(ir.DomainSource, []byte(source))
}

// IdiomsHash returns the cache key component for an idiom table.
func IdiomsHash[P lang.Pair](table *idiom.Table[P]) (string, error) {
	data, err := json.Marshal(table.Entries())
	if err != nil {
		return "", fmt.Errorf("IdiomsHash: failed to marshal: %w", err)
	}
	return ir.Digest(ir.DomainIdioms+"/"+lang.Describe[P](), data), nil
}

// Transpile returns the cached result for source, transpiling and storing
// it on a miss. Transpilation errors are returned unwrapped so callers can
// inspect them with errors.As; they are never cached.
func (s *Store) Transpile(ctx context.Context, t Transpiler, source string) (rec Record, hit bool, err error) {
	idiomsHash, err := IdiomsHash(t.Table())
	if err != nil {
		return Record{}, false, err
	}
	sourceHash := SourceHash(source)

	rec, found, err := s.Get(ctx, sourceHash, idiomsHash)
	if err != nil {
		return Record{}, false, err
	}
	if found {
		if err := s.Hit(ctx, rec.ID); err != nil {
			return Record{}, false, err
		}
		rec.Hits++
		return rec, true, nil
	}

	stmts, err := t.Lower(source)
	if err != nil {
		return Record{}, false, err
	}
	programHash, err := ir.Fingerprint(stmts)
	if err != nil {
		return Record{}, false, err
	}

	rec, _, err = s.Put(ctx, Record{
		SourceHash:  sourceHash,
		IdiomsHash:  idiomsHash,
		ProgramHash: programHash,
		Output:      t.Render(stmts),
		Statements:  len(stmts),
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, false, nil
}
