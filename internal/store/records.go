package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Record is one cached transpilation.
type Record struct {
	ID          string `json:"id" yaml:"id"`
	SourceHash  string `json:"source_hash" yaml:"source_hash"`
	IdiomsHash  string `json:"idioms_hash" yaml:"idioms_hash"`
	ProgramHash string `json:"program_hash" yaml:"program_hash"`
	Output      string `json:"output" yaml:"output"`
	Statements  int    `json:"statements" yaml:"statements"`
	Seq         int64  `json:"seq" yaml:"seq"`
	Hits        int64  `json:"hits" yaml:"hits"`
}

const recordColumns = `id, source_hash, idioms_hash, program_hash, output, statements, seq, hits`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.SourceHash,
		&rec.IdiomsHash,
		&rec.ProgramHash,
		&rec.Output,
		&rec.Statements,
		&rec.Seq,
		&rec.Hits,
	)
	return rec, err
}

// Get returns the record for a (source, idioms) hash pair.
// A miss is reported through found, not as an error.
func (s *Store) Get(ctx context.Context, sourceHash, idiomsHash string) (rec Record, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM transpilations
		WHERE source_hash = ? AND idioms_hash = ?
	`, sourceHash, idiomsHash)

	rec, err = scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get transpilation: %w", err)
	}
	return rec, true, nil
}

// Put inserts rec, assigning its ID and seq. Uses ON CONFLICT DO NOTHING
// for idempotency: if a record with the same hash pair exists, that record
// is returned with inserted=false.
func (s *Store) Put(ctx context.Context, rec Record) (stored Record, inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, false, fmt.Errorf("put transpilation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if rec.ID == "" {
		rec.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM transpilations`).Scan(&rec.Seq); err != nil {
		return Record{}, false, fmt.Errorf("put transpilation: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO transpilations
		(id, source_hash, idioms_hash, program_hash, output, statements, seq, hits)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(source_hash, idioms_hash) DO NOTHING
	`,
		rec.ID,
		rec.SourceHash,
		rec.IdiomsHash,
		rec.ProgramHash,
		rec.Output,
		rec.Statements,
		rec.Seq,
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("put transpilation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Record{}, false, fmt.Errorf("put transpilation: rows affected: %w", err)
	}

	if affected == 0 {
		row := tx.QueryRowContext(ctx, `
			SELECT `+recordColumns+`
			FROM transpilations
			WHERE source_hash = ? AND idioms_hash = ?
		`, rec.SourceHash, rec.IdiomsHash)
		existing, err := scanRecord(row)
		if err != nil {
			return Record{}, false, fmt.Errorf("put transpilation: read existing: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return Record{}, false, fmt.Errorf("put transpilation: commit: %w", err)
		}
		return existing, false, nil
	}

	if err := tx.Commit(); err != nil {
		return Record{}, false, fmt.Errorf("put transpilation: commit: %w", err)
	}
	rec.Hits = 0
	return rec, true, nil
}

// Hit increments the hit counter of the record with the given ID.
func (s *Store) Hit(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE transpilations SET hits = hits + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	return nil
}

// List returns all records ordered by seq.
// Returns an empty slice (not nil) if the cache is empty.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transpilations
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query transpilations: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transpilation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transpilations: %w", err)
	}
	return records, nil
}

// ByProgram returns the records whose lowered program hashes to programHash.
func (s *Store) ByProgram(ctx context.Context, programHash string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transpilations
		WHERE program_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, programHash)
	if err != nil {
		return nil, fmt.Errorf("query transpilations by program: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transpilation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transpilations: %w", err)
	}
	return records, nil
}

// Clear deletes every record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transpilations`)
	if err != nil {
		return 0, fmt.Errorf("clear transpilations: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear transpilations: rows affected: %w", err)
	}
	return n, nil
}
