package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a record with distinct hashes derived from name.
func createTestRecord(name, output string) Record {
	return Record{
		SourceHash:  "source-" + name,
		IdiomsHash:  "idioms-v1",
		ProgramHash: "program-" + name,
		Output:      output,
		Statements:  1,
	}
}
