package store

import (
	"context"
	"testing"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// notePaths notes each path once at now in a single committed transaction.
func notePaths(t *testing.T, s *Store, now int64, paths ...string) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	defer tx.Rollback()
	for _, p := range paths {
		if err := tx.Note(ctx, p, now); err != nil {
			t.Fatalf("Note(%q) failed: %v", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
}

// recordMap indexes ReadAll output by path.
func recordMap(t *testing.T, s *Store) map[string]PathRecord {
	t.Helper()
	records, err := s.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	m := make(map[string]PathRecord, len(records))
	for _, r := range records {
		m[r.Path] = r
	}
	return m
}
