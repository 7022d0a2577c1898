package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is a write transaction over the paths table.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction. The caller must Commit or Rollback it.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back a committed transaction is a
// no-op, so it is safe to defer.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

// Note records one note of path at now. A new path is inserted with a count
// of 1; an existing one has its count incremented and its timestamp replaced.
func (t *Tx) Note(ctx context.Context, path string, now int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO paths (path, noted_count, last_noted_timestamp)
		VALUES (?, 1, ?)
		ON CONFLICT(path) DO UPDATE SET
			noted_count = noted_count + 1,
			last_noted_timestamp = excluded.last_noted_timestamp
	`, path, now)
	if err != nil {
		return fmt.Errorf("note %s: %w", path, err)
	}
	return nil
}

// Import merges a record from another tool. The imported count is added to
// any existing count and the timestamp replaces the stored one. count must be
// at least 1.
func (t *Tx) Import(ctx context.Context, path string, count, ts int64) error {
	if count < 1 {
		return fmt.Errorf("import %s: %w: %d", path, ErrInvalidCount, count)
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO paths (path, noted_count, last_noted_timestamp)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			noted_count = noted_count + excluded.noted_count,
			last_noted_timestamp = excluded.last_noted_timestamp
	`, path, count, ts)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	return nil
}

// Delete removes path from the store. Deleting an absent path is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM paths WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}
