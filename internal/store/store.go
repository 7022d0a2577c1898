package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// FileName is the database file created inside the store directory.
const FileName = "memy.sqlite3"

// Schema version tracking:
// 1 - paths table keyed by path
const currentSchemaVersion = 1

var (
	// ErrNotFound is returned when the store directory does not exist.
	ErrNotFound = errors.New("database directory not found")

	// ErrVersionMismatch is returned when an existing database carries a
	// schema version other than the one this build understands.
	ErrVersionMismatch = errors.New("database version mismatch")

	// ErrInvalidCount is returned when an import carries a count below 1.
	ErrInvalidCount = errors.New("noted count must be at least 1")
)

// VersionMismatchError reports the stamped and expected schema versions.
type VersionMismatchError struct {
	Found    int
	Expected int
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("database version mismatch: expected %d, found %d", e.Expected, e.Found)
}

func (e *VersionMismatchError) Is(target error) bool {
	return target == ErrVersionMismatch
}

// Store is the SQLite-backed table of noted paths.
type Store struct {
	db      *sql.DB
	path    string
	created bool
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for diagnostics that never fail a call.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens the database in dir, creating the file and schema when it is
// absent. dir itself must already exist.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// An existing database whose user_version differs from the current schema
// version is rejected with a *VersionMismatchError.
func Open(dir string, opts ...Option) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	path := filepath.Join(dir, FileName)
	_, statErr := os.Stat(path)
	exists := statErr == nil

	s := &Store{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if exists {
		s.logger.Debug("Database exists", "path", path)
		if err := checkVersion(db); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		s.logger.Debug("Database does not exist, initializing", "path", path)
		if err := initSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		s.created = true
	}

	s.db = db
	s.logger.Debug("Database opened", "path", path)
	return s, nil
}

// Created reports whether Open created the database file.
func (s *Store) Created() bool {
	return s.created
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

// Close optimizes and closes the database connection. A failed optimize is
// logged and does not prevent the close.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA optimize"); err != nil {
		s.logger.Debug("PRAGMA optimize failed", "error", err)
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// initSchema creates the paths table and stamps the schema version.
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func checkVersion(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}
	if version != currentSchemaVersion {
		return &VersionMismatchError{Found: version, Expected: currentSchemaVersion}
	}
	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// exec runs a statement outside a transaction. Used by tests to corrupt or
// constrain the database.
func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
