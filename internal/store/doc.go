// Package store provides SQLite-backed durable storage for noted paths.
//
// The store holds a single table:
//   - paths: one row per distinct path with its note count and the Unix
//     timestamp (seconds) of its most recent note
//
// # Schema Versioning
//
// A new database is stamped with PRAGMA user_version = 1. Every open reads
// the stamp back and refuses a database with any other value; there is no
// migration path.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - PRAGMA optimize on close (best effort)
//
// Writes go through a Tx so that noting several paths in one invocation is
// atomic.
package store
