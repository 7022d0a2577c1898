package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PathRecord is one row of the paths table.
type PathRecord struct {
	Path               string
	NotedCount         int64
	LastNotedTimestamp int64
}

// NotedAt pairs a path with one of its note timestamps.
type NotedAt struct {
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"`
}

// CountOf pairs a path with its note count.
type CountOf struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// Stats summarises the store. The pointer fields are nil for an empty store.
type Stats struct {
	TotalPaths   int      `json:"total_paths"`
	OldestNote   *NotedAt `json:"oldest_note"`
	NewestNote   *NotedAt `json:"newest_note"`
	HighestCount *CountOf `json:"highest_count"`
}

// ReadAll returns every record in insertion order. No filtering is applied.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ReadAll(ctx context.Context) ([]PathRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, noted_count, last_noted_timestamp
		FROM paths
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query paths: %w", err)
	}
	defer rows.Close()

	records := []PathRecord{}
	for rows.Next() {
		var r PathRecord
		if err := rows.Scan(&r.Path, &r.NotedCount, &r.LastNotedTimestamp); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}

	return records, nil
}

// Stats computes the row count and the oldest, newest and most noted paths.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM paths`).Scan(&stats.TotalPaths); err != nil {
		return Stats{}, fmt.Errorf("count paths: %w", err)
	}

	oldest, err := s.notedAt(ctx, `
		SELECT path, last_noted_timestamp FROM paths
		ORDER BY last_noted_timestamp ASC LIMIT 1
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("query oldest note: %w", err)
	}
	stats.OldestNote = oldest

	newest, err := s.notedAt(ctx, `
		SELECT path, last_noted_timestamp FROM paths
		ORDER BY last_noted_timestamp DESC LIMIT 1
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("query newest note: %w", err)
	}
	stats.NewestNote = newest

	var highest CountOf
	err = s.db.QueryRowContext(ctx, `
		SELECT path, noted_count FROM paths
		ORDER BY noted_count DESC LIMIT 1
	`).Scan(&highest.Path, &highest.Count)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Stats{}, fmt.Errorf("query highest count: %w", err)
	default:
		stats.HighestCount = &highest
	}

	return stats, nil
}

func (s *Store) notedAt(ctx context.Context, query string) (*NotedAt, error) {
	var n NotedAt
	err := s.db.QueryRowContext(ctx, query).Scan(&n.Path, &n.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
