// Package list ranks the stored paths by frecency, evicting stale entries
// along the way.
package list

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/andrewferrier/memy/internal/config"
	"github.com/andrewferrier/memy/internal/denylist"
	"github.com/andrewferrier/memy/internal/frecency"
	"github.com/andrewferrier/memy/internal/store"
	"github.com/andrewferrier/memy/internal/timeutil"
)

// ErrUnorderable is returned when a score cannot be compared, which means
// the corpus statistics were inconsistent.
var ErrUnorderable = errors.New("frecency scores cannot be ordered")

const secondsPerDay = 86400

// FileType is the kind of filesystem object a listed path refers to.
type FileType string

const (
	Dir     FileType = "dir"
	File    FileType = "file"
	Symlink FileType = "symlink"
	Other   FileType = "other"
)

func fileTypeOf(mode fs.FileMode) FileType {
	switch {
	case mode.IsDir():
		return Dir
	case mode.IsRegular():
		return File
	case mode&fs.ModeSymlink != 0:
		return Symlink
	default:
		return Other
	}
}

// Result is one ranked path.
type Result struct {
	Path      string   `json:"path"`
	Frecency  float64  `json:"frecency"`
	Count     int64    `json:"count"`
	LastNoted string   `json:"last_noted"`
	FileType  FileType `json:"file_type"`
}

// Options filter a listing.
type Options struct {
	FilesOnly       bool
	DirectoriesOnly bool

	// NewerThan, when set, drops records last noted before this Unix time.
	NewerThan *int64
}

// Lister runs the list pipeline against a store.
type Lister struct {
	store  *store.Store
	cfg    *config.Config
	deny   *denylist.Matcher
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Lister.
type Option func(*Lister)

// WithClock replaces the wall clock used for record ages.
func WithClock(now func() time.Time) Option {
	return func(l *Lister) { l.now = now }
}

// WithLogger sets the logger for eviction messages.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lister) { l.logger = logger }
}

// New creates a Lister. cfg must already be validated.
func New(s *store.Store, cfg *config.Config, deny *denylist.Matcher, opts ...Option) *Lister {
	l := &Lister{
		store:  s,
		cfg:    cfg,
		deny:   deny,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// corpus holds the statistics every score is normalized against.
type corpus struct {
	now            int64
	maxCount       int64
	oldestAgeHours float64
}

func newCorpus(records []store.PathRecord, now int64) corpus {
	oldest := now
	var maxCount int64
	for i, r := range records {
		if i == 0 || r.LastNotedTimestamp < oldest {
			oldest = r.LastNotedTimestamp
		}
		maxCount = max(maxCount, r.NotedCount)
	}
	return corpus{
		now:            now,
		maxCount:       maxCount,
		oldestAgeHours: frecency.AgeHours(now, oldest),
	}
}

// List returns the surviving paths in ascending frecency order, so the best
// candidate comes last. Records whose paths are missing or denied are
// skipped and, depending on configuration, deleted from the store.
//
// Corpus statistics cover every stored record, including ones filtered out
// or evicted during this call.
func (l *Lister) List(ctx context.Context, opts Options) ([]Result, error) {
	records, err := l.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	c := newCorpus(records, l.now().Unix())

	results := []Result{}
	for _, r := range records {
		if opts.NewerThan != nil && r.LastNotedTimestamp < *opts.NewerThan {
			continue
		}

		info, err := os.Stat(r.Path)
		if err != nil {
			if err := l.handleMissing(ctx, r, c.now); err != nil {
				return nil, err
			}
			continue
		}

		if l.deny.Match(r.Path, info.IsDir()) == denylist.Ignored {
			if err := l.handleDenied(ctx, r); err != nil {
				return nil, err
			}
			continue
		}

		if (opts.FilesOnly && !info.Mode().IsRegular()) || (opts.DirectoriesOnly && !info.IsDir()) {
			continue
		}

		score := frecency.Score(
			r.NotedCount,
			frecency.AgeHours(c.now, r.LastNotedTimestamp),
			c.maxCount,
			c.oldestAgeHours,
			l.cfg.RecencyBias,
		)
		if math.IsNaN(score) {
			return nil, ErrUnorderable
		}

		results = append(results, Result{
			Path:      r.Path,
			Frecency:  score,
			Count:     r.NotedCount,
			LastNoted: timeutil.ISO8601(r.LastNotedTimestamp),
			FileType:  fileTypeOf(info.Mode()),
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Frecency < b.Frecency:
			return -1
		case a.Frecency > b.Frecency:
			return 1
		default:
			return 0
		}
	})

	return results, nil
}

func (l *Lister) handleMissing(ctx context.Context, r store.PathRecord, now int64) error {
	ageDays := (now - r.LastNotedTimestamp) / secondsPerDay
	threshold := l.cfg.MissingFilesDeleteFromDBAfter

	if l.cfg.MissingDeletionEnabled() && ageDays > threshold {
		if err := l.store.Delete(ctx, r.Path); err != nil {
			return err
		}
		l.logger.Warn("Path no longer exists, removed from database",
			"path", r.Path, "last_noted_days_ago", ageDays, "missing_files_delete_from_db_after", threshold)
		return nil
	}

	l.logger.Info("Path no longer exists, retained but skipped",
		"path", r.Path, "last_noted_days_ago", ageDays, "missing_files_delete_from_db_after", threshold)
	return nil
}

func (l *Lister) handleDenied(ctx context.Context, r store.PathRecord) error {
	switch l.cfg.DeniedFilesOnList {
	case config.DeniedWarn:
		l.logger.Warn("Path is denied, remaining in database", "path", r.Path)
	case config.DeniedDelete:
		if err := l.store.Delete(ctx, r.Path); err != nil {
			return err
		}
		l.logger.Info("Path is denied, deleted from database", "path", r.Path)
	}
	return nil
}
