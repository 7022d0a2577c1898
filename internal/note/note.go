// Package note records paths in the store.
package note

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/andrewferrier/memy/internal/config"
	"github.com/andrewferrier/memy/internal/denylist"
	"github.com/andrewferrier/memy/internal/pathutil"
	"github.com/andrewferrier/memy/internal/store"
)

// ErrNoPaths is returned when Note is called without any paths.
var ErrNoPaths = errors.New("you must specify some paths to note")

// Status is what happened to one input path.
type Status int

const (
	Noted Status = iota
	SkippedMissing
	SkippedDenied
)

func (s Status) String() string {
	switch s {
	case Noted:
		return "noted"
	case SkippedMissing:
		return "skipped-missing"
	case SkippedDenied:
		return "skipped-denied"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome reports the fate of one input path. Path is the form that was
// checked against the denylist and, for Noted, written to the store.
type Outcome struct {
	Input  string
	Path   string
	Status Status
}

// Noter runs the note pipeline against a store.
type Noter struct {
	store  *store.Store
	cfg    *config.Config
	deny   *denylist.Matcher
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Noter.
type Option func(*Noter)

// WithClock replaces the wall clock used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Noter) { n.now = now }
}

// WithLogger sets the logger for per-path warnings and info messages.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Noter) { n.logger = logger }
}

// New creates a Noter. cfg must already be validated.
func New(s *store.Store, cfg *config.Config, deny *denylist.Matcher, opts ...Option) *Noter {
	n := &Noter{
		store:  s,
		cfg:    cfg,
		deny:   deny,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Note records every path in one transaction. Missing and denied paths are
// skipped, not errors. Any other failure rolls back the whole batch.
func (n *Noter) Note(ctx context.Context, paths []string) ([]Outcome, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	tx, err := n.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := n.now().Unix()
	outcomes := make([]Outcome, 0, len(paths))
	for _, raw := range paths {
		outcome, err := n.notePath(ctx, tx, raw, now)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (n *Noter) notePath(ctx context.Context, tx *store.Tx, raw string, now int64) (Outcome, error) {
	path := pathutil.ExpandTilde(raw)
	outcome := Outcome{Input: raw, Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if n.cfg.MissingFilesWarnOnNote {
			n.logger.Warn("Path does not exist", "path", raw)
		}
		outcome.Status = SkippedMissing
		return outcome, nil
	}

	if n.cfg.NormalizeSymlinksOnNote {
		path, err = canonicalize(path)
		if err != nil {
			return Outcome{}, fmt.Errorf("normalize %s: %w", raw, err)
		}
		outcome.Path = path
	}

	if n.deny.Match(path, info.IsDir()) == denylist.Ignored {
		if n.cfg.DeniedFilesWarnOnNote {
			n.logger.Warn("Path denied by denylist pattern", "path", path)
		}
		outcome.Status = SkippedDenied
		return outcome, nil
	}

	if err := tx.Note(ctx, path, now); err != nil {
		return Outcome{}, err
	}
	n.logger.Info("Path noted", "path", path)
	outcome.Status = Noted
	return outcome, nil
}

// canonicalize returns the absolute path with every symlink and "."/".."
// component resolved.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
