// Package importer seeds a new memy database from fasd, autojump and zoxide.
package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/andrewferrier/memy/internal/store"
)

// Source yields entries from one external tool. A source that is not
// installed or has no data returns no entries and no error.
type Source interface {
	Name() string
	Entries(ctx context.Context, now int64) ([]Entry, error)
}

// FileSource reads a state file with Parse. A missing file yields nothing.
type FileSource struct {
	Label string
	Path  string
	Parse func(r io.Reader, now int64) ([]Entry, error)
}

// Name implements Source.
func (s *FileSource) Name() string { return s.Label }

// Entries implements Source.
func (s *FileSource) Entries(_ context.Context, now int64) ([]Entry, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Parse(f, now)
}

// Fasd reads fasd's database file.
func Fasd(path string) *FileSource {
	return &FileSource{
		Label: "fasd",
		Path:  path,
		Parse: func(r io.Reader, _ int64) ([]Entry, error) { return ParseFasd(r) },
	}
}

// Autojump reads autojump's database file.
func Autojump(path string) *FileSource {
	return &FileSource{Label: "autojump", Path: path, Parse: ParseScorePath}
}

// CommandSource runs a program and parses its standard output as
// "score path" lines. A program that cannot be started or exits non-zero
// yields nothing.
type CommandSource struct {
	Label string
	Args  []string
}

// Zoxide queries zoxide for every directory it knows with its score.
func Zoxide() *CommandSource {
	return &CommandSource{
		Label: "zoxide",
		Args:  []string{"zoxide", "query", "--list", "--all", "--score"},
	}
}

// Name implements Source.
func (s *CommandSource) Name() string { return s.Label }

// Entries implements Source.
func (s *CommandSource) Entries(ctx context.Context, now int64) ([]Entry, error) {
	if len(s.Args) == 0 {
		return nil, nil
	}
	out, err := exec.CommandContext(ctx, s.Args[0], s.Args[1:]...).Output()
	if err != nil {
		return nil, nil
	}
	return ParseScorePath(bytes.NewReader(out), now)
}

// Report is the outcome of importing one source.
type Report struct {
	Source   string
	Imported int
	Err      error
}

// Importer writes entries from each source into the store.
type Importer struct {
	store   *store.Store
	sources []Source
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock replaces the wall clock used to stamp entries without times.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.now = now }
}

// WithLogger sets the logger for progress and failure messages.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) { i.logger = logger }
}

// New creates an Importer over sources, run in order.
func New(s *store.Store, sources []Source, opts ...Option) *Importer {
	i := &Importer{
		store:   s,
		sources: sources,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run imports every source. Each source goes into its own transaction, and a
// failing source is logged and skipped without affecting the others.
func (i *Importer) Run(ctx context.Context) []Report {
	now := i.now().Unix()
	reports := make([]Report, 0, len(i.sources))
	for _, src := range i.sources {
		n, err := i.runSource(ctx, src, now)
		if err != nil {
			i.logger.Warn("Import failed", "source", src.Name(), "error", err)
		} else if n > 0 {
			i.logger.Info("Imported database", "source", src.Name(), "entries", n)
		}
		reports = append(reports, Report{Source: src.Name(), Imported: n, Err: err})
	}
	return reports
}

func (i *Importer) runSource(ctx context.Context, src Source, now int64) (int, error) {
	entries, err := src.Entries(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	i.logger.Info("Importing database", "source", src.Name())
	tx, err := i.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := tx.Import(ctx, e.Path, e.Count, e.Timestamp); err != nil {
			return 0, err
		}
		i.logger.Debug("Imported entry", "source", src.Name(), "path", e.Path)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}
