package list

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewferrier/memy/internal/config"
	"github.com/andrewferrier/memy/internal/denylist"
	"github.com/andrewferrier/memy/internal/store"
	"github.com/andrewferrier/memy/internal/testutil"
	"github.com/andrewferrier/memy/internal/timeutil"
)

type fixture struct {
	root  string
	store *store.Store
	clock *testutil.FakeClock
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := testutil.TempDir(t)
	s, err := store.Open(testutil.Mkdir(t, filepath.Join(root, "db")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return &fixture{
		root:  root,
		store: s,
		clock: testutil.NewFakeClock(time.Time{}),
		logs:  &bytes.Buffer{},
	}
}

// note writes path to the store at the current fake time.
func (f *fixture) note(t *testing.T, paths ...string) {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()
	for _, p := range paths {
		require.NoError(t, tx.Note(ctx, p, f.clock.Unix()))
	}
	require.NoError(t, tx.Commit())
}

func (f *fixture) lister(t *testing.T, cfg *config.Config) *Lister {
	t.Helper()
	deny, err := denylist.Compile(cfg.Denylist)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(f.store, cfg, deny, WithClock(f.clock.Now), WithLogger(logger))
}

func (f *fixture) list(t *testing.T, cfg *config.Config, opts Options) []Result {
	t.Helper()
	results, err := f.lister(t, cfg).List(context.Background(), opts)
	require.NoError(t, err)
	return results
}

func (f *fixture) stored(t *testing.T) map[string]store.PathRecord {
	t.Helper()
	records, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)
	m := make(map[string]store.PathRecord, len(records))
	for _, r := range records {
		m[r.Path] = r
	}
	return m
}

func paths(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Path
	}
	return out
}

func TestList_Empty(t *testing.T) {
	f := newFixture(t)

	results := f.list(t, config.Default(), Options{})
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestList_MoreRecentRanksLast(t *testing.T) {
	f := newFixture(t)
	a := testutil.Touch(t, filepath.Join(f.root, "a"))
	b := testutil.Touch(t, filepath.Join(f.root, "b"))

	f.note(t, a)
	f.clock.Advance(time.Hour)
	f.note(t, b)

	results := f.list(t, config.Default(), Options{})
	require.Equal(t, []string{a, b}, paths(results))
	assert.Equal(t, 0.5, results[0].Frecency)
	assert.Equal(t, 1.0, results[1].Frecency)
}

func TestList_ResultFields(t *testing.T) {
	f := newFixture(t)
	dir := testutil.Mkdir(t, filepath.Join(f.root, "dir"))
	file := testutil.Touch(t, filepath.Join(f.root, "file"))

	f.note(t, dir, file)
	f.note(t, dir)

	results := f.list(t, config.Default(), Options{})
	require.Len(t, results, 2)

	byPath := map[string]Result{}
	for _, r := range results {
		byPath[r.Path] = r
	}
	assert.Equal(t, int64(2), byPath[dir].Count)
	assert.Equal(t, Dir, byPath[dir].FileType)
	assert.Equal(t, int64(1), byPath[file].Count)
	assert.Equal(t, File, byPath[file].FileType)
	assert.Equal(t, timeutil.ISO8601(f.clock.Unix()), byPath[dir].LastNoted)
}

func TestList_TiesKeepStorageOrder(t *testing.T) {
	f := newFixture(t)
	var want []string
	for _, name := range []string{"c", "a", "b", "d"} {
		p := testutil.Touch(t, filepath.Join(f.root, name))
		f.note(t, p)
		want = append(want, p)
	}

	results := f.list(t, config.Default(), Options{})
	assert.Equal(t, want, paths(results))
	for _, r := range results {
		assert.Equal(t, 0.5, r.Frecency)
	}
}

func TestList_RecencyBias(t *testing.T) {
	f := newFixture(t)
	twice := testutil.Touch(t, filepath.Join(f.root, "twice"))
	once := testutil.Touch(t, filepath.Join(f.root, "once"))

	f.note(t, twice)
	f.note(t, twice)
	f.clock.Advance(2 * time.Hour)
	f.note(t, once)

	cfg := config.Default()
	cfg.RecencyBias = 0
	assert.Equal(t, []string{once, twice}, paths(f.list(t, cfg, Options{})))

	cfg.RecencyBias = 1
	assert.Equal(t, []string{twice, once}, paths(f.list(t, cfg, Options{})))
}

func TestList_MissingFileEviction(t *testing.T) {
	tests := []struct {
		name      string
		ageDays   int
		threshold int64
		wantKept  bool
	}{
		{"old enough", 45, 30, false},
		{"too recent", 29, 30, true},
		{"exactly at threshold", 30, 30, true},
		{"one past threshold", 31, 30, false},
		{"zero threshold same day", 0, 0, true},
		{"zero threshold next day", 1, 0, false},
		{"disabled", 1000, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			gone := testutil.Touch(t, filepath.Join(f.root, "gone"))
			f.note(t, gone)
			require.NoError(t, os.Remove(gone))
			f.clock.Advance(testutil.Days(tt.ageDays))

			cfg := config.Default()
			cfg.MissingFilesDeleteFromDBAfter = tt.threshold

			results := f.list(t, cfg, Options{})
			assert.Empty(t, results)

			_, kept := f.stored(t)[gone]
			assert.Equal(t, tt.wantKept, kept)
			if kept {
				assert.Contains(t, f.logs.String(), "retained but skipped")
			} else {
				assert.Contains(t, f.logs.String(), "removed from database")
			}
		})
	}
}

func TestList_MissingFileComesBack(t *testing.T) {
	f := newFixture(t)
	p := testutil.Touch(t, filepath.Join(f.root, "flaky"))
	f.note(t, p)
	require.NoError(t, os.Remove(p))

	assert.Empty(t, f.list(t, config.Default(), Options{}))

	testutil.Touch(t, p)
	assert.Equal(t, []string{p}, paths(f.list(t, config.Default(), Options{})))
}

func TestList_DeniedPolicies(t *testing.T) {
	tests := []struct {
		policy   config.DeniedPolicy
		wantKept bool
		wantLog  string
	}{
		{config.DeniedDelete, false, "deleted from database"},
		{config.DeniedWarn, true, "remaining in database"},
		{config.DeniedSkipSilently, true, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			f := newFixture(t)
			denied := testutil.Touch(t, filepath.Join(f.root, "a.txt"))
			allowed := testutil.Touch(t, filepath.Join(f.root, "a.md"))
			f.note(t, denied, allowed)

			cfg := config.Default()
			cfg.Denylist = []string{"*.txt"}
			cfg.DeniedFilesOnList = tt.policy

			assert.Equal(t, []string{allowed}, paths(f.list(t, cfg, Options{})))

			_, kept := f.stored(t)[denied]
			assert.Equal(t, tt.wantKept, kept)
			if tt.wantLog != "" {
				assert.Contains(t, f.logs.String(), tt.wantLog)
			} else {
				assert.NotContains(t, f.logs.String(), "denied")
			}
		})
	}
}

func TestList_DirectoryOnlyPattern(t *testing.T) {
	f := newFixture(t)
	dir := testutil.Mkdir(t, filepath.Join(f.root, "build"))
	file := testutil.Touch(t, filepath.Join(f.root, "other", "build"))
	f.note(t, dir, file)

	cfg := config.Default()
	cfg.Denylist = []string{"build/"}

	assert.Equal(t, []string{file}, paths(f.list(t, cfg, Options{})))
	assert.NotContains(t, f.stored(t), dir)
}

func TestList_FileTypeFilters(t *testing.T) {
	f := newFixture(t)
	dir := testutil.Mkdir(t, filepath.Join(f.root, "dir"))
	file := testutil.Touch(t, filepath.Join(f.root, "file"))
	f.note(t, dir, file)

	assert.Equal(t, []string{file}, paths(f.list(t, config.Default(), Options{FilesOnly: true})))
	assert.Equal(t, []string{dir}, paths(f.list(t, config.Default(), Options{DirectoriesOnly: true})))
	assert.Len(t, f.stored(t), 2)
}

func TestList_NewerThan(t *testing.T) {
	f := newFixture(t)
	old := testutil.Touch(t, filepath.Join(f.root, "old"))
	gone := testutil.Touch(t, filepath.Join(f.root, "gone"))
	f.note(t, old, gone)
	require.NoError(t, os.Remove(gone))

	f.clock.Advance(testutil.Days(60))
	recent := testutil.Touch(t, filepath.Join(f.root, "recent"))
	f.note(t, recent)

	cutoff := f.clock.Unix() - 86400
	results := f.list(t, config.Default(), Options{NewerThan: &cutoff})
	assert.Equal(t, []string{recent}, paths(results))

	// Filtered records are not evicted even though gone is stale.
	assert.Contains(t, f.stored(t), gone)

	// Corpus statistics still include the filtered records.
	assert.Equal(t, 0.5+0.5*1, results[0].Frecency)
}

func TestList_NewerThanBoundaryInclusive(t *testing.T) {
	f := newFixture(t)
	p := testutil.Touch(t, filepath.Join(f.root, "p"))
	f.note(t, p)

	cutoff := f.clock.Unix()
	assert.Len(t, f.list(t, config.Default(), Options{NewerThan: &cutoff}), 1)

	cutoff++
	assert.Empty(t, f.list(t, config.Default(), Options{NewerThan: &cutoff}))
}

func TestList_CorpusIncludesEvictedRecords(t *testing.T) {
	f := newFixture(t)
	gone := testutil.Touch(t, filepath.Join(f.root, "gone"))
	f.note(t, gone, gone, gone, gone)
	require.NoError(t, os.Remove(gone))

	f.clock.Advance(testutil.Days(40))
	p := testutil.Touch(t, filepath.Join(f.root, "p"))
	f.note(t, p)

	results := f.list(t, config.Default(), Options{})
	require.Equal(t, []string{p}, paths(results))
	assert.NotContains(t, f.stored(t), gone)

	// freq = 1/4 against the evicted record, recency = 1.
	assert.Equal(t, 0.5*0.25+0.5*1, results[0].Frecency)
}

func TestList_NegativeTimestamps(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(time.Unix(-86400*365, 0))
	a := testutil.Touch(t, filepath.Join(f.root, "a"))
	f.note(t, a)

	f.clock.Set(time.Unix(0, 0))
	b := testutil.Touch(t, filepath.Join(f.root, "b"))
	f.note(t, b)

	assert.Equal(t, []string{a, b}, paths(f.list(t, config.Default(), Options{})))
}

func TestFileTypeOf(t *testing.T) {
	assert.Equal(t, Dir, fileTypeOf(os.ModeDir|0o755))
	assert.Equal(t, File, fileTypeOf(0o644))
	assert.Equal(t, Symlink, fileTypeOf(os.ModeSymlink|0o777))
	assert.Equal(t, Other, fileTypeOf(os.ModeNamedPipe))
}
