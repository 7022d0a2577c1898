package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xhit/go-str2duration/v2"

	"github.com/andrewferrier/memy/internal/config"
	"github.com/andrewferrier/memy/internal/denylist"
	"github.com/andrewferrier/memy/internal/list"
	"github.com/andrewferrier/memy/internal/note"
	"github.com/andrewferrier/memy/internal/store"
	"github.com/andrewferrier/memy/internal/testutil"
	"github.com/andrewferrier/memy/internal/timeutil"
)

// Harness executes the steps of one scenario.
type Harness struct {
	work   string
	store  *store.Store
	cfg    *config.Config
	deny   *denylist.Matcher
	clock  *testutil.FakeClock
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary workspace and database that are
// removed afterwards. The clock starts at testutil.Epoch.
//
// Execution flow:
// 1. Create the workspace, its files and directories
// 2. Load configuration from the scenario's overrides
// 3. Execute steps, checking list expectations
// 4. Capture the final database and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	root, err := os.MkdirTemp("", "memy-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	defer os.RemoveAll(root)

	// Resolve symlinks so canonicalized paths stay under the workspace
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	work := filepath.Join(root, "work")
	dbDir := filepath.Join(root, "db")
	for _, dir := range []string{work, dbDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workspace: %w", err)
		}
	}

	h := &Harness{
		work:   work,
		clock:  testutil.NewFakeClock(testutil.Epoch),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in scenarios
	}

	for _, f := range scenario.Files {
		if err := h.create(f); err != nil {
			return nil, err
		}
	}
	for _, d := range scenario.Dirs {
		if err := h.mkdir(d); err != nil {
			return nil, err
		}
	}

	h.cfg, err = config.Load("", overrides(scenario.Config))
	if err != nil {
		return nil, err
	}
	h.deny, err = denylist.Compile(h.cfg.Denylist)
	if err != nil {
		return nil, err
	}

	h.store, err = store.Open(dbDir, store.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	ctx := context.Background()
	result := NewResult()
	for i := range scenario.Steps {
		if err := h.executeStep(ctx, &scenario.Steps[i], result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	result.State, err = h.state(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// overrides turns the scenario config map into overrides in key order, so
// runs are reproducible.
func overrides(m map[string]string) []config.Override {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]config.Override, 0, len(keys))
	for _, k := range keys {
		out = append(out, config.Override{Key: k, Value: m[k]})
	}
	return out
}

func (h *Harness) executeStep(ctx context.Context, step *Step, result *Result) error {
	switch step.Kind() {
	case StepNote:
		return h.note(ctx, step.Note, result)
	case StepList:
		return h.list(ctx, step.List, result)
	case StepAdvance:
		d, err := str2duration.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		h.clock.Advance(d)
		result.AddTrace(StepAdvance, map[string]any{
			"duration": step.Advance,
			"now":      h.clock.Unix(),
		}, nil)
	case StepRemove:
		if err := os.RemoveAll(h.abs(step.Remove)); err != nil {
			return err
		}
		result.AddTrace(StepRemove, map[string]any{"path": step.Remove}, nil)
	case StepCreate:
		if err := h.create(step.Create); err != nil {
			return err
		}
		result.AddTrace(StepCreate, map[string]any{"path": step.Create}, nil)
	case StepMkdir:
		if err := h.mkdir(step.Mkdir); err != nil {
			return err
		}
		result.AddTrace(StepMkdir, map[string]any{"path": step.Mkdir}, nil)
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

func (h *Harness) note(ctx context.Context, paths []string, result *Result) error {
	inputs := make([]string, len(paths))
	for i, p := range paths {
		inputs[i] = h.abs(p)
	}

	noter := note.New(h.store, h.cfg, h.deny,
		note.WithClock(h.clock.Now),
		note.WithLogger(h.logger),
	)
	outcomes, err := noter.Note(ctx, inputs)
	if err != nil {
		return err
	}

	output := make([]any, len(outcomes))
	for i, o := range outcomes {
		output[i] = map[string]any{
			"path":   h.rel(o.Path),
			"status": o.Status.String(),
		}
	}
	result.AddTrace(StepNote, map[string]any{"paths": paths}, output)
	return nil
}

func (h *Harness) list(ctx context.Context, step *ListStep, result *Result) error {
	opts := list.Options{
		FilesOnly:       step.FilesOnly,
		DirectoriesOnly: step.DirectoriesOnly,
	}
	args := map[string]any{
		"files_only":       step.FilesOnly,
		"directories_only": step.DirectoriesOnly,
	}
	if step.NewerThan != "" {
		cutoff, err := timeutil.ParseNewerThan(step.NewerThan, h.clock.Now())
		if err != nil {
			return err
		}
		opts.NewerThan = &cutoff
		args["newer_than"] = step.NewerThan
	}

	lister := list.New(h.store, h.cfg, h.deny,
		list.WithClock(h.clock.Now),
		list.WithLogger(h.logger),
	)
	results, err := lister.List(ctx, opts)
	if err != nil {
		return err
	}

	got := make([]string, len(results))
	output := make([]any, len(results))
	for i, r := range results {
		got[i] = h.rel(r.Path)
		output[i] = map[string]any{
			"path":      got[i],
			"count":     r.Count,
			"frecency":  strconv.FormatFloat(r.Frecency, 'f', -1, 64),
			"file_type": string(r.FileType),
		}
	}
	result.AddTrace(StepList, args, output)

	if step.Expect != nil && !slices.Equal(got, step.Expect) {
		result.AddError(fmt.Sprintf("list at seq %d: expected order %v, got %v",
			len(result.Trace), step.Expect, got))
	}
	return nil
}

func (h *Harness) state(ctx context.Context) ([]StoredPath, error) {
	records, err := h.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	state := make([]StoredPath, len(records))
	for i, r := range records {
		state[i] = StoredPath{
			Path:               h.rel(r.Path),
			NotedCount:         r.NotedCount,
			LastNotedTimestamp: r.LastNotedTimestamp,
		}
	}
	return state, nil
}

func (h *Harness) create(p string) error {
	path := h.abs(p)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, nil, 0o644)
}

func (h *Harness) mkdir(p string) error {
	return os.MkdirAll(h.abs(p), 0o755)
}

// abs resolves a workspace-relative path. Absolute and "~" paths pass
// through unchanged.
func (h *Harness) abs(p string) string {
	if filepath.IsAbs(p) || p == "~" || strings.HasPrefix(p, "~/") {
		return p
	}
	return filepath.Join(h.work, p)
}

// rel makes a path inside the workspace relative to it.
func (h *Harness) rel(p string) string {
	rel, err := filepath.Rel(h.work, p)
	if err != nil || !filepath.IsLocal(rel) {
		return p
	}
	return rel
}
