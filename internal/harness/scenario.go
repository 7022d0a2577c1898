package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/andrewferrier/memy/internal/config"
)

// Scenario defines an end-to-end memy scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Files and Dirs are created in the workspace before the first step.
	// Paths are relative to the workspace.
	Files []string `yaml:"files,omitempty"`
	Dirs  []string `yaml:"dirs,omitempty"`

	// Config holds memy.toml overrides, applied as "key=value" in key order.
	Config map[string]string `yaml:"config,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final database contents.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one action. Exactly one field is set.
type Step struct {
	// Note notes the given workspace-relative paths in one invocation.
	Note []string `yaml:"note,omitempty"`

	// List lists the database and optionally checks the order.
	List *ListStep `yaml:"list,omitempty"`

	// Advance moves the clock forward by a duration such as "1h" or "31d".
	Advance string `yaml:"advance,omitempty"`

	// Remove deletes a workspace path.
	Remove string `yaml:"remove,omitempty"`

	// Create creates an empty file; Mkdir creates a directory.
	Create string `yaml:"create,omitempty"`
	Mkdir  string `yaml:"mkdir,omitempty"`
}

// ListStep selects list options and the expected result order.
type ListStep struct {
	FilesOnly       bool   `yaml:"files_only,omitempty"`
	DirectoriesOnly bool   `yaml:"directories_only,omitempty"`
	NewerThan       string `yaml:"newer_than,omitempty"`

	// Expect is the full expected order, lowest frecency first. When nil
	// the order is recorded in the trace but not checked.
	Expect []string `yaml:"expect,omitempty"`
}

// Assertion validates the final database.
type Assertion struct {
	// Type specifies the assertion type:
	// - "stored": Path is in the database with noted count Count
	// - "absent": Path is not in the database
	// - "total": the database holds exactly Count paths
	Type string `yaml:"type"`

	// Path is workspace-relative (used by stored and absent).
	Path string `yaml:"path,omitempty"`

	// Count is the expected noted count (stored) or number of paths (total).
	Count int64 `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStored = "stored"
	AssertAbsent = "absent"
	AssertTotal  = "total"
)

// Step kinds as recorded in the trace.
const (
	StepNote    = "note"
	StepList    = "list"
	StepAdvance = "advance"
	StepRemove  = "remove"
	StepCreate  = "create"
	StepMkdir   = "mkdir"
)

// Kind returns which action the step performs.
func (s *Step) Kind() string {
	switch {
	case s.Note != nil:
		return StepNote
	case s.List != nil:
		return StepList
	case s.Advance != "":
		return StepAdvance
	case s.Remove != "":
		return StepRemove
	case s.Create != "":
		return StepCreate
	case s.Mkdir != "":
		return StepMkdir
	}
	return ""
}

func (s *Step) fieldCount() int {
	n := 0
	for _, set := range []bool{s.Note != nil, s.List != nil, s.Advance != "", s.Remove != "", s.Create != "", s.Mkdir != ""} {
		if set {
			n++
		}
	}
	return n
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields so typos like "asertions:" fail loudly
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, p := range append(append([]string{}, s.Files...), s.Dirs...) {
		if err := validateRelative(p); err != nil {
			return err
		}
	}

	for key := range s.Config {
		if !config.IsKnownKey(key) {
			return fmt.Errorf("config: unknown configuration key %q", key)
		}
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	switch s.fieldCount() {
	case 0:
		return fmt.Errorf("steps[%d]: one of note, list, advance, remove, create or mkdir is required", index)
	case 1:
	default:
		return fmt.Errorf("steps[%d]: only one action per step", index)
	}

	switch s.Kind() {
	case StepNote:
		if len(s.Note) == 0 {
			return fmt.Errorf("steps[%d]: note requires at least one path", index)
		}
	case StepList:
		if s.List.FilesOnly && s.List.DirectoriesOnly {
			return fmt.Errorf("steps[%d]: files_only and directories_only are mutually exclusive", index)
		}
	case StepAdvance:
		if _, err := str2duration.ParseDuration(s.Advance); err != nil {
			return fmt.Errorf("steps[%d]: invalid advance duration %q: %w", index, s.Advance, err)
		}
	case StepRemove:
		return validateRelative(s.Remove)
	case StepCreate:
		return validateRelative(s.Create)
	case StepMkdir:
		return validateRelative(s.Mkdir)
	}
	return nil
}

// validateRelative keeps created and removed paths inside the workspace.
func validateRelative(p string) error {
	if p == "" || filepath.IsAbs(p) || !filepath.IsLocal(p) {
		return fmt.Errorf("path %q must be relative to the workspace", p)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStored:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for stored", index)
		}
		if a.Count <= 0 {
			return fmt.Errorf("assertions[%d]: count must be positive for stored", index)
		}
	case AssertAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for absent", index)
		}
	case AssertTotal:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for total", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
