// Package denylist decides whether a path is excluded from the store using
// gitignore-syntax patterns rooted at the filesystem root.
package denylist

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Result is the outcome of matching one path against the denylist.
type Result int

const (
	// NoMatch means no pattern applies to the path or any of its parents.
	NoMatch Result = iota
	// Ignored means the deciding pattern denies the path.
	Ignored
	// Whitelisted means the deciding pattern is a "!" negation.
	Whitelisted
)

func (r Result) String() string {
	switch r {
	case Ignored:
		return "ignored"
	case Whitelisted:
		return "whitelisted"
	default:
		return "no-match"
	}
}

// Builtin lists the pseudo-filesystem roots that are always denied. They are
// placed ahead of user patterns so a user "!" rule can override them.
var Builtin = []string{
	"/dev/",
	"/proc/",
	"/sys/",
}

// Matcher is a compiled denylist. The zero value matches nothing.
type Matcher struct {
	patterns []rule
}

// rule is one compiled pattern. A named rule has no slash other than a
// trailing one, so it tests the final component of a path only.
type rule struct {
	pattern gitignore.Pattern
	named   bool
}

// Compile builds a Matcher from the built-in set followed by patterns.
// Blank lines and lines starting with "#" are skipped. A pattern whose glob
// syntax is malformed is reported as an error.
func Compile(patterns []string) (*Matcher, error) {
	all := make([]string, 0, len(Builtin)+len(patterns))
	all = append(all, Builtin...)
	all = append(all, patterns...)

	m := &Matcher{patterns: make([]rule, 0, len(all))}
	for _, line := range all {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := validate(line); err != nil {
			return nil, err
		}
		body := strings.TrimSuffix(strings.TrimRight(strings.TrimPrefix(line, "!"), " "), "/")
		m.patterns = append(m.patterns, rule{
			pattern: gitignore.ParsePattern(line, nil),
			named:   !strings.Contains(body, "/"),
		})
	}
	return m, nil
}

// validate rejects a pattern containing a segment filepath.Match cannot
// parse. The gitignore package treats such segments as silent non-matches.
func validate(line string) error {
	body := strings.TrimPrefix(line, "!")
	for _, seg := range strings.Split(body, "/") {
		if seg == "" || seg == "**" {
			continue
		}
		if _, err := filepath.Match(seg, ""); err != nil {
			return fmt.Errorf("denylist pattern %q is not valid: %w", line, err)
		}
	}
	return nil
}

// Match tests path and then each parent directory, nearest first, against
// the denylist. The first level with an applicable pattern decides, and
// within a level the last applicable pattern wins. isDir reports whether
// path itself is a directory; parents always are.
func (m *Matcher) Match(path string, isDir bool) Result {
	if m == nil || len(m.patterns) == 0 {
		return NoMatch
	}

	parts := split(path)
	for n := len(parts); n > 0; n-- {
		if r := m.matchLevel(parts[:n], isDir || n < len(parts)); r != NoMatch {
			return r
		}
	}
	return NoMatch
}

func (m *Matcher) matchLevel(parts []string, isDir bool) Result {
	for i := len(m.patterns) - 1; i >= 0; i-- {
		switch m.patterns[i].matchExact(parts, isDir) {
		case gitignore.Exclude:
			return Ignored
		case gitignore.Include:
			return Whitelisted
		}
	}
	return NoMatch
}

// matchExact reports a match only when the rule applies to parts itself
// and not merely to one of its parents.
func (r rule) matchExact(parts []string, isDir bool) gitignore.MatchResult {
	if r.named {
		return r.pattern.Match(parts[len(parts)-1:], isDir)
	}
	result := r.pattern.Match(parts, isDir)
	if result == gitignore.NoMatch || len(parts) == 1 {
		return result
	}
	if r.pattern.Match(parts[:len(parts)-1], true) != gitignore.NoMatch {
		return gitignore.NoMatch
	}
	return result
}

func split(path string) []string {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return nil
	}
	return strings.Split(cleaned, "/")
}
