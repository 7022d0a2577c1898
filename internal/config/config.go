// Package config loads memy's settings from memy.toml and command-line
// overrides, and renders the commented template written by generate-config.
package config

import (
	"fmt"
	"slices"
	"strings"
)

// DeniedPolicy says what list does with a stored path the denylist now
// rejects.
type DeniedPolicy string

const (
	DeniedSkipSilently DeniedPolicy = "skip-silently"
	DeniedWarn         DeniedPolicy = "warn"
	DeniedDelete       DeniedPolicy = "delete"
)

// DeniedPolicies lists the accepted DeniedPolicy values.
var DeniedPolicies = []DeniedPolicy{DeniedSkipSilently, DeniedWarn, DeniedDelete}

// Config holds every memy setting.
type Config struct {
	ImportOnFirstUse              bool         `mapstructure:"import_on_first_use" toml:"import_on_first_use" json:"import_on_first_use"`
	Denylist                      []string     `mapstructure:"denylist" toml:"denylist" json:"denylist"`
	NormalizeSymlinksOnNote       bool         `mapstructure:"normalize_symlinks_on_note" toml:"normalize_symlinks_on_note" json:"normalize_symlinks_on_note"`
	MissingFilesWarnOnNote        bool         `mapstructure:"missing_files_warn_on_note" toml:"missing_files_warn_on_note" json:"missing_files_warn_on_note"`
	DeniedFilesWarnOnNote         bool         `mapstructure:"denied_files_warn_on_note" toml:"denied_files_warn_on_note" json:"denied_files_warn_on_note"`
	DeniedFilesOnList             DeniedPolicy `mapstructure:"denied_files_on_list" toml:"denied_files_on_list" json:"denied_files_on_list"`
	RecencyBias                   float64      `mapstructure:"recency_bias" toml:"recency_bias" json:"recency_bias"`
	MissingFilesDeleteFromDBAfter int64        `mapstructure:"missing_files_delete_from_db_after" toml:"missing_files_delete_from_db_after" json:"missing_files_delete_from_db_after"`
	UseTildeOnList                bool         `mapstructure:"use_tilde_on_list" toml:"use_tilde_on_list" json:"use_tilde_on_list"`
}

// Keys lists every recognised configuration key in template order.
var Keys = []string{
	"import_on_first_use",
	"denylist",
	"normalize_symlinks_on_note",
	"missing_files_warn_on_note",
	"denied_files_warn_on_note",
	"denied_files_on_list",
	"recency_bias",
	"missing_files_delete_from_db_after",
	"use_tilde_on_list",
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ImportOnFirstUse:              true,
		Denylist:                      []string{},
		NormalizeSymlinksOnNote:       true,
		MissingFilesWarnOnNote:        true,
		DeniedFilesWarnOnNote:         true,
		DeniedFilesOnList:             DeniedDelete,
		RecencyBias:                   0.5,
		MissingFilesDeleteFromDBAfter: 30,
		UseTildeOnList:                false,
	}
}

// defaults maps each key to its default value for viper.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"import_on_first_use":                d.ImportOnFirstUse,
		"denylist":                           d.Denylist,
		"normalize_symlinks_on_note":         d.NormalizeSymlinksOnNote,
		"missing_files_warn_on_note":         d.MissingFilesWarnOnNote,
		"denied_files_warn_on_note":          d.DeniedFilesWarnOnNote,
		"denied_files_on_list":               string(d.DeniedFilesOnList),
		"recency_bias":                       d.RecencyBias,
		"missing_files_delete_from_db_after": d.MissingFilesDeleteFromDBAfter,
		"use_tilde_on_list":                  d.UseTildeOnList,
	}
}

// MissingDeletionEnabled reports whether list may delete missing paths.
func (c *Config) MissingDeletionEnabled() bool {
	return c.MissingFilesDeleteFromDBAfter >= 0
}

// Error describes an invalid configuration file, override or value.
type Error struct {
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", msg, e.Err)
	}
	return "config: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKnownKey reports whether key is a configuration key.
func IsKnownKey(key string) bool {
	return slices.Contains(Keys, key)
}

// Override is one "key=value" setting given on the command line.
type Override struct {
	Key   string
	Value string
}

// ParseOverride splits a "key=value" argument. Surrounding quotes on the
// value are removed.
func ParseOverride(s string) (Override, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Override{}, &Error{Message: fmt.Sprintf("invalid override %q, expected key=value", s)}
	}
	if !IsKnownKey(key) {
		return Override{}, &Error{Field: key, Message: "unknown configuration key"}
	}
	return Override{Key: key, Value: unquote(strings.TrimSpace(value))}, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
