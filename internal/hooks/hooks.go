// Package hooks embeds the shell and editor snippets printed by "memy hook".
package hooks

import (
	"embed"
	"errors"
	"io/fs"
	"slices"
)

//go:embed scripts/*
var scripts embed.FS

// ErrUnknown is returned by Get for a name with no embedded hook.
var ErrUnknown = errors.New("unknown hook")

// Names returns the available hook names, sorted.
func Names() []string {
	entries, err := fs.ReadDir(scripts, "scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// Get returns the content of the named hook.
func Get(name string) (string, error) {
	if !slices.Contains(Names(), name) {
		return "", ErrUnknown
	}
	b, err := scripts.ReadFile("scripts/" + name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
