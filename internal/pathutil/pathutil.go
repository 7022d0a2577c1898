// Package pathutil handles the home-directory shorthand in user-facing paths.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const tilde = "~"

// ExpandTilde replaces a leading "~" component with the home directory.
// "~user" forms and paths without a leading "~" are returned unchanged, as
// is every path when the home directory cannot be determined.
func ExpandTilde(path string) string {
	if path != tilde && !strings.HasPrefix(path, tilde+string(filepath.Separator)) {
		return path
	}
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, path[len(tilde):])
}

// CollapseTilde rewrites a path inside the home directory to start with "~".
func CollapseTilde(path string) string {
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return path
	}
	home = filepath.Clean(home)
	if path == home {
		return tilde
	}
	if rest, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok && home != string(filepath.Separator) {
		return tilde + string(filepath.Separator) + rest
	}
	return path
}
