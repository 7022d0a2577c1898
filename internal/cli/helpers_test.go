package cli

import (
	"testing"

	"github.com/mitchellh/go-homedir"
)

// resetHomedir drops go-homedir's cached home so a test's $HOME is seen.
func resetHomedir(t *testing.T) {
	t.Helper()
	homedir.Reset()
	t.Cleanup(homedir.Reset)
}
