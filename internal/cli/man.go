package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/andrewferrier/memy/internal/config"
)

// NewManCommand creates the hidden man command used when packaging.
func NewManCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:    "man <dir>",
		Short:  "Write man pages to a directory",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeManPages(cmd.Root(), args[0])
		},
	}
}

func writeManPages(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create man directory: %w", err)
	}

	root.DisableAutoGenTag = true
	header := &doc.GenManHeader{Title: "MEMY", Section: "1", Manual: "memy Manual"}
	if err := doc.GenManTree(root, header, dir); err != nil {
		return fmt.Errorf("failed to generate man pages: %w", err)
	}

	return writeConfigManPage(dir)
}

// writeConfigManPage documents memy.toml in section 5 using the template
// printed by generate-config.
func writeConfigManPage(dir string) error {
	tmpl, err := config.Template()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(`% "MEMY.TOML" "5" "" "" "memy Manual"` + "\n")
	b.WriteString("# NAME\n\nmemy.toml - configuration file for memy\n\n")
	b.WriteString("# DESCRIPTION\n\n")
	b.WriteString("The configuration file for memy is written in TOML and is read from ")
	b.WriteString("$MEMY_CONFIG_DIR/memy.toml, or $XDG_CONFIG_HOME/memy/memy.toml by default. ")
	b.WriteString("Below is a template with every option at its default.\n\n")
	b.WriteString("# CONFIGURATION TEMPLATE\n\n```toml\n")
	b.WriteString(strings.TrimRight(tmpl, "\n"))
	b.WriteString("\n```\n")

	page := md2man.Render([]byte(b.String()))
	return os.WriteFile(filepath.Join(dir, "memy.toml.5"), page, 0o644)
}
