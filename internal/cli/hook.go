package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewferrier/memy/internal/hooks"
)

// NewHookCommand creates the hook command.
func NewHookCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hook [NAME]",
		Short: "Show contents of a memy hook",
		Long: `Print a shell or editor integration snippet that notes paths as you use
them. Without NAME, list the available hooks.

Example:
  eval "$(memy hook bash)"
  memy hook lfrc >> ~/.config/lf/lfrc`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: hooks.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range hooks.Names() {
					fmt.Fprintln(w, name)
				}
				return nil
			}

			content, err := hooks.Get(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			_, err = fmt.Fprint(w, content)
			return err
		},
	}
}
