package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewferrier/memy/internal/config"
)

// NewGenerateConfigCommand creates the generate-config command.
func NewGenerateConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default memy.toml config file on stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := config.Template()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tmpl)
			return err
		},
	}
}
