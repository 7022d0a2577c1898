package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrewferrier/memy/internal/output"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about noted paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format, output.StatsFormats)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}

			s, err := rootOpts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return output.WriteStats(cmd.OutOrStdout(), stats, f)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(output.Plain), "output format (plain|json)")

	return cmd
}
