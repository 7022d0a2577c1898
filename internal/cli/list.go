package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrewferrier/memy/internal/list"
	"github.com/andrewferrier/memy/internal/output"
	"github.com/andrewferrier/memy/internal/timeutil"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	FilesOnly       bool
	DirectoriesOnly bool
	Format          string
	NewerThan       string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List paths by frecency score",
		Long: `List noted paths that still exist, lowest frecency first so the best
match is at the bottom of the terminal.

Example:
  memy list --directories-only
  memy list --format json --newer-than 4d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.FilesOnly, "files-only", "f", false, "show only files")
	cmd.Flags().BoolVarP(&opts.DirectoriesOnly, "directories-only", "d", false, "show only directories")
	cmd.Flags().StringVar(&opts.Format, "format", string(output.Plain), "output format (plain|csv|json)")
	cmd.Flags().StringVar(&opts.NewerThan, "newer-than", "",
		"only show paths noted after `TIME`: a duration such as 4d or 3h, or a date/time such as 2025-01-01 or 2025-01-01T12:00:00")
	cmd.MarkFlagsMutuallyExclusive("files-only", "directories-only")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	format, err := output.ParseFormat(opts.Format, output.ListFormats)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	listOpts := list.Options{
		FilesOnly:       opts.FilesOnly,
		DirectoriesOnly: opts.DirectoriesOnly,
	}
	if opts.NewerThan != "" {
		cutoff, err := timeutil.ParseNewerThan(opts.NewerThan, opts.now())
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --newer-than", err)
		}
		listOpts.NewerThan = &cutoff
	}

	s, err := opts.openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	lister := list.New(s.store, s.cfg, s.deny,
		list.WithClock(opts.now),
		list.WithLogger(opts.logger),
	)
	results, err := lister.List(cmd.Context(), listOpts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return output.WriteList(w, results, format, output.PlainOptions{
		Color: output.UseColor(opts.colorMode, w),
		Tilde: s.cfg.UseTildeOnList,
	})
}
