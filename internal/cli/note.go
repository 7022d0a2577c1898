package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrewferrier/memy/internal/note"
)

// NewNoteCommand creates the note command.
func NewNoteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note <PATHS...>",
		Short: "Note usage of (add to database) one or more paths",
		Long: `Note usage of one or more paths.

Each existing, non-denied path has its count incremented and its last noted
time set to now. Missing and denied paths are skipped with a warning. All
paths in one invocation are recorded together or not at all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNote(rootOpts, cmd, args)
		},
	}
}

func runNote(opts *RootOptions, cmd *cobra.Command, paths []string) error {
	if len(paths) == 0 {
		return note.ErrNoPaths
	}

	s, err := opts.openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	noter := note.New(s.store, s.cfg, s.deny,
		note.WithClock(opts.now),
		note.WithLogger(opts.logger),
	)
	_, err = noter.Note(cmd.Context(), paths)
	return err
}
