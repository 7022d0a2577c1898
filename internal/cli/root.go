package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/andrewferrier/memy/internal/config"
	"github.com/andrewferrier/memy/internal/importer"
	"github.com/andrewferrier/memy/internal/output"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// RootOptions holds global flags for all commands, and the state resolved
// from them before a command runs.
type RootOptions struct {
	Verbose int
	Config  []string
	Color   string

	logger    *slog.Logger
	colorMode output.ColorMode

	// now and importSources are replaced in tests.
	now           func() time.Time
	importSources func() []importer.Source
}

func defaultImportSources() []importer.Source {
	return []importer.Source{
		importer.Fasd(config.FasdFile()),
		importer.Autojump(config.AutojumpFile()),
		importer.Zoxide(),
	}
}

// NewRootCommand creates the root command for the memy CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		now:           time.Now,
		importSources: defaultImportSources,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memy",
		Short: "Track and recall frequently and recently used files or directories",
		Long: `memy records the files and directories you use and lists them ranked by
frecency, a blend of how often and how recently each was noted.

  memy note <PATHS...>   note some paths
  memy list              list noted paths in frecency order`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd, args)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	})

	// Global flags
	flags := cmd.PersistentFlags()
	flags.CountVarP(&opts.Verbose, "verbose", "v", "enable verbose logging (repeat for more)")
	flags.StringArrayVarP(&opts.Config, "config", "c", nil, "override a memy.toml option (`OPTION=VALUE`, repeatable)")
	flags.StringVar(&opts.Color, "color", string(output.ColorAutomatic), "output colorization (always|automatic|never)")
	flags.StringVar(&opts.Color, "colour", string(output.ColorAutomatic), "alias for --color")
	_ = flags.MarkHidden("colour")

	// Add subcommands
	cmd.AddCommand(NewNoteCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewHookCommand(opts))
	cmd.AddCommand(NewGenerateConfigCommand(opts))
	cmd.AddCommand(NewCompletionsCommand(opts))
	cmd.AddCommand(NewManCommand(opts))

	return cmd
}

// resolve validates the global flags and builds the logger.
func (o *RootOptions) resolve(cmd *cobra.Command, args []string) error {
	mode, err := output.ParseColorMode(o.Color)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	o.colorMode = mode

	logger, err := newLogger(cmd.ErrOrStderr(), o.Verbose, mode)
	if err != nil {
		return err
	}
	o.logger = logger

	logger.Debug("Memy version", "version", Version)
	logger.Debug("CLI params parsed", "command", cmd.CommandPath(), "args", args, "config", o.Config)
	return nil
}

// loadConfig reads memy.toml and applies the -c overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	overrides := make([]config.Override, 0, len(o.Config))
	for _, s := range o.Config {
		ov, err := config.ParseOverride(s)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, ov)
	}

	path := config.FilePath()
	o.logger.Debug("Loading configuration", "path", path)
	return config.Load(path, overrides)
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCommand(), os.Stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	logger := log.NewWithOptions(stderr, log.Options{ReportTimestamp: false})
	logger.Error(fmt.Sprint(err))
	return GetExitCode(err)
}
