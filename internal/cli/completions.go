package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
)

// CompletionShells are the shells completions can be generated for.
var CompletionShells = []string{"bash", "zsh", "fish", "powershell"}

// NewCompletionsCommand creates the completions command.
func NewCompletionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "completions [SHELL]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for SHELL, one of bash, zsh, fish or
powershell. Without SHELL, the shell is taken from $SHELL.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: CompletionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := ""
			if len(args) == 1 {
				shell = args[0]
			} else {
				shell = detectShell()
			}
			if shell == "" {
				return NewExitError(ExitCommandError, "could not determine shell, specify one explicitly")
			}
			return writeCompletions(cmd.Root(), shell, cmd.OutOrStdout())
		},
	}
}

// detectShell returns the basename of $SHELL if it is a supported shell.
func detectShell() string {
	shell := filepath.Base(os.Getenv("SHELL"))
	if slices.Contains(CompletionShells, shell) {
		return shell
	}
	return ""
}

func writeCompletions(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unsupported shell %q: must be one of bash, zsh, fish, powershell", shell))
	}
}
