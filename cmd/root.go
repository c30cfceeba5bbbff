package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
)

// annotationRepoOptional marks commands that also run outside a repository.
const annotationRepoOptional = "grove/repo-optional"

var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "Parallel git workspaces with tmux sessions",
	Long: `grove runs several lines of work on one repository side by side.

Each workspace is:
  - A git worktree next to the repository, on its own branch
  - A tmux session with a shell, a coding assistant and an optional dev server
  - Metadata in the repository's git config, cleaned up on stop

Shell integration: set GROVE_CD_FILE to a file your shell reads after
grove exits to follow it into workspaces.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)
		return loadApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadApp builds the application context for the repository containing
// the working directory, unless one is already set.
func loadApp(cmd *cobra.Command) error {
	if app.Default != nil {
		return nil
	}
	a, err := app.New(cmd.Context())
	if err != nil {
		if cmd.Annotations[annotationRepoOptional] == "true" {
			logging.Debug("running outside a repository", "error", err)
			return nil
		}
		return err
	}
	app.SetDefault(a)
	return nil
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
