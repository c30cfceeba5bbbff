package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/health"
)

var setupDefaults bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Prepare the repository for grove",
	Long: `Writes a grove configuration for this repository and creates the
workspace root.

The configuration is built interactively unless --defaults is given or
the terminal is not interactive. An existing configuration file is used as
the starting point.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupDefaults, "defaults", false, "Write the default configuration without asking")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	a := app.Default
	path := a.Paths.ConfigFile

	if setupDefaults || !interactive() {
		cfg := a.Config
		if cfg == nil {
			cfg = config.Default()
		}
		if err := cfg.Save(path); err != nil {
			return errors.ConfigError("failed to save config", err)
		}
		logSuccess("Saved %s", path)
	} else if err := editConfig(a.Config, path); err != nil {
		return err
	}

	// The root follows the saved configuration.
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	root := config.NewPaths(a.Paths.RepoRoot, a.Paths.GitCommonDir, cfg).WorkspaceRoot
	if err := a.FS.MkdirAll(root, 0755); err != nil {
		return errors.Wrap(errors.KindGeneral, "failed to create workspace root", err)
	}
	logSuccess("Workspaces will be created in %s", root)

	report := a.Health().Run(cmd.Context())
	for _, c := range report.Checks {
		if c.Status != health.StatusOK {
			logWarning("%s: %s", c.Name, c.Detail)
		}
	}
	logInfo("Start a workspace with: grove start <name>")
	return nil
}
