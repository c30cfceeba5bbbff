package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/tui"
)

var configShow bool

// runWizard is replaced in tests.
var runWizard = tui.RunWizard

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit or show the repository configuration",
	Long: `Without flags, opens an interactive editor for the repository's grove
configuration and saves it to .grove.json (or the existing .grove.toml).

With --show, prints the effective configuration as YAML, with every
default filled in.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShow, "show", false, "Print the effective configuration")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	a := app.Default

	if configShow {
		data, err := a.Config.YAML()
		if err != nil {
			return errors.ConfigError("failed to render config", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if !interactive() {
		return errors.ValidationError("config editing needs an interactive terminal").
			WithHint("use grove config --show, or edit %s directly", a.Paths.ConfigFile)
	}
	return editConfig(a.Config, a.Paths.ConfigFile)
}

// editConfig runs the wizard from initial and saves the result to path.
func editConfig(initial *config.Config, path string) error {
	cfg, err := runWizard(initial)
	if err != nil {
		return err
	}
	if cfg == nil {
		logInfo("Cancelled, configuration unchanged")
		return nil
	}
	if err := cfg.Save(path); err != nil {
		return errors.ConfigError("failed to save config", err)
	}
	logSuccess("Saved %s", path)
	return nil
}
