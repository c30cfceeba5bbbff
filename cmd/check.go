package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/health"
	"github.com/firefly-engineering/grove/internal/system"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:     "check",
	Aliases: []string{"doctor"},
	Short:   "Check the tools grove depends on",
	Long: `Reports whether the programs grove drives are installed:

  git     - required
  tmux    - sessions are skipped without it
  gh      - submit can only push without it
  agent   - the coding assistant started in each session
  editor  - used by start --open`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRepoOptional: "true"},
	RunE:        runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	var checker *health.Checker
	if a := app.Default; a != nil {
		checker = a.Health()
	} else {
		exec := system.DefaultExecutor()
		checker = health.NewChecker(exec, agent.NewHostEnv(exec), config.Default())
	}

	report := checker.Run(cmd.Context())
	out := cmd.OutOrStdout()

	if checkJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, c := range report.Checks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", formatCheck(c.Status), c.Name, c.Detail)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if !report.Healthy() {
		return errors.New(errors.KindNotFound, "required tools are missing").
			WithHint("install git and run grove check again")
	}
	return nil
}

func formatCheck(status health.Status) string {
	switch status {
	case health.StatusOK:
		return aliveStyle.Render("✓")
	case health.StatusDegraded:
		return staleStyle.Render("⚠")
	case health.StatusMissing:
		return idleStyle.Render("○")
	default:
		return string(status)
	}
}
