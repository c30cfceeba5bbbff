package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/audit"
)

var eventsCmd = &cobra.Command{
	Use:   "events [name]",
	Short: "Display the lifecycle events of this repository",
	Long: `Prints the recorded start, resume, stop, submit and cleanup events,
oldest first. With a name only that workspace's events are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

var eventsJSON bool

func init() {
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output events as JSON lines")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	log := app.Default.Audit

	var (
		events []audit.Event
		err    error
	)
	if len(args) == 1 {
		events, err = log.For(args[0])
	} else {
		events, err = log.Events()
	}
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}

	if len(events) == 0 {
		if len(args) == 1 {
			logInfo("No events found for workspace %s", args[0])
		} else {
			logInfo("No events recorded yet")
		}
		return nil
	}

	out := cmd.OutOrStdout()
	for _, e := range events {
		if eventsJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}
		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		target := e.Workspace
		if target == "" {
			target = "-"
		}
		if e.Details != "" {
			fmt.Fprintf(out, "[%s] %-8s %s (%s)\n", ts, e.Type, target, e.Details)
		} else {
			fmt.Fprintf(out, "[%s] %-8s %s\n", ts, e.Type, target)
		}
	}

	return nil
}
