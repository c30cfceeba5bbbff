package cmd

import (
	"github.com/firefly-engineering/grove/internal/app"
	"github.com/firefly-engineering/grove/internal/lifecycle"
	"github.com/firefly-engineering/grove/internal/terminal"
)

// manager returns the lifecycle manager of the current repository.
func manager() *lifecycle.Manager {
	return app.Default.Manager
}

// interactive reports whether prompts and the picker can be shown.
func interactive() bool {
	return app.Default != nil && app.Default.Term.Interactive()
}

// confirm asks a yes/no question on the application's streams.
func confirm(prompt string) bool {
	a := app.Default
	return terminal.Confirm(a.Stdin, a.Stdout, prompt)
}

// reportEntered tells the user where a lifecycle operation left them.
func reportEntered(res *lifecycle.Result) {
	if res == nil {
		return
	}
	switch {
	case res.Attached:
		logSuccess("Detached from %s", res.Session.TmuxSession)
	case res.Session != nil:
		logInfo("Session %s is running", res.Session.TmuxSession)
	default:
		logInfo("Workspace %s is at %s", res.Name, res.Path)
	}
}

// prompt reads one line of input after printing label.
func prompt(label string) string {
	a := app.Default
	return terminal.ReadLine(a.Stdin, a.Stdout, label)
}
