// Package hooks runs the user's lifecycle hook commands inside a
// workspace.
package hooks

import (
	"context"
	"strings"

	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/system"
)

// Environment variables exported to every hook.
const (
	EnvRootPath      = "GROVE_ROOT_PATH"
	EnvWorkspacePath = "GROVE_WORKSPACE_PATH"
	EnvBaseBranch    = "GROVE_BASE_BRANCH"
	EnvWorkspaceName = "GROVE_WORKSPACE_NAME"
)

// Context describes the workspace a hook runs for.
type Context struct {
	RootPath      string
	WorkspacePath string
	BaseBranch    string
	WorkspaceName string
}

// Env returns the hook environment as KEY=VALUE entries.
func (c Context) Env() []string {
	return []string{
		EnvRootPath + "=" + c.RootPath,
		EnvWorkspacePath + "=" + c.WorkspacePath,
		EnvBaseBranch + "=" + c.BaseBranch,
		EnvWorkspaceName + "=" + c.WorkspaceName,
	}
}

// Result is the outcome of one hook command.
type Result struct {
	Command string
	Output  string
	Err     error
}

// Runner executes hook commands with sh -c.
type Runner struct {
	exec system.CommandExecutor
}

// NewRunner returns a Runner using exec.
func NewRunner(exec system.CommandExecutor) *Runner {
	return &Runner{exec: exec}
}

// Run executes each command in order inside the workspace directory.
// A failing hook is reported as a warning and does not stop the rest.
func (r *Runner) Run(ctx context.Context, phase string, commands []string, hc Context) []Result {
	results := make([]Result, 0, len(commands))
	for _, command := range commands {
		logging.Debug("running hook", "phase", phase, "command", command, "dir", hc.WorkspacePath)
		out, err := r.exec.ExecuteIn(ctx, hc.WorkspacePath, hc.Env(), "sh", "-c", command)
		res := Result{Command: command, Output: strings.TrimSpace(string(out)), Err: err}
		if err != nil {
			logging.UserWarning("%s hook %q failed: %v", phase, command, err)
			if res.Output != "" {
				logging.Debug("hook output", "output", res.Output)
			}
		}
		results = append(results, res)
	}
	return results
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
