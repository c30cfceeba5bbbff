package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/system"
)

// Status represents the outcome of a single check.
type Status string

const (
	StatusOK       Status = "ok"
	StatusMissing  Status = "missing"
	StatusDegraded Status = "degraded"
)

// Check is the result for one dependency.
type Check struct {
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Required bool   `json:"required"`
}

// Report collects all checks.
type Report struct {
	Checks []Check `json:"checks"`
}

// Healthy reports whether every required dependency is present.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Required && c.Status != StatusOK {
			return false
		}
	}
	return true
}

// Get returns the named check.
func (r Report) Get(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// Checker probes the host for the programs grove drives.
type Checker struct {
	exec system.CommandExecutor
	env  agent.Env
	cfg  *config.Config
}

// NewChecker creates a checker. cfg may be nil.
func NewChecker(exec system.CommandExecutor, env agent.Env, cfg *config.Config) *Checker {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Checker{exec: exec, env: env, cfg: cfg}
}

// Run performs all checks.
func (c *Checker) Run(ctx context.Context) Report {
	return Report{Checks: []Check{
		c.tool(ctx, "git", true, "", "--version"),
		c.tool(ctx, "tmux", false, "sessions disabled, start falls back to a directory change", "-V"),
		c.tool(ctx, "gh", false, "submit can push but not open pull requests", "--version"),
		c.assistant(),
		c.editor(),
	}}
}

// tool checks that name is on PATH and reports its version line.
func (c *Checker) tool(ctx context.Context, name string, required bool, degraded string, versionArgs ...string) Check {
	check := Check{Name: name, Required: required}
	if _, err := c.exec.LookPath(name); err != nil {
		if required {
			check.Status = StatusMissing
			check.Detail = fmt.Sprintf("%s not found on PATH", name)
		} else {
			check.Status = StatusDegraded
			check.Detail = degraded
		}
		return check
	}
	check.Status = StatusOK
	if out, err := c.exec.Execute(ctx, name, versionArgs...); err == nil {
		check.Detail = firstLine(string(out))
	}
	return check
}

func (c *Checker) assistant() Check {
	cmd := agent.ResolveAssistant(c.env, c.cfg.AIAgent)
	check := Check{Name: "agent", Status: StatusOK, Detail: fmt.Sprintf("%s (%s)", cmd.Line, cmd.Source)}
	if cmd.Source == "bare" {
		if _, err := c.env.LookPath(cmd.Kind); err != nil {
			check.Status = StatusDegraded
			check.Detail = fmt.Sprintf("%s not found, the agent pane will show a shell error", cmd.Kind)
		}
	}
	return check
}

func (c *Checker) editor() Check {
	cmd, ok := agent.ResolveEditor(c.env, c.cfg.CodeEditor)
	if !ok {
		return Check{Name: "editor", Status: StatusMissing, Detail: "no editor configured or found, --open is unavailable"}
	}
	return Check{Name: "editor", Status: StatusOK, Detail: fmt.Sprintf("%s (%s)", cmd.Line, cmd.Source)}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatAge renders a duration in the compact form used by list output.
func FormatAge(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
