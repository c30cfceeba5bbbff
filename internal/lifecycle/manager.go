package lifecycle

import (
	"context"
	"io"
	"os"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/hooks"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/session"
	"github.com/firefly-engineering/grove/internal/system"
	"github.com/firefly-engineering/grove/internal/terminal"
	"github.com/firefly-engineering/grove/internal/workspace"
)

// Deps are the collaborators of a Manager.
type Deps struct {
	Paths    *config.Paths
	Config   *config.Config
	Exec     system.CommandExecutor
	FS       system.FileSystem
	Backend  workspace.Backend
	Registry *workspace.Registry
	Store    metadata.Store
	Sessions *session.Orchestrator
	Hooks    *hooks.Runner
	Audit    *audit.Logger
	Nav      *terminal.Navigator
	Env      agent.Env
	Term     terminal.Info

	// WorkDir is the caller's working directory.
	WorkDir string
	// Confirm asks the user a yes/no question. Nil means always no.
	Confirm func(prompt string) bool
}

// Manager runs workspace lifecycle operations for one repository.
type Manager struct {
	Deps
}

// NewManager creates a Manager.
func NewManager(d Deps) *Manager {
	if d.WorkDir == "" {
		d.WorkDir, _ = os.Getwd()
	}
	if d.Confirm == nil {
		d.Confirm = func(string) bool { return false }
	}
	return &Manager{Deps: d}
}

// ConfirmFrom returns a Confirm function reading answers from in.
func ConfirmFrom(in io.Reader, out io.Writer) func(string) bool {
	return func(prompt string) bool {
		return terminal.Confirm(in, out, prompt)
	}
}

func (m *Manager) record(t audit.EventType, name, details string) {
	if m.Audit == nil {
		return
	}
	if err := m.Audit.LogEvent(t, name, details); err != nil {
		logging.Warn("failed to record event", "type", t, "workspace", name, "error", err)
	}
}

func (m *Manager) hookContext(name, path, base string) hooks.Context {
	return hooks.Context{
		RootPath:      m.Paths.RepoRoot,
		WorkspacePath: path,
		BaseBranch:    base,
		WorkspaceName: name,
	}
}

func (m *Manager) runHooks(ctx context.Context, phase string, commands []string, hc hooks.Context) {
	if len(commands) == 0 || m.Hooks == nil {
		return
	}
	m.Hooks.Run(ctx, phase, commands, hc)
}

// knownNames returns the registered workspace names for hints.
func (m *Manager) knownNames(ctx context.Context) []string {
	names, err := m.Registry.Names(ctx)
	if err != nil {
		logging.Debug("failed to list workspaces", "error", err)
		return nil
	}
	return names
}

// enter puts the user in a workspace: a session when possible, a
// directory change otherwise. It returns the session that was attached or
// created, if any.
func (m *Manager) enter(ctx context.Context, name, path string, noSession bool, opts session.Options) (*metadata.Session, bool) {
	if noSession {
		m.changeDir(path)
		return nil, false
	}
	if !m.Sessions.Available() {
		logging.UserWarning("tmux not found, running without a session")
		m.changeDir(path)
		return nil, false
	}

	sess, err := m.Sessions.Launch(ctx, name, path, opts)
	if err != nil {
		logging.UserWarning("Could not create session: %v", err)
		m.changeDir(path)
		return nil, false
	}
	return sess, m.attach(ctx, sess.TmuxSession)
}

func (m *Manager) attach(ctx context.Context, tmuxSession string) bool {
	attached, err := m.Sessions.Attach(ctx, tmuxSession, m.Term)
	if err != nil {
		logging.UserWarning("Could not attach to %s: %v", tmuxSession, err)
		logging.UserInfo("Attach with: %s", m.Sessions.AttachCommand(tmuxSession))
		return false
	}
	return attached
}

func (m *Manager) changeDir(path string) {
	if m.Nav == nil {
		return
	}
	if err := m.Nav.ChangeDir(path); err != nil {
		logging.UserWarning("Could not change directory: %v", err)
	}
}

// openEditor launches the resolved editor on path. Failures are warnings.
func (m *Manager) openEditor(ctx context.Context, path string) {
	cmd, ok := agent.ResolveEditor(m.Env, m.Config.CodeEditor)
	if !ok {
		logging.UserWarning("No editor configured or found, skipping --open")
		return
	}
	words, err := shellquote.Split(cmd.Line)
	if err != nil || len(words) == 0 {
		logging.UserWarning("Invalid editor command %q", cmd.Line)
		return
	}
	logging.Debug("opening editor", "command", cmd.Line, "source", cmd.Source)
	args := append(words[1:], path)
	if out, err := m.Exec.Execute(ctx, words[0], args...); err != nil {
		logging.UserWarning("Could not open %s: %v", cmd.Kind, err)
		logging.Debug("editor output", "output", string(out))
	}
}
