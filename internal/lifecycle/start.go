package lifecycle

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/session"
	"github.com/firefly-engineering/grove/internal/workspace"
)

// StartOptions are the options of Start.
type StartOptions struct {
	// Base is the branch to fork from. Empty means resolve it.
	Base        string
	Horizontal  bool
	NoSession   bool
	OpenEditor  bool
	DisplayName string
	Description string
}

// Result describes where the user ended up.
type Result struct {
	Name     string
	Path     string
	Branch   string
	Base     string
	Session  *metadata.Session
	Attached bool
	Created  bool
}

// ResolveBase picks the branch a new workspace forks from: the explicit
// branch, the caller's current branch, the configured default when it
// exists, and finally the fallback branch.
func (m *Manager) ResolveBase(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if branch, ok := m.Backend.CurrentBranch(ctx, m.WorkDir); ok {
		return branch
	}
	if b := m.Config.BaseBranch; b != "" && m.Backend.BranchExists(ctx, m.Paths.RepoRoot, b) {
		return b
	}
	return config.FallbackBaseBranch
}

// Start creates a workspace and enters it.
func (m *Manager) Start(ctx context.Context, name string, opts StartOptions) (*Result, error) {
	name = workspace.NormalizeName(name)
	if err := workspace.ValidateName(name); err != nil {
		return nil, err
	}
	if m.Registry.Exists(ctx, name) {
		return nil, errors.NameConflict(name)
	}

	path, err := m.Paths.WorkspacePath(name)
	if err != nil {
		return nil, err
	}

	base := m.ResolveBase(ctx, opts.Base)
	branch := m.Config.BranchName(name)
	originBranch, _ := m.Backend.CurrentBranch(ctx, m.WorkDir)

	logging.Debug("creating workspace", "name", name, "branch", branch, "base", base, "path", path)
	if err := m.Backend.Create(ctx, m.Paths.RepoRoot, branch, path, base); err != nil {
		return nil, err
	}

	rec := &metadata.Workspace{
		Name:         name,
		BaseBranch:   base,
		OriginDir:    m.WorkDir,
		OriginBranch: originBranch,
	}
	if err := metadata.SaveWorkspace(ctx, m.Store, rec); err != nil {
		return nil, err
	}
	m.record(audit.EventStart, name, fmt.Sprintf("branch=%s base=%s", branch, base))
	logging.UserSuccess("Created workspace %s on branch %s (from %s)", name, branch, base)

	m.runHooks(ctx, "onStart", m.Config.SessionHooks.OnStart, m.hookContext(name, path, base))

	if opts.OpenEditor {
		m.openEditor(ctx, path)
	}

	sess, attached := m.enter(ctx, name, path, opts.NoSession, session.Options{
		Horizontal:  opts.Horizontal,
		DisplayName: opts.DisplayName,
		Description: opts.Description,
	})

	return &Result{
		Name:     name,
		Path:     path,
		Branch:   branch,
		Base:     base,
		Session:  sess,
		Attached: attached,
		Created:  true,
	}, nil
}
