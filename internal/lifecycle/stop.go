package lifecycle

import (
	"context"

	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/workspace"
)

// StopResult describes a removed workspace.
type StopResult struct {
	Name           string
	Path           string
	OriginDir      string
	OriginBranch   string
	ReturnedToOrig bool
}

// Detect returns the workspace containing the caller's directory.
func (m *Manager) Detect() (string, error) {
	name, ok := m.Paths.WorkspaceAt(m.WorkDir)
	if !ok {
		return "", errors.AmbiguousTarget("no workspace given and the current directory is not inside one").
			WithHint("run from inside %s/<name> or pass a workspace name", m.Paths.WorkspaceRoot)
	}
	return name, nil
}

// Stop removes a workspace. An empty name means the workspace containing
// the caller's directory. Without force, git refuses to remove a tree with
// uncommitted changes and nothing is touched.
func (m *Manager) Stop(ctx context.Context, name string, force bool) (*StopResult, error) {
	if name == "" {
		detected, err := m.Detect()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	name = workspace.NormalizeName(name)

	wt, ok, err := m.Registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.WorkspaceNotFound(name, m.knownNames(ctx))
	}

	removed := false
	if !force {
		// A dirty tree is refused by git before the session is touched.
		if dirty, err := m.Backend.HasChanges(ctx, wt.Path); err == nil && dirty {
			if err := m.Backend.Remove(ctx, m.Paths.RepoRoot, wt.Path, false); err != nil {
				return nil, withForceHint(err)
			}
			removed = true
		}
	}

	origin, _, err := metadata.LoadWorkspace(ctx, m.Store, name)
	if err != nil {
		return nil, err
	}

	if err := m.Sessions.Teardown(ctx, name); err != nil {
		logging.UserWarning("Could not stop session: %v", err)
	}

	if !removed {
		m.runHooks(ctx, "onStop", m.Config.SessionHooks.OnStop, m.hookContext(name, wt.Path, origin.BaseBranch))
		if err := m.Backend.Remove(ctx, m.Paths.RepoRoot, wt.Path, force); err != nil {
			return nil, withForceHint(err)
		}
	}

	if m.FS.Exists(wt.Path) {
		logging.Debug("removing leftover directory", "path", wt.Path)
		if err := m.FS.RemoveAll(wt.Path); err != nil {
			logging.UserWarning("Could not remove %s: %v", wt.Path, err)
		}
	}

	if err := m.Store.UnsetAll(ctx, name); err != nil {
		return nil, err
	}
	m.record(audit.EventStop, name, "")
	logging.UserSuccess("Removed workspace %s", name)

	res := &StopResult{
		Name:         name,
		Path:         wt.Path,
		OriginDir:    origin.OriginDir,
		OriginBranch: origin.OriginBranch,
	}
	m.returnToOrigin(ctx, res)
	return res, nil
}

// returnToOrigin moves the caller back to where the workspace was started
// and checks out the branch it was on. Failures are warnings.
func (m *Manager) returnToOrigin(ctx context.Context, res *StopResult) {
	if res.OriginDir == "" || !m.FS.IsDir(res.OriginDir) {
		return
	}
	m.changeDir(res.OriginDir)
	res.ReturnedToOrig = true

	if res.OriginBranch == "" {
		return
	}
	if current, ok := m.Backend.CurrentBranch(ctx, res.OriginDir); ok && current == res.OriginBranch {
		return
	}
	if err := m.Backend.Checkout(ctx, res.OriginDir, res.OriginBranch); err != nil {
		logging.UserWarning("Could not check out %s in %s: %v", res.OriginBranch, res.OriginDir, err)
	}
}

func withForceHint(err error) error {
	var ge *errors.GroveError
	if errors.As(err, &ge) && ge.Hint == "" {
		return ge.WithHint("commit or stash your changes, or pass --force to discard them")
	}
	return err
}
