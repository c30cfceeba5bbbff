package lifecycle

import (
	"context"

	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/session"
	"github.com/firefly-engineering/grove/internal/workspace"
)

// ResumeOptions are the options of Resume and Switch.
type ResumeOptions struct {
	Horizontal bool
	NoSession  bool
}

// Resume reenters an existing workspace, or starts it when it does not
// exist.
func (m *Manager) Resume(ctx context.Context, name string, opts ResumeOptions) (*Result, error) {
	name = workspace.NormalizeName(name)
	if err := workspace.ValidateName(name); err != nil {
		return nil, err
	}
	wt, ok, err := m.Registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		logging.UserInfo("Workspace %s does not exist, starting it", name)
		return m.Start(ctx, name, StartOptions{Horizontal: opts.Horizontal, NoSession: opts.NoSession})
	}
	return m.reenter(ctx, name, wt.Path, opts)
}

// Switch reenters an existing workspace. Unlike Resume it never creates
// one.
func (m *Manager) Switch(ctx context.Context, name string, opts ResumeOptions) (*Result, error) {
	name = workspace.NormalizeName(name)
	wt, ok, err := m.Registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.WorkspaceNotFound(name, m.knownNames(ctx))
	}
	return m.reenter(ctx, name, wt.Path, opts)
}

// reenter attaches to the live session of a workspace, replacing a stale
// one first.
func (m *Manager) reenter(ctx context.Context, name, path string, opts ResumeOptions) (*Result, error) {
	res := &Result{Name: name, Path: path}
	if rec, ok, err := metadata.LoadWorkspace(ctx, m.Store, name); err == nil && ok {
		res.Base = rec.BaseBranch
	}
	defer m.record(audit.EventResume, name, "")

	st, err := m.Sessions.Inspect(ctx, name)
	if err != nil {
		return nil, err
	}

	if opts.NoSession {
		m.changeDir(path)
		return res, nil
	}

	if st.Alive {
		res.Session = st.Record
		res.Attached = m.attach(ctx, st.Record.TmuxSession)
		return res, nil
	}

	sopts := session.Options{Horizontal: opts.Horizontal}
	if st.Stale() {
		logging.UserWarning("Session %s is gone, creating a new one", st.Record.TmuxSession)
		sopts.DisplayName = st.Record.DisplayName
		sopts.Description = st.Record.Description
		if err := metadata.ClearSession(ctx, m.Store, name); err != nil {
			return nil, err
		}
	}

	res.Session, res.Attached = m.enter(ctx, name, path, false, sopts)
	return res, nil
}
