package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
)

// SubmitOptions are the options of Submit.
type SubmitOptions struct {
	Title      string
	BaseBranch string
	NoPR       bool
	NoVerify   bool
	// Stop removes the workspace afterwards without asking.
	Stop bool
	// OfferStop asks whether to remove the workspace afterwards.
	OfferStop bool
}

// SubmitResult describes a pushed workspace.
type SubmitResult struct {
	Name    string
	Branch  string
	Base    string
	PRURL   string
	Stopped bool
}

// Submit pushes the branch of the workspace containing the caller and
// opens a pull request for it.
func (m *Manager) Submit(ctx context.Context, opts SubmitOptions) (*SubmitResult, error) {
	name, err := m.Detect()
	if err != nil {
		return nil, err
	}
	wt, ok, err := m.Registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.WorkspaceNotFound(name, m.knownNames(ctx))
	}

	branch, ok := m.Backend.CurrentBranch(ctx, wt.Path)
	if !ok {
		return nil, errors.ValidationError("workspace %s is not on a branch", name)
	}

	base, err := m.submitBase(ctx, name, opts.BaseBranch)
	if err != nil {
		return nil, err
	}

	logging.UserInfo("Pushing %s", branch)
	if err := m.Backend.Push(ctx, wt.Path, branch, opts.NoVerify); err != nil {
		return nil, err
	}

	res := &SubmitResult{Name: name, Branch: branch, Base: base}
	if !opts.NoPR {
		url, err := m.createPR(ctx, wt.Path, branch, base, opts.Title)
		if err != nil {
			return nil, err
		}
		res.PRURL = url
		logging.UserSuccess("Opened pull request %s", url)
	} else {
		logging.UserSuccess("Pushed %s", branch)
	}
	m.record(audit.EventSubmit, name, fmt.Sprintf("branch=%s base=%s", branch, base))

	if opts.Stop || (opts.OfferStop && m.Confirm(fmt.Sprintf("Remove workspace %s now?", name))) {
		if _, err := m.Stop(ctx, name, false); err != nil {
			return res, err
		}
		res.Stopped = true
	}
	return res, nil
}

// submitBase resolves the pull request base: the explicit branch, the
// branch the workspace was started from, the configured default, and the
// fallback branch.
func (m *Manager) submitBase(ctx context.Context, name, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	value, ok, err := m.Store.Get(ctx, name, metadata.FieldBase)
	if err != nil {
		return "", err
	}
	if ok && value != "" {
		return value, nil
	}
	if m.Config.BaseBranch != "" {
		return m.Config.BaseBranch, nil
	}
	return config.FallbackBaseBranch, nil
}

func (m *Manager) createPR(ctx context.Context, dir, branch, base, title string) (string, error) {
	if _, err := m.Exec.LookPath("gh"); err != nil {
		return "", errors.New(errors.KindExternalTool, "gh not found").
			WithHint("install the GitHub CLI or pass --no-pr")
	}

	args := []string{"pr", "create", "--base", base, "--head", branch}
	if title != "" {
		args = append(args, "--title", title, "--body", "")
	} else {
		args = append(args, "--fill")
	}
	out, err := m.Exec.ExecuteIn(ctx, dir, nil, "gh", args...)
	if err != nil {
		return "", errors.ExternalTool("gh", "pr create", out, err)
	}
	return lastLine(string(out)), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
