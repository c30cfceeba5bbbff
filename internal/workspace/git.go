package workspace

import (
	"context"
	"strings"

	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/system"
)

// GitBackend implements Backend with git worktrees.
type GitBackend struct {
	exec system.CommandExecutor
}

// NewGitBackend returns a GitBackend running git through exec.
func NewGitBackend(exec system.CommandExecutor) *GitBackend {
	return &GitBackend{exec: exec}
}

func (b *GitBackend) git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	logging.Debug("git", "dir", dir, "args", args)
	return b.exec.Execute(ctx, "git", append([]string{"-C", dir}, args...)...)
}

// run executes git and turns a failure into an ExternalTool error
// carrying git's own output.
func (b *GitBackend) run(ctx context.Context, dir, op string, args ...string) (string, error) {
	out, err := b.git(ctx, dir, args...)
	if err != nil {
		return "", errors.ExternalTool("git", op, out, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (b *GitBackend) IsRepo(ctx context.Context, dir string) bool {
	out, err := b.git(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

func (b *GitBackend) BranchExists(ctx context.Context, repo, branch string) bool {
	if branch == "" {
		return false
	}
	_, err := b.git(ctx, repo, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

func (b *GitBackend) CurrentBranch(ctx context.Context, dir string) (string, bool) {
	out, err := b.git(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		return "", false
	}
	branch := strings.TrimSpace(string(out))
	return branch, branch != ""
}

func (b *GitBackend) Create(ctx context.Context, repo, branch, path, base string) error {
	if b.BranchExists(ctx, repo, branch) {
		logging.Debug("reusing existing branch", "branch", branch)
		_, err := b.run(ctx, repo, "worktree add", "worktree", "add", path, branch)
		return err
	}
	_, err := b.run(ctx, repo, "worktree add", "worktree", "add", "-b", branch, path, base)
	return err
}

func (b *GitBackend) Remove(ctx context.Context, repo, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	_, err := b.run(ctx, repo, "worktree remove", append(args, path)...)
	return err
}

func (b *GitBackend) Prune(ctx context.Context, repo string) error {
	_, err := b.run(ctx, repo, "worktree prune", "worktree", "prune")
	return err
}

func (b *GitBackend) Checkout(ctx context.Context, dir, branch string) error {
	_, err := b.run(ctx, dir, "checkout", "checkout", branch)
	return err
}

func (b *GitBackend) HasChanges(ctx context.Context, dir string) (bool, error) {
	out, err := b.run(ctx, dir, "status", "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (b *GitBackend) Push(ctx context.Context, dir, branch string, noVerify bool) error {
	args := []string{"push", "-u", "origin", branch}
	if noVerify {
		args = append(args, "--no-verify")
	}
	_, err := b.run(ctx, dir, "push", args...)
	return err
}
