package workspace

import (
	"context"
	"regexp"
	"strings"

	"github.com/firefly-engineering/grove/internal/errors"
)

// Backend is the set of version-control primitives the lifecycle needs.
type Backend interface {
	// IsRepo reports whether dir lies inside a working tree.
	IsRepo(ctx context.Context, dir string) bool

	// BranchExists reports whether a local branch exists.
	BranchExists(ctx context.Context, repo, branch string) bool

	// CurrentBranch returns the branch checked out in dir. ok is false
	// for a detached HEAD or when dir is not a working tree.
	CurrentBranch(ctx context.Context, dir string) (branch string, ok bool)

	// Create adds a linked tree at path on branch, reusing the branch
	// when it exists and forking it from base otherwise.
	Create(ctx context.Context, repo, branch, path, base string) error

	// Remove unregisters and deletes the linked tree at path. Without
	// force, git refuses trees with local changes.
	Remove(ctx context.Context, repo, path string, force bool) error

	// Prune drops registry entries whose directories are gone.
	Prune(ctx context.Context, repo string) error

	// Checkout switches dir to branch.
	Checkout(ctx context.Context, dir, branch string) error

	// HasChanges reports whether dir has uncommitted or untracked files.
	HasChanges(ctx context.Context, dir string) (bool, error)

	// Push publishes branch to origin and sets it as upstream.
	Push(ctx context.Context, dir, branch string, noVerify bool) error
}

// validName matches safe workspace/branch names: alphanumeric, hyphens, underscores, dots.
var validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeName trims name and replaces each run of whitespace with a
// single hyphen.
func NormalizeName(name string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(name), "-")
}

// ValidateName checks that a workspace name is safe for use in branch names,
// directory paths, git config subsections and tmux targets.
func ValidateName(name string) error {
	if name == "" {
		return errors.ValidationError("workspace name must not be empty")
	}
	if len(name) > 128 {
		return errors.ValidationError("workspace name too long (max 128 characters)")
	}
	if !validName.MatchString(name) {
		return errors.ValidationError("workspace name %q contains invalid characters (allowed: alphanumeric, hyphens, underscores, dots)", name)
	}
	if strings.Contains(name, "..") || strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock") {
		return errors.ValidationError("workspace name %q is not a valid git branch name", name)
	}
	return nil
}
