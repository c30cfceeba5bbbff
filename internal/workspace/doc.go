// Package workspace drives git linked worktrees for grove.
//
// # Backend
//
// GitBackend implements the mutating primitives:
//
//	backend := workspace.NewGitBackend(system.DefaultExecutor())
//	backend.Create(ctx, "/src/repo", "feature/auth", "/src/repo-worktrees/auth", "main")
//	// Runs: git -C /src/repo worktree add -b feature/auth /src/repo-worktrees/auth main
//
// An existing branch is reused instead of being forked again.
//
// # Registry
//
// Registry parses git worktree list --porcelain and is the single
// authority on whether a workspace exists. A workspace is a registered
// linked tree located directly under the workspace root; paths are
// compared after symlink resolution.
//
// # Names
//
// NormalizeName turns whitespace runs into hyphens and ValidateName
// rejects anything unsafe for a branch name, a directory name, a git
// config subsection or a tmux target.
package workspace
