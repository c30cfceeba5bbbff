package workspace

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/system"
)

// Worktree is one entry of git's worktree registry.
type Worktree struct {
	Path     string `json:"path"`
	Head     string `json:"head,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Bare     bool   `json:"bare,omitempty"`
	Detached bool   `json:"detached,omitempty"`
	Locked   bool   `json:"locked,omitempty"`
	Prunable bool   `json:"prunable,omitempty"`
}

// Name returns the directory name of the worktree.
func (w Worktree) Name() string {
	return filepath.Base(w.Path)
}

// Registry is a read-only view over git's worktree registry. It is the
// authority on whether a workspace exists; directories and metadata can
// drift from it.
type Registry struct {
	exec system.CommandExecutor
	repo string
	root string
}

// NewRegistry returns a Registry for repo whose workspaces live in root.
func NewRegistry(exec system.CommandExecutor, repo, root string) *Registry {
	return &Registry{exec: exec, repo: repo, root: root}
}

// Root returns the workspace root.
func (r *Registry) Root() string {
	return r.root
}

// List returns every registered worktree, the main tree first.
func (r *Registry) List(ctx context.Context) ([]Worktree, error) {
	out, err := r.exec.Execute(ctx, "git", "-C", r.repo, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.ExternalTool("git", "worktree list", out, err)
	}
	return ParsePorcelain(out), nil
}

// Workspaces returns the registered worktrees located directly under the
// workspace root, sorted by name.
func (r *Registry) Workspaces(ctx context.Context) ([]Worktree, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	root := Canonical(r.root)
	var result []Worktree
	for _, wt := range all {
		if wt.Bare {
			continue
		}
		if filepath.Dir(Canonical(wt.Path)) == root {
			result = append(result, wt)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result, nil
}

// Get returns the registered workspace called name.
func (r *Registry) Get(ctx context.Context, name string) (Worktree, bool, error) {
	workspaces, err := r.Workspaces(ctx)
	if err != nil {
		return Worktree{}, false, err
	}
	for _, wt := range workspaces {
		if wt.Name() == name {
			return wt, true, nil
		}
	}
	return Worktree{}, false, nil
}

// Exists reports whether <root>/<name> is a registered linked tree. A
// registry that cannot be read reports false.
func (r *Registry) Exists(ctx context.Context, name string) bool {
	_, ok, err := r.Get(ctx, name)
	return err == nil && ok
}

// Names returns the sorted names of every registered workspace.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	workspaces, err := r.Workspaces(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(workspaces))
	for _, wt := range workspaces {
		names = append(names, wt.Name())
	}
	return names, nil
}

// ParsePorcelain parses the output of git worktree list --porcelain.
func ParsePorcelain(data []byte) []Worktree {
	var result []Worktree
	var cur *Worktree

	flush := func() {
		if cur != nil && cur.Path != "" {
			result = append(result, *cur)
		}
		cur = nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		attr, value, _ := strings.Cut(line, " ")
		if attr == "worktree" {
			flush()
			cur = &Worktree{Path: value}
			continue
		}
		if cur == nil {
			continue
		}
		switch attr {
		case "HEAD":
			cur.Head = value
		case "branch":
			cur.Branch = strings.TrimPrefix(value, "refs/heads/")
		case "bare":
			cur.Bare = true
		case "detached":
			cur.Detached = true
		case "locked":
			cur.Locked = true
		case "prunable":
			cur.Prunable = true
		}
	}
	flush()
	return result
}

// Canonical resolves symlinks in path. When path no longer exists its
// parent is resolved instead, so entries for deleted directories still
// compare equal to live paths.
func Canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if parent, err := filepath.EvalSymlinks(filepath.Dir(path)); err == nil {
		return filepath.Join(parent, filepath.Base(path))
	}
	return filepath.Clean(path)
}
