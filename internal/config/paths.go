package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/system"
)

// StateDirName is the directory inside the git common dir holding grove's
// own files.
const StateDirName = "grove"

// Paths holds the resolved locations for one repository.
type Paths struct {
	// RepoRoot is the main working tree of the repository.
	RepoRoot string
	// RepoName is the base name of RepoRoot.
	RepoName string
	// GitCommonDir is the git directory shared by every linked tree.
	GitCommonDir string
	// WorkspaceRoot is the directory holding every workspace.
	WorkspaceRoot string
	// ConfigFile is the config file in use, or the default location.
	ConfigFile string
	// StateDir holds the event log.
	StateDir string
}

// DiscoverRepo resolves the main working tree and git common dir of the
// repository containing dir. Running it from a linked tree yields the
// main tree.
func DiscoverRepo(ctx context.Context, exec system.CommandExecutor, dir string) (root, commonDir string, err error) {
	out, err := exec.Execute(ctx, "git", "-C", dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", "", errors.New(errors.KindNotFound, "not inside a git repository").
			WithHint("run grove from within a git working tree")
	}

	commonDir = strings.TrimSpace(string(out))
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(dir, commonDir)
	}
	commonDir = filepath.Clean(commonDir)

	if filepath.Base(commonDir) != ".git" {
		return "", "", errors.New(errors.KindValidation, fmt.Sprintf("bare repository at %s is not supported", commonDir))
	}
	return filepath.Dir(commonDir), commonDir, nil
}

// NewPaths builds the paths for the repository at root using cfg.
func NewPaths(root, commonDir string, cfg *Config) *Paths {
	name := filepath.Base(root)
	p := &Paths{
		RepoRoot:     root,
		RepoName:     name,
		GitCommonDir: commonDir,
		StateDir:     filepath.Join(commonDir, StateDirName),
	}
	p.ConfigFile, _ = Find(root)

	switch {
	case cfg != nil && cfg.WorktreeRoot != "" && filepath.IsAbs(cfg.WorktreeRoot):
		p.WorkspaceRoot = filepath.Clean(cfg.WorktreeRoot)
	case cfg != nil && cfg.WorktreeRoot != "":
		p.WorkspaceRoot = filepath.Join(root, cfg.WorktreeRoot)
	default:
		p.WorkspaceRoot = filepath.Join(filepath.Dir(root), name+"-worktrees")
	}
	return p
}

// WorkspacePath returns the directory of the named workspace. The result
// always lies directly under WorkspaceRoot.
func (p *Paths) WorkspacePath(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, filepath.Separator) || name == "." || name == ".." {
		return "", errors.ValidationError("invalid workspace name %q", name)
	}
	path, err := securejoin.SecureJoin(p.WorkspaceRoot, name)
	if err != nil {
		return "", errors.Wrap(errors.KindValidation, fmt.Sprintf("invalid workspace name %q", name), err)
	}
	if filepath.Dir(path) != filepath.Clean(p.WorkspaceRoot) {
		return "", errors.ValidationError("workspace %q escapes %s", name, p.WorkspaceRoot)
	}
	return path, nil
}

// WorkspaceAt returns the workspace containing dir. Workspaces sit exactly
// one level below the root, so the first path element under the root is
// the workspace name however deep dir is.
func (p *Paths) WorkspaceAt(dir string) (string, bool) {
	root := resolve(p.WorkspaceRoot)
	rel, err := filepath.Rel(root, resolve(dir))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	name, _, _ := strings.Cut(rel, string(filepath.Separator))
	return name, name != ""
}

func resolve(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
