package metadata

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/system"
)

// git config exit statuses.
const (
	gitConfigMissing   = 1
	gitConfigNoSuchKey = 5
)

// GitConfigStore keeps workspace metadata in the repository's local git
// config as workspace.<name>.<field>. The local config of the main tree
// is shared by every linked tree, so all workspaces see the same state.
// Nothing is cached between calls.
type GitConfigStore struct {
	exec system.CommandExecutor
	repo string
}

// NewGitConfigStore returns a store backed by the git config of repo.
func NewGitConfigStore(exec system.CommandExecutor, repo string) *GitConfigStore {
	return &GitConfigStore{exec: exec, repo: repo}
}

func (s *GitConfigStore) git(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", s.repo, "config", "--local"}, args...)
	return s.exec.Execute(ctx, "git", full...)
}

func (s *GitConfigStore) Set(ctx context.Context, workspace, key, value string) error {
	if out, err := s.git(ctx, Key(workspace, key), value); err != nil {
		return errors.ExternalTool("git", "config "+Key(workspace, key), out, err)
	}
	return nil
}

func (s *GitConfigStore) Get(ctx context.Context, workspace, key string) (string, bool, error) {
	out, err := s.git(ctx, "--get", Key(workspace, key))
	if err != nil {
		if system.ExitCode(err) == gitConfigMissing {
			return "", false, nil
		}
		return "", false, errors.ExternalTool("git", "config --get "+Key(workspace, key), out, err)
	}
	return strings.TrimRight(string(out), "\n"), true, nil
}

func (s *GitConfigStore) Unset(ctx context.Context, workspace, key string) error {
	out, err := s.git(ctx, "--unset", Key(workspace, key))
	if err != nil {
		if system.ExitCode(err) == gitConfigNoSuchKey {
			return nil
		}
		return errors.ExternalTool("git", "config --unset "+Key(workspace, key), out, err)
	}
	return nil
}

func (s *GitConfigStore) UnsetAll(ctx context.Context, workspace string) error {
	entries, err := s.entries(ctx)
	if err != nil {
		return err
	}
	present := false
	for _, e := range entries {
		if e.workspace == workspace {
			present = true
			break
		}
	}
	if !present {
		return nil
	}

	section := Section + "." + workspace
	if out, err := s.git(ctx, "--remove-section", section); err != nil {
		return errors.ExternalTool("git", "config --remove-section "+section, out, err)
	}
	logging.Debug("removed metadata namespace", "workspace", workspace)
	return nil
}

func (s *GitConfigStore) ListNamespaces(ctx context.Context, keyPattern string) ([]string, error) {
	re, err := compilePattern(keyPattern)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if re.MatchString(e.field) {
			seen[e.workspace] = true
		}
	}
	return sortedKeys(seen), nil
}

type entry struct {
	workspace string
	field     string
	value     string
}

// entries lists every key in the workspace section.
func (s *GitConfigStore) entries(ctx context.Context) ([]entry, error) {
	out, err := s.git(ctx, "--get-regexp", `^`+regexp.QuoteMeta(Section)+`\.`)
	if err != nil {
		if system.ExitCode(err) == gitConfigMissing {
			return nil, nil
		}
		return nil, errors.ExternalTool("git", "config --get-regexp", out, err)
	}

	var entries []entry
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, _ := strings.Cut(scanner.Text(), " ")
		workspace, field, ok := SplitKey(key)
		if !ok {
			logging.Debug("skipping malformed metadata key", "key", key)
			continue
		}
		entries = append(entries, entry{workspace: workspace, field: field, value: value})
	}
	return entries, scanner.Err()
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.ValidationError("invalid key pattern %q: %v", pattern, err)
	}
	return re, nil
}

func sortedKeys(m map[string]bool) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String describes the store for debug logging.
func (s *GitConfigStore) String() string {
	return "git-config:" + s.repo
}
