package workspace

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/firefly-engineering/grove/internal/system"
	"github.com/firefly-engineering/grove/internal/testutil"
)

const samplePorcelain = `worktree /src/repo
HEAD 1111111111111111111111111111111111111111
branch refs/heads/main

worktree /src/repo-worktrees/auth
HEAD 2222222222222222222222222222222222222222
branch refs/heads/feature/auth

worktree /src/repo-worktrees/spike
HEAD 3333333333333333333333333333333333333333
detached

worktree /src/repo-worktrees/old
HEAD 4444444444444444444444444444444444444444
branch refs/heads/old
locked
prunable gitdir file points to non-existent location
`

func TestParsePorcelain(t *testing.T) {
	got := ParsePorcelain([]byte(samplePorcelain))

	want := []Worktree{
		{Path: "/src/repo", Head: "1111111111111111111111111111111111111111", Branch: "main"},
		{Path: "/src/repo-worktrees/auth", Head: "2222222222222222222222222222222222222222", Branch: "feature/auth"},
		{Path: "/src/repo-worktrees/spike", Head: "3333333333333333333333333333333333333333", Detached: true},
		{Path: "/src/repo-worktrees/old", Head: "4444444444444444444444444444444444444444", Branch: "old", Locked: true, Prunable: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePorcelain =\n%+v\nwant\n%+v", got, want)
	}
}

func TestParsePorcelain_Bare(t *testing.T) {
	got := ParsePorcelain([]byte("worktree /src/repo.git\nbare\n"))
	if len(got) != 1 || !got[0].Bare {
		t.Errorf("ParsePorcelain = %+v, want one bare entry", got)
	}
}

func TestRegistry_WorkspacesFromMock(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.AddResponse("git -C /src/repo worktree list --porcelain", []byte(samplePorcelain), nil)
	reg := NewRegistry(exec, "/src/repo", "/src/repo-worktrees")
	ctx := context.Background()

	names, err := reg.Names(ctx)
	if err != nil {
		t.Fatalf("Names error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"auth", "old", "spike"}) {
		t.Errorf("Names = %v, want [auth old spike]", names)
	}
	if !reg.Exists(ctx, "auth") {
		t.Error("auth should exist")
	}
	if reg.Exists(ctx, "repo") {
		t.Error("the main tree is not a workspace")
	}
}

func TestRegistry_ListFailure(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.DefaultResponse = system.MockResponse{Output: []byte("fatal: not a git repository"), Err: &system.MockExitError{Code: 128}}
	reg := NewRegistry(exec, "/nowhere", "/nowhere-worktrees")

	if _, err := reg.List(context.Background()); err == nil {
		t.Error("List should fail")
	}
	if reg.Exists(context.Background(), "auth") {
		t.Error("Exists should be false when the registry is unreadable")
	}
}

func TestRegistry_RealRepo(t *testing.T) {
	repo := testutil.InitRepo(t)
	root := filepath.Join(filepath.Dir(repo), "repo-worktrees")
	exec := system.DefaultExecutor()
	b := NewGitBackend(exec)
	ctx := context.Background()

	if err := b.Create(ctx, repo, "auth", filepath.Join(root, "auth"), "main"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// A tree outside the root is registered but is not a workspace.
	if err := b.Create(ctx, repo, "elsewhere", filepath.Join(filepath.Dir(repo), "elsewhere"), "main"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// A plain directory under the root is not registered.
	if err := os.MkdirAll(filepath.Join(root, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(exec, repo, root)
	all, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d entries, want 3", len(all))
	}

	names, err := reg.Names(ctx)
	if err != nil {
		t.Fatalf("Names error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"auth"}) {
		t.Errorf("Names = %v, want [auth]", names)
	}

	wt, ok, err := reg.Get(ctx, "auth")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if wt.Branch != "auth" {
		t.Errorf("Branch = %q, want auth", wt.Branch)
	}
}

func TestRegistry_SymlinkedRoot(t *testing.T) {
	repo := testutil.InitRepo(t)
	base := filepath.Dir(repo)
	realRoot := filepath.Join(base, "real-root")
	link := filepath.Join(base, "link-root")
	if err := os.MkdirAll(realRoot, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(realRoot, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	exec := system.DefaultExecutor()
	ctx := context.Background()
	if err := NewGitBackend(exec).Create(ctx, repo, "auth", filepath.Join(link, "auth"), "main"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, root := range []string{realRoot, link} {
		if !NewRegistry(exec, repo, root).Exists(ctx, "auth") {
			t.Errorf("Exists via %s should be true", root)
		}
	}
}

func TestCanonical_MissingPath(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "gone")
	if got := Canonical(missing); got != missing {
		t.Errorf("Canonical(%q) = %q", missing, got)
	}
}
