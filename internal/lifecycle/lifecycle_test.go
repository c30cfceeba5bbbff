package lifecycle

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/firefly-engineering/grove/internal/agent"
	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/errors"
	"github.com/firefly-engineering/grove/internal/hooks"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/multiplexer"
	"github.com/firefly-engineering/grove/internal/session"
	"github.com/firefly-engineering/grove/internal/system"
	"github.com/firefly-engineering/grove/internal/terminal"
	"github.com/firefly-engineering/grove/internal/testutil"
	"github.com/firefly-engineering/grove/internal/workspace"
)

type testEnv struct {
	t      *testing.T
	repo   string
	paths  *config.Paths
	cfg    *config.Config
	mux    *multiplexer.Fake
	store  *metadata.MemoryStore
	mgr    *Manager
	out    *bytes.Buffer
	cdFile string
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	testutil.RequireGit(t)

	if cfg == nil {
		cfg = config.Default()
	}
	ctx := context.Background()
	repo := testutil.InitRepo(t)
	exec := system.DefaultExecutor()

	root, common, err := config.DiscoverRepo(ctx, exec, repo)
	if err != nil {
		t.Fatalf("DiscoverRepo: %v", err)
	}
	paths := config.NewPaths(root, common, cfg)

	e := &testEnv{
		t:      t,
		repo:   root,
		paths:  paths,
		cfg:    cfg,
		mux:    multiplexer.NewFake(),
		store:  metadata.NewMemoryStore(),
		out:    &bytes.Buffer{},
		cdFile: filepath.Join(t.TempDir(), "cd"),
	}

	orch := session.New(e.mux, e.store, &agent.MapEnv{}, cfg, paths.RepoName,
		session.WithPortChecker(func(int) bool { return true }),
		session.WithPolling(time.Millisecond, 10),
	)
	nav := terminal.NewNavigator(system.DefaultFS(), func(key string) string {
		if key == terminal.CDFileEnv {
			return e.cdFile
		}
		return ""
	}, e.out)

	e.mgr = NewManager(Deps{
		Paths:    paths,
		Config:   cfg,
		Exec:     exec,
		FS:       system.DefaultFS(),
		Backend:  workspace.NewGitBackend(exec),
		Registry: workspace.NewRegistry(exec, root, paths.WorkspaceRoot),
		Store:    e.store,
		Sessions: orch,
		Hooks:    hooks.NewRunner(exec),
		Audit:    audit.NewLogger(paths.StateDir),
		Nav:      nav,
		Env:      &agent.MapEnv{},
		Term:     terminal.Info{StdinTTY: true, StdoutTTY: true, Term: "xterm"},
		WorkDir:  root,
	})
	return e
}

// cd returns the last directory handed to the shell.
func (e *testEnv) cd() string {
	e.t.Helper()
	data, err := os.ReadFile(e.cdFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (e *testEnv) keys(name string) []string {
	var out []string
	for _, k := range e.store.Keys() {
		if strings.HasPrefix(k, "workspace."+name+".") {
			out = append(out, k)
		}
	}
	return out
}

func TestStart_AuthScenario(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)

	res, err := e.mgr.Start(ctx, "auth", StartOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Branch != "auth" || res.Base != "main" {
		t.Errorf("branch/base = %q/%q, want auth/main", res.Branch, res.Base)
	}
	if got := testutil.Git(t, res.Path, "rev-parse", "--abbrev-ref", "HEAD"); got != "auth" {
		t.Errorf("workspace branch = %q, want auth", got)
	}
	if !res.Attached || len(e.mux.Attached) != 1 {
		t.Errorf("session should be attached, got %v", e.mux.Attached)
	}

	list, err := e.mgr.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "auth" || list[0].Base != "main" {
		t.Fatalf("List = %+v", list)
	}
	if !list[0].Alive || list[0].Created.IsZero() {
		t.Errorf("list row = %+v, want alive with creation time", list[0])
	}

	stop, err := e.mgr.Stop(ctx, "auth", false)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stop.OriginDir != e.repo || !stop.ReturnedToOrig {
		t.Errorf("origin = %q returned=%v", stop.OriginDir, stop.ReturnedToOrig)
	}
	if got := e.cd(); got != e.repo {
		t.Errorf("cd target = %q, want %q", got, e.repo)
	}
	if got := testutil.Git(t, e.repo, "rev-parse", "--abbrev-ref", "HEAD"); got != "main" {
		t.Errorf("origin branch = %q, want main", got)
	}
}

func TestStartStop_LeavesNothingBehind(t *testing.T) {
	for _, name := range []string{"auth", "fix login", "v1.2"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newTestEnv(t, nil)

			res, err := e.mgr.Start(ctx, name, StartOptions{DisplayName: "x", Description: "y"})
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if len(e.keys(res.Name)) == 0 {
				t.Fatal("Start should record metadata")
			}

			if _, err := e.mgr.Stop(ctx, res.Name, false); err != nil {
				t.Fatalf("Stop: %v", err)
			}
			if keys := e.keys(res.Name); len(keys) != 0 {
				t.Errorf("keys left: %v", keys)
			}
			if e.mgr.Registry.Exists(ctx, res.Name) {
				t.Error("registry entry left")
			}
			if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
				t.Errorf("directory left: %v", err)
			}
			if len(e.mux.Sessions) != 0 {
				t.Errorf("sessions left: %v", e.mux.Sessions)
			}
		})
	}
}

func TestStart_RecordsMetadata(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)

	if _, err := e.mgr.Start(ctx, "auth", StartOptions{}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec, ok, err := metadata.LoadWorkspace(ctx, e.store, "auth")
	if err != nil || !ok {
		t.Fatalf("LoadWorkspace: ok=%v err=%v", ok, err)
	}
	if rec.BaseBranch != "main" || rec.OriginDir != e.repo || rec.OriginBranch != "main" {
		t.Errorf("record = %+v", rec)
	}

	sess, ok, _ := metadata.LoadSession(ctx, e.store, "auth")
	if !ok || sess.TmuxSession != "repo_auth" || sess.AgentPane != 1 {
		t.Errorf("session = %+v", sess)
	}

	events, _ := e.mgr.Audit.For("auth")
	if len(events) != 1 || events[0].Type != audit.EventStart {
		t.Errorf("events = %+v", events)
	}
}

func TestStart_BaseResolution(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T, repo string)
		configured string
		explicit   string
		want       string
	}{
		{
			name:  "current branch",
			setup: func(t *testing.T, repo string) { testutil.Git(t, repo, "checkout", "-q", "-b", "feature-x") },
			want:  "feature-x",
		},
		{
			name:     "explicit wins",
			setup:    func(t *testing.T, repo string) { testutil.Git(t, repo, "branch", "release") },
			explicit: "release",
			want:     "release",
		},
		{
			name: "configured default when detached",
			setup: func(t *testing.T, repo string) {
				testutil.Git(t, repo, "branch", "develop")
				testutil.Git(t, repo, "checkout", "-q", "--detach")
			},
			configured: "develop",
			want:       "develop",
		},
		{
			name:       "fallback when configured default is missing",
			setup:      func(t *testing.T, repo string) { testutil.Git(t, repo, "checkout", "-q", "--detach") },
			configured: "develop",
			want:       "main",
		},
		{
			name:  "fallback without config",
			setup: func(t *testing.T, repo string) { testutil.Git(t, repo, "checkout", "-q", "--detach") },
			want:  "main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.Default()
			cfg.BaseBranch = tt.configured
			e := newTestEnv(t, cfg)
			tt.setup(t, e.repo)

			res, err := e.mgr.Start(ctx, "auth", StartOptions{Base: tt.explicit, NoSession: true})
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			base, _, _ := e.store.Get(ctx, "auth", metadata.FieldBase)
			if res.Base != tt.want || base != tt.want {
				t.Errorf("base = %q (stored %q), want %q", res.Base, base, tt.want)
			}
		})
	}
}

func TestStart_BranchPrefix(t *testing.T) {
	cfg := config.Default()
	cfg.BranchPrefix = "feature/"
	e := newTestEnv(t, cfg)

	res, err := e.mgr.Start(context.Background(), "auth", StartOptions{NoSession: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Branch != "feature/auth" {
		t.Errorf("Branch = %q", res.Branch)
	}
	if filepath.Base(res.Path) != "auth" {
		t.Errorf("Path = %q, directory should use the bare name", res.Path)
	}
}

func TestStart_ReusesExistingBranch(t *testing.T) {
	e := newTestEnv(t, nil)
	testutil.Git(t, e.repo, "branch", "auth")

	res, err := e.mgr.Start(context.Background(), "auth", StartOptions{NoSession: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := testutil.Git(t, res.Path, "rev-parse", "--abbrev-ref", "HEAD"); got != "auth" {
		t.Errorf("HEAD = %q", got)
	}
}

func TestStart_Errors(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)

	if _, err := e.mgr.Start(ctx, "auth", StartOptions{NoSession: true}); err != nil {
		t.Fatal(err)
	}

	_, err := e.mgr.Start(ctx, "auth", StartOptions{NoSession: true})
	if errors.KindOf(err) != errors.KindConflict {
		t.Errorf("duplicate start: kind = %v (%v)", errors.KindOf(err), err)
	}

	_, err = e.mgr.Start(ctx, "../escape", StartOptions{NoSession: true})
	if errors.KindOf(err) != errors.KindValidation {
		t.Errorf("invalid name: kind = %v (%v)", errors.KindOf(err), err)
	}

	_, err = e.mgr.Start(ctx, "other", StartOptions{Base: "no-such-branch", NoSession: true})
	if errors.KindOf(err) != errors.KindExternalTool {
		t.Errorf("bad base: kind = %v (%v)", errors.KindOf(err), err)
	}
	if len(e.keys("other")) != 0 {
		t.Error("failed start should record no metadata")
	}
}

func TestStart_WithoutTmux(t *testing.T) {
	e := newTestEnv(t, nil)
	e.mux.Unavailable = true

	res, err := e.mgr.Start(context.Background(), "auth", StartOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Session != nil {
		t.Error("no session expected without tmux")
	}
	if got := e.cd(); got != res.Path {
		t.Errorf("cd = %q, want %q", got, res.Path)
	}
}

func TestStart_SessionFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)
	e.mux.Fail["split-window"] = os.ErrPermission

	res, err := e.mgr.Start(ctx, "auth", StartOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Session != nil || len(e.mux.Sessions) != 0 {
		t.Error("half-built session should be gone")
	}
	if _, ok, _ := metadata.LoadSession(ctx, e.store, "auth"); ok {
		t.Error("session record should be cleared")
	}
	if got := e.cd(); got != res.Path {
		t.Errorf("cd = %q, want %q", got, res.Path)
	}
}

func TestStart_RunsHooks(t *testing.T) {
	cfg := config.Default()
	cfg.SessionHooks.OnStart = []string{`echo "$GROVE_WORKSPACE_NAME $GROVE_BASE_BRANCH $GROVE_ROOT_PATH" > .hook`, "exit 3"}
	e := newTestEnv(t, cfg)

	res, err := e.mgr.Start(context.Background(), "auth", StartOptions{NoSession: true})
	if err != nil {
		t.Fatalf("Start should survive a failing hook: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(res.Path, ".hook"))
	if err != nil {
		t.Fatalf("hook did not run in the workspace: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "auth main "+e.repo {
		t.Errorf("hook env = %q", got)
	}
}

func TestStop_DirtyWithoutForce(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)

	res, err := e.mgr.Start(ctx, "auth", StartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, filepath.Join(res.Path, "wip.txt"), "work in progress")
	before := e.keys("auth")

	_, err = e.mgr.Stop(ctx, "auth", false)
	if err == nil {
		t.Fatal("Stop without force should fail on a dirty workspace")
	}
	if errors.KindOf(err) != errors.KindExternalTool || errors.HintOf(err) == "" {
		t.Errorf("error = %v (kind %v, hint %q)", err, errors.KindOf(err), errors.HintOf(err))
	}

	if _, err := os.Stat(filepath.Join(res.Path, "wip.txt")); err != nil {
		t.Errorf("workspace content touched: %v", err)
	}
	if !e.mgr.Registry.Exists(ctx, "auth") {
		t.Error("registry entry removed")
	}
	if after := e.keys("auth"); strings.Join(after, ",") != strings.Join(before, ",") {
		t.Errorf("keys changed: %v -> %v", before, after)
	}
	if !e.mux.HasSession(ctx, "repo_auth") {
		t.Error("session killed")
	}

	if _, err := e.mgr.Stop(ctx, "auth", true); err != nil {
		t.Fatalf("Stop --force: %v", err)
	}
	if e.mgr.Registry.Exists(ctx, "auth") || len(e.keys("auth")) != 0 {
		t.Error("forced stop should remove everything")
	}
}

func TestStop_DetectsWorkspaceFromDirectory(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)

	res, err := e.mgr.Start(ctx, "auth", StartOptions{NoSession: true})
	if err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(res.Path, "a", "b")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}

	e.mgr.WorkDir = e.repo
	_, err = e.mgr.Stop(ctx, "", false)
	if errors.KindOf(err) != errors.KindAmbiguous {
		t.Errorf("stop from repo root: kind = %v (%v)", errors.KindOf(err), err)
	}

	e.mgr.WorkDir = deep
	stop, err := e.mgr.Stop(ctx, "", false)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stop.Name != "auth" {
		t.Errorf("detected %q, want auth", stop.Name)
	}
}

func TestStop_NotFound(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)
	if _, err := e.mgr.Start(ctx, "billing", StartOptions{NoSession: true}); err != nil {
		t.Fatal(err)
	}

	_, err := e.mgr.Stop(ctx, "auth", false)
	if errors.KindOf(err) != errors.KindNotFound {
		t.Fatalf("kind = %v (%v)", errors.KindOf(err), err)
	}
	if !strings.Contains(errors.HintOf(err), "billing") {
		t.Errorf("hint = %q, want known names", errors.HintOf(err))
	}
}

func TestStop_RunsOnStopHooks(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "stopped")
	cfg := config.Default()
	cfg.SessionHooks.OnStop = []string{"echo $GROVE_WORKSPACE_NAME > " + marker}
	e := newTestEnv(t, cfg)
	ctx := context.Background()

	if _, err := e.mgr.Start(ctx, "auth", StartOptions{NoSession: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.mgr.Stop(ctx, "auth", false); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	data, err := os.ReadFile(marker)
	if err != nil || strings.TrimSpace(string(data)) != "auth" {
		t.Errorf("onStop hook output = %q, %v", data, err)
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("starts missing workspace", func(t *testing.T) {
		e := newTestEnv(t, nil)
		res, err := e.mgr.Resume(ctx, "auth", ResumeOptions{})
		if err != nil {
			t.Fatalf("Resume: %v", err)
		}
		if !res.Created || !e.mgr.Registry.Exists(ctx, "auth") {
			t.Error("Resume should start a missing workspace")
		}
	})

	t.Run("reattaches live session", func(t *testing.T) {
		e := newTestEnv(t, nil)
		if _, err := e.mgr.Start(ctx, "auth", StartOptions{}); err != nil {
			t.Fatal(err)
		}
		calls := len(e.mux.Calls)

		res, err := e.mgr.Resume(ctx, "auth", ResumeOptions{})
		if err != nil {
			t.Fatalf("Resume: %v", err)
		}
		if res.Created || !res.Attached {
			t.Errorf("result = %+v", res)
		}
		for _, c := range e.mux.Calls[calls:] {
			if strings.HasPrefix(c, "new-session") {
				t.Error("live session should be reused")
			}
		}
	})

	t.Run("replaces stale session", func(t *testing.T) {
		e := newTestEnv(t, nil)
		if _, err := e.mgr.Start(ctx, "auth", StartOptions{DisplayName: "Auth"}); err != nil {
			t.Fatal(err)
		}
		if err := e.mux.KillSession(ctx, "repo_auth"); err != nil {
			t.Fatal(err)
		}

		res, err := e.mgr.Resume(ctx, "auth", ResumeOptions{})
		if err != nil {
			t.Fatalf("Resume: %v", err)
		}
		if res.Session == nil || !e.mux.HasSession(ctx, "repo_auth") {
			t.Fatal("a new session should be created")
		}
		if res.Session.DisplayName != "Auth" {
			t.Errorf("DisplayName = %q, want it carried over", res.Session.DisplayName)
		}
	})
}

func TestSwitch(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)
	if _, err := e.mgr.Start(ctx, "auth", StartOptions{NoSession: true}); err != nil {
		t.Fatal(err)
	}

	_, err := e.mgr.Switch(ctx, "billing", ResumeOptions{})
	if errors.KindOf(err) != errors.KindNotFound {
		t.Fatalf("kind = %v (%v)", errors.KindOf(err), err)
	}
	if !strings.Contains(errors.HintOf(err), "auth") {
		t.Errorf("hint = %q", errors.HintOf(err))
	}
	if e.mgr.Registry.Exists(ctx, "billing") {
		t.Error("Switch must never create a workspace")
	}

	res, err := e.mgr.Switch(ctx, "auth", ResumeOptions{NoSession: true})
	if err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if e.cd() != res.Path {
		t.Errorf("cd = %q, want %q", e.cd(), res.Path)
	}
}

func TestList_SortedWithSessions(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, nil)
	if _, err := e.mgr.Start(ctx, "billing", StartOptions{NoSession: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.mgr.Start(ctx, "auth", StartOptions{}); err != nil {
		t.Fatal(err)
	}

	res, err := e.mgr.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || res[0].Name != "auth" || res[1].Name != "billing" {
		t.Fatalf("List = %+v", res)
	}
	if !res[0].Alive || res[1].Alive {
		t.Errorf("liveness = %v/%v", res[0].Alive, res[1].Alive)
	}
	if res[1].Branch != "billing" {
		t.Errorf("branch = %q", res[1].Branch)
	}
}
