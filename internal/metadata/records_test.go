package metadata

import (
	"context"
	"reflect"
	"testing"
)

func TestWorkspaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			want := &Workspace{Name: "auth", BaseBranch: "main", OriginDir: "/src/repo", OriginBranch: "main"}
			if err := SaveWorkspace(ctx, s, want); err != nil {
				t.Fatalf("SaveWorkspace error: %v", err)
			}

			got, ok, err := LoadWorkspace(ctx, s, "auth")
			if err != nil || !ok {
				t.Fatalf("LoadWorkspace = %v, %v", ok, err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("LoadWorkspace = %+v, want %+v", got, want)
			}

			if _, ok, _ := LoadWorkspace(ctx, s, "missing"); ok {
				t.Error("LoadWorkspace(missing) should report not found")
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			SaveWorkspace(ctx, s, &Workspace{Name: "auth", BaseBranch: "main"})

			sess := &Session{
				TmuxSession: "repo_auth",
				AgentPane:   1,
				AgentKind:   "claude",
				DisplayName: "Auth",
				ServerPort:  3000,
				ServerPane:  2,
			}
			if err := SaveSession(ctx, s, "auth", sess); err != nil {
				t.Fatalf("SaveSession error: %v", err)
			}

			got, ok, err := LoadSession(ctx, s, "auth")
			if err != nil || !ok {
				t.Fatalf("LoadSession = %v, %v", ok, err)
			}
			if !reflect.DeepEqual(got, sess) {
				t.Errorf("LoadSession = %+v, want %+v", got, sess)
			}

			// A record without a server replaces the previous one entirely.
			if err := SaveSession(ctx, s, "auth", &Session{TmuxSession: "repo_auth", AgentPane: 1, AgentKind: "claude", ServerPane: NoPane}); err != nil {
				t.Fatalf("SaveSession error: %v", err)
			}
			got, _, _ = LoadSession(ctx, s, "auth")
			if got.HasServer() || got.ServerPort != 0 || got.DisplayName != "" {
				t.Errorf("stale server fields survived: %+v", got)
			}

			if err := ClearSession(ctx, s, "auth"); err != nil {
				t.Fatalf("ClearSession error: %v", err)
			}
			if _, ok, _ := LoadSession(ctx, s, "auth"); ok {
				t.Error("session should be cleared")
			}
			if w, ok, _ := LoadWorkspace(ctx, s, "auth"); !ok || w.BaseBranch != "main" {
				t.Error("ClearSession must keep the workspace facts")
			}
		})
	}
}

func TestServerPorts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Set(ctx, "auth", FieldServerPort, "3000")
	s.Set(ctx, "billing", FieldServerPort, "3002")
	s.Set(ctx, "docs", FieldBase, "main")
	s.Set(ctx, "broken", FieldServerPort, "not-a-port")

	ports, err := ServerPorts(ctx, s)
	if err != nil {
		t.Fatalf("ServerPorts error: %v", err)
	}
	want := map[int]string{3000: "auth", 3002: "billing"}
	if !reflect.DeepEqual(ports, want) {
		t.Errorf("ServerPorts = %v, want %v", ports, want)
	}
}

func TestMemoryStore_Keys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Set(ctx, "auth", FieldBase, "main")
	s.Set(ctx, "auth", FieldOriginDir, "/src")

	want := []string{"workspace.auth.base", "workspace.auth.origin-dir"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
