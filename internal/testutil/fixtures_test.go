package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	cfg, err := ValidConfig()
	if err != nil {
		t.Fatalf("ValidConfig() error: %v", err)
	}

	if cfg.BranchPrefix != "feature/" {
		t.Errorf("BranchPrefix = %q, want %q", cfg.BranchPrefix, "feature/")
	}
	if !cfg.HasServer() {
		t.Error("ServerCommand should be set")
	}
	if len(cfg.SessionHooks.OnStart) != 1 {
		t.Errorf("OnStart = %v, want one hook", cfg.SessionHooks.OnStart)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should pass validation: %v", err)
	}
}

func TestLoadValidTOMLConfig(t *testing.T) {
	cfg, err := ValidTOMLConfig()
	if err != nil {
		t.Fatalf("ValidTOMLConfig() error: %v", err)
	}

	if cfg.BaseBranch != "develop" {
		t.Errorf("BaseBranch = %q, want %q", cfg.BaseBranch, "develop")
	}
	if cfg.PortRange.Start != 8000 {
		t.Errorf("PortRange.Start = %d, want 8000", cfg.PortRange.Start)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should pass validation: %v", err)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	cfg, err := InvalidConfig()
	if err != nil {
		t.Fatalf("InvalidConfig() error: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Invalid config should fail validation")
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture("nonexistent.json"); err == nil {
		t.Error("LoadFixture should fail for nonexistent file")
	}
}

func TestInitRepo(t *testing.T) {
	repo := InitRepo(t)

	if _, err := os.Stat(filepath.Join(repo, ".git")); err != nil {
		t.Fatalf("repository not initialized: %v", err)
	}
	if branch := Git(t, repo, "rev-parse", "--abbrev-ref", "HEAD"); branch != "main" {
		t.Errorf("branch = %q, want %q", branch, "main")
	}
	entries, err := os.ReadDir(filepath.Dir(repo))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("parent dir has %d entries, want only the repo", len(entries))
	}
}
