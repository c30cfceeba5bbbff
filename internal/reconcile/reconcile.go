package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/firefly-engineering/grove/internal/audit"
	"github.com/firefly-engineering/grove/internal/config"
	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
	"github.com/firefly-engineering/grove/internal/session"
	"github.com/firefly-engineering/grove/internal/system"
	"github.com/firefly-engineering/grove/internal/workspace"
)

// Kind classifies a cleanup task by the record it repairs.
type Kind string

const (
	KindDirectory     Kind = "directory"
	KindRegistryEntry Kind = "registryEntry"
	KindSessionEntry  Kind = "sessionEntry"
)

type action int

const (
	removeDir action = iota
	pruneRegistry
	purgeNamespace
	clearSession
	killSession
)

// Task is one repair. Tasks are never persisted.
type Task struct {
	Kind        Kind   `json:"kind"`
	Target      string `json:"target"`
	Description string `json:"description"`

	action    action
	workspace string
	session   string
}

// Failure is a task that could not be carried out.
type Failure struct {
	Task Task
	Err  error
}

// Report counts the outcome of Execute.
type Report struct {
	Done     int
	Failed   int
	Skipped  int
	Failures []Failure
}

// Engine scans and repairs one repository.
type Engine struct {
	paths    *config.Paths
	registry *workspace.Registry
	backend  workspace.Backend
	store    metadata.Store
	sessions *session.Orchestrator
	fs       system.FileSystem
	audit    *audit.Logger
}

// NewEngine creates an Engine. sessions and audit may be nil.
func NewEngine(paths *config.Paths, registry *workspace.Registry, backend workspace.Backend, store metadata.Store, sessions *session.Orchestrator, fs system.FileSystem, auditLog *audit.Logger) *Engine {
	return &Engine{
		paths:    paths,
		registry: registry,
		backend:  backend,
		store:    store,
		sessions: sessions,
		fs:       fs,
		audit:    auditLog,
	}
}

// Scan cross-checks every record and returns the repairs needed.
func (e *Engine) Scan(ctx context.Context) ([]Task, error) {
	registered, err := e.registry.Workspaces(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]workspace.Worktree, len(registered))
	for _, wt := range registered {
		byName[wt.Name()] = wt
	}

	var tasks []Task

	dirs, err := e.directories()
	if err != nil {
		return nil, err
	}
	for _, name := range dirs {
		if _, ok := byName[name]; ok {
			continue
		}
		path := filepath.Join(e.paths.WorkspaceRoot, name)
		tasks = append(tasks, Task{
			Kind:        KindDirectory,
			Target:      path,
			Description: fmt.Sprintf("remove directory %s (not a registered worktree)", path),
			action:      removeDir,
			workspace:   name,
		})
	}

	// present holds the registered workspaces that survive pruning.
	present := make(map[string]workspace.Worktree, len(registered))
	for _, wt := range registered {
		if !wt.Prunable && e.fs.Exists(wt.Path) {
			present[wt.Name()] = wt
			continue
		}
		tasks = append(tasks, Task{
			Kind:        KindRegistryEntry,
			Target:      wt.Path,
			Description: fmt.Sprintf("prune worktree entry %s (directory missing)", wt.Path),
			action:      pruneRegistry,
			workspace:   wt.Name(),
		})
	}

	sessionTasks, err := e.scanSessions(ctx, present)
	if err != nil {
		return nil, err
	}
	return append(tasks, sessionTasks...), nil
}

// scanSessions finds orphaned metadata namespaces, stale session records
// and live sessions that belong to no workspace.
func (e *Engine) scanSessions(ctx context.Context, registered map[string]workspace.Worktree) ([]Task, error) {
	namespaces, err := e.store.ListNamespaces(ctx, ".")
	if err != nil {
		return nil, err
	}

	var live map[string]bool
	if e.sessions != nil && e.sessions.Available() {
		names, err := e.sessions.Live(ctx)
		if err != nil {
			logging.Debug("failed to list tmux sessions", "error", err)
		}
		live = make(map[string]bool, len(names))
		for _, name := range names {
			live[name] = true
		}
	}

	// claimed holds the sessions that a workspace or a task accounts for.
	claimed := make(map[string]bool)
	var tasks []Task

	for _, ns := range namespaces {
		recorded, _, err := e.store.Get(ctx, ns, metadata.FieldTmuxSession)
		if err != nil {
			return nil, err
		}

		if _, ok := registered[ns]; !ok {
			t := Task{
				Kind:        KindSessionEntry,
				Target:      metadata.Key(ns, "*"),
				Description: fmt.Sprintf("purge metadata of removed workspace %s", ns),
				action:      purgeNamespace,
				workspace:   ns,
			}
			if recorded != "" && live[recorded] {
				t.session = recorded
				t.Description += fmt.Sprintf(" and kill session %s", recorded)
				claimed[recorded] = true
			}
			tasks = append(tasks, t)
			continue
		}

		if recorded != "" && live != nil && !live[recorded] {
			tasks = append(tasks, Task{
				Kind:        KindSessionEntry,
				Target:      metadata.Key(ns, metadata.FieldTmuxSession),
				Description: fmt.Sprintf("clear session record of %s (session %s is gone)", ns, recorded),
				action:      clearSession,
				workspace:   ns,
			})
		}
		if recorded != "" {
			claimed[recorded] = true
		}
	}

	if e.sessions != nil {
		for name := range registered {
			claimed[e.sessions.SessionName(name)] = true
		}
	}

	var strays []string
	for name := range live {
		if !claimed[name] {
			strays = append(strays, name)
		}
	}
	sort.Strings(strays)
	for _, name := range strays {
		tasks = append(tasks, Task{
			Kind:        KindSessionEntry,
			Target:      name,
			Description: fmt.Sprintf("kill tmux session %s (no matching workspace)", name),
			action:      killSession,
			session:     name,
		})
	}
	return tasks, nil
}

// directories lists the directory names directly under the workspace root.
func (e *Engine) directories() ([]string, error) {
	root := e.paths.WorkspaceRoot
	if !e.fs.IsDir(root) {
		return nil, nil
	}
	entries, err := e.fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Execute carries out tasks after confirm approves them. A nil confirm
// approves. A failing task is recorded and the rest still run.
func (e *Engine) Execute(ctx context.Context, tasks []Task, confirm func([]Task) bool) Report {
	var r Report
	if len(tasks) == 0 {
		return r
	}
	if confirm != nil && !confirm(tasks) {
		r.Skipped = len(tasks)
		return r
	}

	for _, t := range tasks {
		if err := e.run(ctx, t); err != nil {
			logging.UserError("%s: %v", t.Description, err)
			r.Failed++
			r.Failures = append(r.Failures, Failure{Task: t, Err: err})
			continue
		}
		logging.Debug("cleanup task done", "kind", t.Kind, "target", t.Target)
		r.Done++
	}

	if e.audit != nil {
		if err := e.audit.LogEvent(audit.EventCleanup, "", fmt.Sprintf("done=%d failed=%d", r.Done, r.Failed)); err != nil {
			logging.Warn("failed to record event", "type", audit.EventCleanup, "error", err)
		}
	}
	return r
}

func (e *Engine) run(ctx context.Context, t Task) error {
	switch t.action {
	case removeDir:
		// The registry may have changed since the scan. A registry that
		// cannot be read keeps the directory.
		_, registered, err := e.registry.Get(ctx, t.workspace)
		if err != nil {
			return fmt.Errorf("cannot confirm %s is unregistered, not removing it: %w", t.Target, err)
		}
		if registered {
			return fmt.Errorf("%s is now a registered worktree, not removing it", t.Target)
		}
		return e.fs.RemoveAll(t.Target)
	case pruneRegistry:
		return e.backend.Prune(ctx, e.paths.RepoRoot)
	case purgeNamespace:
		if t.session != "" {
			if err := e.sessions.Kill(ctx, t.session); err != nil {
				return err
			}
		}
		return e.store.UnsetAll(ctx, t.workspace)
	case clearSession:
		return metadata.ClearSession(ctx, e.store, t.workspace)
	case killSession:
		return e.sessions.Kill(ctx, t.session)
	}
	return fmt.Errorf("unknown cleanup action %d", t.action)
}
