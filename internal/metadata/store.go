package metadata

import (
	"context"
	"strings"
)

// Section is the git config section every workspace namespace lives in.
const Section = "workspace"

// Field names stored in a workspace namespace.
const (
	FieldBase         = "base"
	FieldOriginDir    = "origin-dir"
	FieldOriginBranch = "origin-branch"

	FieldTmuxSession = "tmux-session"
	FieldAgentPane   = "ai-pane"
	FieldAgentKind   = "ai-agent"
	FieldDisplayName = "session-name"
	FieldDescription = "session-description"
	FieldServerPort  = "server-port"
	FieldServerPane  = "server-pane"
)

// Store persists namespaced key/value facts about workspaces. Each
// workspace owns one namespace; keys are field names.
type Store interface {
	// Set stores value under key in the workspace namespace.
	Set(ctx context.Context, workspace, key, value string) error

	// Get returns the value of key. ok is false when the key is absent.
	Get(ctx context.Context, workspace, key string) (value string, ok bool, err error)

	// Unset removes key. Removing an absent key is not an error.
	Unset(ctx context.Context, workspace, key string) error

	// UnsetAll removes the whole namespace. Removing an absent namespace
	// is not an error.
	UnsetAll(ctx context.Context, workspace string) error

	// ListNamespaces returns the sorted names of workspaces holding at
	// least one key matching the regular expression keyPattern. An empty
	// pattern matches every key.
	ListNamespaces(ctx context.Context, keyPattern string) ([]string, error)
}

// Key returns the fully qualified key for a workspace field.
func Key(workspace, field string) string {
	return Section + "." + workspace + "." + field
}

// SplitKey splits a fully qualified key into workspace and field. The
// workspace name is everything between the first and the last dot.
func SplitKey(key string) (workspace, field string, ok bool) {
	rest, found := strings.CutPrefix(key, Section+".")
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, ".")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
