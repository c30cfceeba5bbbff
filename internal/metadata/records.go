package metadata

import (
	"context"
	"strconv"
)

// NoPane marks an absent pane index.
const NoPane = -1

// Workspace holds the facts recorded when a workspace is created.
type Workspace struct {
	Name         string `json:"name"`
	BaseBranch   string `json:"base"`
	OriginDir    string `json:"originDir"`
	OriginBranch string `json:"originBranch"`
}

// Session describes the tmux session bound to a workspace.
type Session struct {
	TmuxSession string `json:"tmuxSession"`
	AgentPane   int    `json:"agentPane"`
	AgentKind   string `json:"agentKind"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	ServerPort  int    `json:"serverPort,omitempty"`
	ServerPane  int    `json:"serverPane"`
}

// HasServer reports whether the session runs a dev server pane.
func (s *Session) HasServer() bool {
	return s.ServerPane != NoPane
}

// sessionFields lists every field owned by the session record.
var sessionFields = []string{
	FieldTmuxSession,
	FieldAgentPane,
	FieldAgentKind,
	FieldDisplayName,
	FieldDescription,
	FieldServerPort,
	FieldServerPane,
}

// SaveWorkspace writes the creation facts of w.
func SaveWorkspace(ctx context.Context, s Store, w *Workspace) error {
	fields := []struct{ key, value string }{
		{FieldBase, w.BaseBranch},
		{FieldOriginDir, w.OriginDir},
		{FieldOriginBranch, w.OriginBranch},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := s.Set(ctx, w.Name, f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

// LoadWorkspace reads the creation facts of the named workspace. ok is
// false when none are recorded.
func LoadWorkspace(ctx context.Context, s Store, name string) (*Workspace, bool, error) {
	w := &Workspace{Name: name}
	found := false
	for _, f := range []struct {
		key string
		dst *string
	}{
		{FieldBase, &w.BaseBranch},
		{FieldOriginDir, &w.OriginDir},
		{FieldOriginBranch, &w.OriginBranch},
	} {
		value, ok, err := s.Get(ctx, name, f.key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			*f.dst = value
			found = true
		}
	}
	return w, found, nil
}

// SaveSession writes the session record of a workspace, replacing any
// previous one.
func SaveSession(ctx context.Context, s Store, workspace string, sess *Session) error {
	if err := ClearSession(ctx, s, workspace); err != nil {
		return err
	}

	values := map[string]string{
		FieldTmuxSession: sess.TmuxSession,
		FieldAgentPane:   strconv.Itoa(sess.AgentPane),
		FieldAgentKind:   sess.AgentKind,
		FieldDisplayName: sess.DisplayName,
		FieldDescription: sess.Description,
	}
	if sess.ServerPort > 0 {
		values[FieldServerPort] = strconv.Itoa(sess.ServerPort)
	}
	if sess.HasServer() {
		values[FieldServerPane] = strconv.Itoa(sess.ServerPane)
	}

	for _, key := range sessionFields {
		value, ok := values[key]
		if !ok || value == "" {
			continue
		}
		if err := s.Set(ctx, workspace, key, value); err != nil {
			return err
		}
	}
	return nil
}

// LoadSession reads the session record of a workspace. ok is false when
// no tmux session is recorded.
func LoadSession(ctx context.Context, s Store, workspace string) (*Session, bool, error) {
	name, ok, err := s.Get(ctx, workspace, FieldTmuxSession)
	if err != nil || !ok {
		return nil, false, err
	}

	sess := &Session{TmuxSession: name, AgentPane: NoPane, ServerPane: NoPane}
	strs := map[string]*string{
		FieldAgentKind:   &sess.AgentKind,
		FieldDisplayName: &sess.DisplayName,
		FieldDescription: &sess.Description,
	}
	for key, dst := range strs {
		if *dst, _, err = s.Get(ctx, workspace, key); err != nil {
			return nil, false, err
		}
	}

	ints := map[string]*int{
		FieldAgentPane:  &sess.AgentPane,
		FieldServerPort: &sess.ServerPort,
		FieldServerPane: &sess.ServerPane,
	}
	for key, dst := range ints {
		value, ok, err := s.Get(ctx, workspace, key)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(value); err == nil {
			*dst = n
		}
	}
	return sess, true, nil
}

// ClearSession removes every session field of a workspace, leaving its
// creation facts in place.
func ClearSession(ctx context.Context, s Store, workspace string) error {
	for _, key := range sessionFields {
		if err := s.Unset(ctx, workspace, key); err != nil {
			return err
		}
	}
	return nil
}

// ServerPorts returns the dev-server ports recorded across all
// workspaces, keyed by port.
func ServerPorts(ctx context.Context, s Store) (map[int]string, error) {
	names, err := s.ListNamespaces(ctx, "^"+FieldServerPort+"$")
	if err != nil {
		return nil, err
	}
	ports := make(map[int]string, len(names))
	for _, name := range names {
		value, ok, err := s.Get(ctx, name, FieldServerPort)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if port, err := strconv.Atoi(value); err == nil {
			ports[port] = name
		}
	}
	return ports, nil
}
