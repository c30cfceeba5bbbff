package lifecycle

import (
	"context"
	"time"

	"github.com/firefly-engineering/grove/internal/logging"
	"github.com/firefly-engineering/grove/internal/metadata"
)

// Status is one row of List.
type Status struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Branch      string    `json:"branch"`
	Base        string    `json:"base,omitempty"`
	Session     string    `json:"session,omitempty"`
	Alive       bool      `json:"alive"`
	DisplayName string    `json:"displayName,omitempty"`
	Description string    `json:"description,omitempty"`
	ServerPort  int       `json:"serverPort,omitempty"`
	Created     time.Time `json:"created,omitzero"`
	Current     bool      `json:"current"`
	Prunable    bool      `json:"prunable,omitempty"`
}

// List returns every registered workspace with its recorded metadata and
// session liveness.
func (m *Manager) List(ctx context.Context) ([]Status, error) {
	workspaces, err := m.Registry.Workspaces(ctx)
	if err != nil {
		return nil, err
	}

	var created map[string]time.Time
	if m.Audit != nil {
		if created, err = m.Audit.CreatedAt(); err != nil {
			logging.Debug("failed to read event log", "error", err)
		}
	}
	current, _ := m.Paths.WorkspaceAt(m.WorkDir)

	result := make([]Status, 0, len(workspaces))
	for _, wt := range workspaces {
		name := wt.Name()
		st := Status{
			Name:     name,
			Path:     wt.Path,
			Branch:   wt.Branch,
			Created:  created[name],
			Current:  name == current,
			Prunable: wt.Prunable,
		}
		if rec, ok, err := metadata.LoadWorkspace(ctx, m.Store, name); err == nil && ok {
			st.Base = rec.BaseBranch
		}
		if ss, err := m.Sessions.Inspect(ctx, name); err == nil && ss.Recorded() {
			st.Session = ss.Record.TmuxSession
			st.Alive = ss.Alive
			st.DisplayName = ss.Record.DisplayName
			st.Description = ss.Record.Description
			st.ServerPort = ss.Record.ServerPort
		}
		result = append(result, st)
	}
	return result, nil
}
