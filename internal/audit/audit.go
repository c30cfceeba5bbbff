// Package audit records workspace lifecycle events.
// Events are stored as JSON Lines in a single file per repository.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileName is the event log file inside the state directory.
const FileName = "events.jsonl"

// EventType classifies a lifecycle event.
type EventType string

const (
	EventStart   EventType = "start"
	EventResume  EventType = "resume"
	EventStop    EventType = "stop"
	EventSubmit  EventType = "submit"
	EventCleanup EventType = "cleanup"
	EventError   EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Workspace string    `json:"workspace,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads lifecycle events for one repository.
// Events are stored in {stateDir}/events.jsonl.
type Logger struct {
	path string
	now  func() time.Time
}

// NewLogger creates a new audit logger rooted at stateDir.
func NewLogger(stateDir string) *Logger {
	return &Logger{path: filepath.Join(stateDir, FileName), now: time.Now}
}

// Path returns the event log location.
func (l *Logger) Path() string {
	return l.path
}

// Log appends an event to the log, filling in ID and timestamp if unset.
func (l *Logger) Log(event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, workspace, details string) error {
	return l.Log(Event{Type: eventType, Workspace: workspace, Details: details})
}

// Events reads all events in chronological order.
func (l *Logger) Events() ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// For returns the events recorded for one workspace.
func (l *Logger) For(workspace string) ([]Event, error) {
	all, err := l.Events()
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, e := range all {
		if e.Workspace == workspace {
			out = append(out, e)
		}
	}
	return out, nil
}

// CreatedAt returns, per workspace, the time of the most recent start event
// that has not been followed by a stop.
func (l *Logger) CreatedAt() (map[string]time.Time, error) {
	events, err := l.Events()
	if err != nil {
		return nil, err
	}
	created := make(map[string]time.Time)
	for _, e := range events {
		switch e.Type {
		case EventStart:
			created[e.Workspace] = e.Timestamp
		case EventStop:
			delete(created, e.Workspace)
		}
	}
	return created, nil
}
