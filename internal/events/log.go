// Package events appends workflow events to a JSONL stream under the
// project's working-state directory. Logging is best effort: a failure to
// record an event never alters a mediation decision.
package events

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileName is the event stream inside the .sessiongate directory.
const FileName = "events.jsonl"

// Event is one recorded workflow occurrence.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	Tool      string            `json:"tool,omitempty"`
	Mode      string            `json:"mode,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Event types recorded by the mediator.
const (
	TypeToolAllowed    = "tool_allowed"
	TypeToolBlocked    = "tool_blocked"
	TypeScopeViolation = "scope_violation"
	TypeBranchMismatch = "branch_mismatch"
	TypeModeChanged    = "mode_changed"
)

// Log appends events for one project.
type Log struct {
	path    string
	enabled bool
	logger  *zap.Logger
}

// NewLog creates an event log rooted at the project's state directory.
// A disabled log swallows all appends.
func NewLog(stateDir string, enabled bool, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		path:    filepath.Join(stateDir, FileName),
		enabled: enabled,
		logger:  logger,
	}
}

// Append records one event. Errors are logged at debug level and
// otherwise ignored.
func (l *Log) Append(ev Event) {
	if l == nil || !l.enabled {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(ev)
	if err != nil {
		l.logger.Debug("failed to marshal event", zap.Error(err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		l.logger.Debug("failed to create event log directory", zap.Error(err))
		return
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		l.logger.Debug("failed to open event log", zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		l.logger.Debug("failed to append event", zap.Error(err))
	}
}
