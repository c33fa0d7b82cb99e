// Package state persists session workflow state for sessiongate.
//
// The state file is the single source of truth for the current workflow
// mode, the active task, and the approved work-item list. Every mediation
// decision reads it, and every mutation goes through Store.Update, which
// performs an atomic write-to-temp-then-rename so a killed invocation can
// never leave a partially written file behind.
package state

import "strings"

// Mode is the current workflow mode.
type Mode string

const (
	// ModeDiscussion is the default mode: the agent investigates and
	// proposes, write-capable tools are gated.
	ModeDiscussion Mode = "discussion"

	// ModePlan is a planning interlude entered through the planning tool.
	// Active work items are stashed for the duration.
	ModePlan Mode = "plan"

	// ModeImplementation permits write-capable tools. It is entered only
	// by an explicit external approval, never by the mediator itself.
	ModeImplementation Mode = "implementation"
)

// ParseMode converts a stored mode string, defaulting unknown values to
// ModeDiscussion so a damaged mode field degrades to the safest mode.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(s)) {
	case ModePlan:
		return ModePlan
	case ModeImplementation:
		return ModeImplementation
	default:
		return ModeDiscussion
	}
}

// String returns the wire form of the mode.
func (m Mode) String() string { return string(m) }

// WorkItem is a single approved unit of planned work. Items are compared
// by Content only; Status is free to change as work progresses.
type WorkItem struct {
	Content string `json:"content"`
	Status  string `json:"status,omitempty"`
}

// WorkItems holds the active list and the plan-mode stash.
type WorkItems struct {
	Active  []WorkItem `json:"active,omitempty"`
	Stashed []WorkItem `json:"stashed,omitempty"`
}

// ActiveContent returns the ordered content strings of the active list.
func (w *WorkItems) ActiveContent() []string {
	out := make([]string, len(w.Active))
	for i, item := range w.Active {
		out[i] = item.Content
	}
	return out
}

// StashActive moves the active list into the stash and returns the number
// of items moved. It refuses to overwrite an existing stash.
func (w *WorkItems) StashActive() int {
	if len(w.Stashed) > 0 || len(w.Active) == 0 {
		return 0
	}
	w.Stashed = w.Active
	w.Active = nil
	return len(w.Stashed)
}

// RestoreStashed moves the stash back into the active slot, replacing
// whatever is there, and returns the number of items restored.
func (w *WorkItems) RestoreStashed() int {
	if len(w.Stashed) == 0 {
		return 0
	}
	w.Active = w.Stashed
	w.Stashed = nil
	return len(w.Active)
}

// ClearActive drops the active list.
func (w *WorkItems) ClearActive() {
	w.Active = nil
}

// Task describes the active work item's git requirements: every listed
// repository must be on Branch while the task is active.
type Task struct {
	Name         string   `json:"name,omitempty"`
	Branch       string   `json:"branch,omitempty"`
	Repositories []string `json:"repositories,omitempty"`
}

// HasRepository reports whether the repository short name is declared in
// the task.
func (t *Task) HasRepository(name string) bool {
	if t == nil {
		return false
	}
	for _, r := range t.Repositories {
		if r == name {
			return true
		}
	}
	return false
}

// Flags is a set of named booleans. Some flags are one-shot and are
// consumed with Take; others (like the bypass escape hatch) persist until
// explicitly cleared.
type Flags map[string]bool

// Has reports whether the flag is set without consuming it.
func (f Flags) Has(name string) bool { return f[name] }

// Set sets or clears a flag.
func (f Flags) Set(name string, v bool) {
	if v {
		f[name] = true
	} else {
		delete(f, name)
	}
}

// Take reads a one-shot flag and clears it.
func (f Flags) Take(name string) bool {
	v := f[name]
	delete(f, name)
	return v
}

// FlagBypass short-circuits all enforcement. It is only ever set
// explicitly by an operator or CI setup step, never inferred.
const FlagBypass = "bypass"

// SessionState is the persisted workflow state for a project.
//
// Metadata is an open key/value bag owned by external collaborators and
// by the workflow machine's plan-mode bookkeeping; the classifier and the
// branch checker never read it.
type SessionState struct {
	Version     int            `json:"version"`
	Mode        Mode           `json:"mode"`
	CurrentTask *Task          `json:"current_task,omitempty"`
	WorkItems   WorkItems      `json:"work_items"`
	Flags       Flags          `json:"flags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// schemaVersion is the current state file schema.
const schemaVersion = 1

// NewSessionState returns a fresh default state: Discussion mode, no
// task, everything empty.
func NewSessionState() *SessionState {
	return &SessionState{
		Version:  schemaVersion,
		Mode:     ModeDiscussion,
		Flags:    Flags{},
		Metadata: map[string]any{},
	}
}

// normalize repairs nil containers after JSON decoding so callers can use
// the maps without nil checks.
func (s *SessionState) normalize() {
	if s.Version == 0 {
		s.Version = schemaVersion
	}
	s.Mode = ParseMode(string(s.Mode))
	if s.Flags == nil {
		s.Flags = Flags{}
	}
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
}

// MetaString reads a string metadata value, tolerating absent or
// non-string entries.
func (s *SessionState) MetaString(key string) string {
	if v, ok := s.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// MetaInt reads a numeric metadata value. JSON decoding yields float64
// for numbers, so both int and float64 are accepted.
func (s *SessionState) MetaInt(key string) int {
	switch v := s.Metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
