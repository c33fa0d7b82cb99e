// Package workflow drives the discussion/plan/implementation state
// machine and mediates tool invocations against it.
package workflow

import (
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sessiongate/internal/state"
)

// Metadata keys for plan-mode bookkeeping.
const (
	// metaPlanPrevMode remembers the mode that was active when planning
	// began, so exit can restore it.
	metaPlanPrevMode = "plan_prev_mode"

	// metaPlanStashed records how many work items were stashed on entry.
	metaPlanStashed = "plan_stashed_count"
)

// Machine applies mode transitions to session state. All methods mutate
// the given state in place; the caller persists through the store.
type Machine struct {
	logger *zap.Logger
}

// NewMachine creates a workflow machine.
func NewMachine(logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{logger: logger}
}

// EnterPlan moves the session into plan mode, stashing any active work
// items and remembering the prior mode. Entering plan mode while already
// in it is a no-op: the stash and the remembered mode are preserved.
func (m *Machine) EnterPlan(st *state.SessionState) {
	if st.Mode == state.ModePlan {
		return
	}
	stashed := st.WorkItems.StashActive()
	st.Metadata[metaPlanPrevMode] = st.Mode.String()
	st.Metadata[metaPlanStashed] = stashed
	st.Mode = state.ModePlan
	m.logger.Info("entered plan mode",
		zap.Int("stashed", stashed),
	)
}

// ExitPlan leaves plan mode, restoring the stashed work items and the
// remembered mode. A remembered implementation mode is only honored when
// restored work items exist; an approval cannot outlive its scope, so an
// empty restore lands in discussion. Exiting while not in plan mode is a
// no-op.
func (m *Machine) ExitPlan(st *state.SessionState) {
	if st.Mode != state.ModePlan {
		return
	}
	restored := st.WorkItems.RestoreStashed()

	prev := state.ParseMode(st.MetaString(metaPlanPrevMode))
	if prev == state.ModeImplementation && restored == 0 {
		prev = state.ModeDiscussion
	}
	st.Mode = prev
	delete(st.Metadata, metaPlanPrevMode)
	delete(st.Metadata, metaPlanStashed)
	m.logger.Info("exited plan mode",
		zap.Int("restored", restored),
		zap.String("mode", prev.String()),
	)
}

// ForceDiscussion returns the session to discussion mode, dropping the
// active work items. Used when a policy violation revokes the standing
// approval.
func (m *Machine) ForceDiscussion(st *state.SessionState) {
	st.WorkItems.ClearActive()
	st.Mode = state.ModeDiscussion
}

// SetMode applies an external mode transition (the approval and
// revocation paths driven by the operator's intent recognizer, not by
// the mediator itself).
func (m *Machine) SetMode(st *state.SessionState, mode state.Mode) {
	if st.Mode == mode {
		return
	}
	if mode == state.ModePlan {
		m.EnterPlan(st)
		return
	}
	if st.Mode == state.ModePlan {
		// Leaving plan through an external transition still restores
		// the stash before the target mode is applied.
		st.WorkItems.RestoreStashed()
		delete(st.Metadata, metaPlanPrevMode)
		delete(st.Metadata, metaPlanStashed)
	}
	st.Mode = mode
	m.logger.Info("mode changed", zap.String("mode", mode.String()))
}
