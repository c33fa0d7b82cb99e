// Package workitems enforces the approved-scope invariant on work-item
// submissions.
//
// Once a list has been accepted while Implementation mode is active, any
// later submission in the same episode must carry the identical ordered
// content. A divergent submission clears the active list and forces the
// workflow back to Discussion, so scope can only grow through a fresh
// proposal and a fresh approval.
package workitems

import (
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sessiongate/internal/state"
)

// Result reports the outcome of a submission. The state mutation has
// already been applied either way; the caller persists it and converts a
// rejection into a block decision.
type Result struct {
	Accepted    bool
	Stored      int
	Reason      string
	Remediation string
}

// Guard validates work-item submissions against the approved scope.
type Guard struct {
	logger *zap.Logger
}

// NewGuard creates a scope guard.
func NewGuard(logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger}
}

// Submit applies one work-item submission to the session state.
//
// Outside Implementation mode the submission is a proposal and simply
// replaces the active list. In Implementation mode with an existing
// active list, the incoming content must match the approved content
// byte-for-byte, in order; statuses are free to change. On mismatch the
// active list is cleared and the mode forced to Discussion.
func (g *Guard) Submit(st *state.SessionState, items []state.WorkItem) Result {
	if st.Mode == state.ModeImplementation && len(st.WorkItems.Active) > 0 {
		if !sameContent(st.WorkItems.Active, items) {
			g.logger.Warn("work-item list diverged from approved scope",
				zap.Int("approved", len(st.WorkItems.Active)),
				zap.Int("submitted", len(items)),
			)
			st.WorkItems.ClearActive()
			st.Mode = state.ModeDiscussion
			return Result{
				Accepted: false,
				Reason:   "Work-item list changed after approval; this violates the agreed execution scope.",
				Remediation: "The approved items were cleared and the session returned to discussion mode. " +
					"Propose the updated list and seek re-approval, or re-submit the previously approved items exactly as agreed.",
			}
		}
	}

	st.WorkItems.Active = items
	return Result{Accepted: true, Stored: len(items)}
}

// sameContent compares ordered content strings, ignoring statuses.
func sameContent(a, b []state.WorkItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Content != b[i].Content {
			return false
		}
	}
	return true
}
