package workitems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/sessiongate/internal/state"
)

func items(contents ...string) []state.WorkItem {
	out := make([]state.WorkItem, len(contents))
	for i, c := range contents {
		out[i] = state.WorkItem{Content: c}
	}
	return out
}

func TestSubmitProposalInDiscussion(t *testing.T) {
	g := NewGuard(nil)
	st := state.NewSessionState()

	res := g.Submit(st, items("add retries", "write tests"))
	assert.True(t, res.Accepted)
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, []string{"add retries", "write tests"}, st.WorkItems.ActiveContent())

	// Proposals freely replace each other before approval.
	res = g.Submit(st, items("different plan"))
	assert.True(t, res.Accepted)
	assert.Equal(t, []string{"different plan"}, st.WorkItems.ActiveContent())
	assert.Equal(t, state.ModeDiscussion, st.Mode)
}

func TestSubmitIdenticalContentInImplementation(t *testing.T) {
	g := NewGuard(nil)
	st := state.NewSessionState()
	st.Mode = state.ModeImplementation
	st.WorkItems.Active = []state.WorkItem{
		{Content: "add retries", Status: "pending"},
		{Content: "write tests", Status: "pending"},
	}

	// Same content with updated statuses is a status update, not a
	// scope change.
	res := g.Submit(st, []state.WorkItem{
		{Content: "add retries", Status: "completed"},
		{Content: "write tests", Status: "in_progress"},
	})
	require.True(t, res.Accepted)
	assert.Equal(t, state.ModeImplementation, st.Mode)
	assert.Equal(t, "completed", st.WorkItems.Active[0].Status)
}

func TestSubmitDivergentContentInImplementation(t *testing.T) {
	tests := []struct {
		name      string
		submitted []state.WorkItem
	}{
		{"extra item", items("add retries", "write tests", "sneak in refactor")},
		{"missing item", items("add retries")},
		{"changed content", items("add retries", "rewrite everything")},
		{"reordered", items("write tests", "add retries")},
		{"empty list", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(nil)
			st := state.NewSessionState()
			st.Mode = state.ModeImplementation
			st.WorkItems.Active = items("add retries", "write tests")

			res := g.Submit(st, tt.submitted)
			assert.False(t, res.Accepted)
			assert.NotEmpty(t, res.Reason)
			assert.NotEmpty(t, res.Remediation)

			// The violation revokes the approval entirely.
			assert.Empty(t, st.WorkItems.Active)
			assert.Equal(t, state.ModeDiscussion, st.Mode)
		})
	}
}

func TestSubmitInImplementationWithNoActiveList(t *testing.T) {
	g := NewGuard(nil)
	st := state.NewSessionState()
	st.Mode = state.ModeImplementation

	// Nothing approved yet, so the first submission establishes scope.
	res := g.Submit(st, items("first item"))
	assert.True(t, res.Accepted)
	assert.Equal(t, state.ModeImplementation, st.Mode)
	assert.Equal(t, []string{"first item"}, st.WorkItems.ActiveContent())
}
