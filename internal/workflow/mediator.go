package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sessiongate/internal/branch"
	"github.com/fyrsmithlabs/sessiongate/internal/classify"
	"github.com/fyrsmithlabs/sessiongate/internal/events"
	"github.com/fyrsmithlabs/sessiongate/internal/hookio"
	"github.com/fyrsmithlabs/sessiongate/internal/policy"
	"github.com/fyrsmithlabs/sessiongate/internal/state"
	"github.com/fyrsmithlabs/sessiongate/internal/workitems"
)

// EnvBypass disables all enforcement for the invocation when set to "1".
// Like the state flag, it is only ever set explicitly.
const EnvBypass = "SESSIONGATE_BYPASS"

// Mediator evaluates tool invocations against the session state and the
// operator policy, producing an allow/block/fatal decision.
type Mediator struct {
	projectRoot string
	store       *state.Store
	cfg         *policy.Config
	machine     *Machine
	guard       *workitems.Guard
	checker     *branch.Checker
	events      *events.Log
	logger      *zap.Logger
}

// NewMediator wires a mediator for one project.
func NewMediator(projectRoot string, store *state.Store, cfg *policy.Config, checker *branch.Checker, eventLog *events.Log, logger *zap.Logger) *Mediator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mediator{
		projectRoot: projectRoot,
		store:       store,
		cfg:         cfg,
		machine:     NewMachine(logger),
		guard:       workitems.NewGuard(logger),
		checker:     checker,
		events:      eventLog,
		logger:      logger,
	}
}

// Mediate evaluates one tool invocation.
//
// The decision ladder: bypass, plan-mode transitions, shell commands,
// work-item submissions, then file-mutating tools. Anything that falls
// through is allowed; enforcement is a deny-list over known risk, not an
// allow-list over known tools.
func (m *Mediator) Mediate(ctx context.Context, req *hookio.Request) hookio.Decision {
	st, err := m.store.Load()
	if err != nil {
		if errors.Is(err, state.ErrStateCorrupted) {
			err = fmt.Errorf("%w; restore %s from backup or delete it to start fresh", err, m.store.Path())
		}
		return hookio.Fatal(err)
	}

	if st.Flags.Has(state.FlagBypass) || os.Getenv(EnvBypass) == "1" {
		m.logger.Warn("bypass active; skipping enforcement",
			zap.String("tool", req.ToolName),
		)
		m.events.Append(events.Event{
			Type: events.TypeToolAllowed,
			Tool: req.ToolName,
			Mode: st.Mode.String(),
			Fields: map[string]string{
				"bypass": "true",
			},
		})
		return hookio.Allow()
	}

	switch req.ToolName {
	case hookio.ToolEnterPlan:
		return m.planTransition(st, true)
	case hookio.ToolExitPlan:
		return m.planTransition(st, false)
	case hookio.ToolBash:
		return m.mediateShell(st, req)
	case hookio.ToolTodoWrite:
		return m.mediateWorkItems(st, req)
	}

	if hookio.WritesFiles(req.ToolName) {
		return m.mediateFileWrite(ctx, st, req)
	}

	// Non-file tools on the operator's block list are still gated
	// outside implementation mode.
	if st.Mode != state.ModeImplementation && m.cfg.IsToolBlocked(req.ToolName) {
		return m.block(st, req.ToolName,
			fmt.Sprintf("%s is not permitted in %s mode.", req.ToolName, st.Mode),
			m.approvalRemediation())
	}

	return m.allow(st, req.ToolName)
}

// planTransition applies the plan-mode tools. Both directions are
// idempotent and always allowed.
func (m *Mediator) planTransition(prev *state.SessionState, enter bool) hookio.Decision {
	st, err := m.store.Update(func(st *state.SessionState) error {
		if enter {
			m.machine.EnterPlan(st)
		} else {
			m.machine.ExitPlan(st)
		}
		return nil
	})
	if err != nil {
		return hookio.Fatal(err)
	}
	if st.Mode != prev.Mode {
		m.events.Append(events.Event{
			Type: events.TypeModeChanged,
			Mode: st.Mode.String(),
			Fields: map[string]string{
				"from": prev.Mode.String(),
			},
		})
	}
	return hookio.Allow()
}

// mediateShell gates shell commands on the risk classifier.
func (m *Mediator) mediateShell(st *state.SessionState, req *hookio.Request) hookio.Decision {
	cmd := req.ToolInput.Command

	if selfInvocation(cmd) {
		if selfInvocationMutates(cmd) && st.Mode != state.ModeImplementation {
			return m.block(st, req.ToolName,
				"Workflow state cannot be changed from inside the session.",
				m.approvalRemediation())
		}
		return m.allow(st, req.ToolName)
	}

	risk := classify.Classify(cmd, classify.Policy{
		ReadNames:  m.cfg.Commands.ReadPatterns,
		WriteNames: m.cfg.Commands.WritePatterns,
		Extrasafe:  m.cfg.Commands.ExtrasafeEnabled(),
	})

	if risk == classify.WriteLike && m.mentionsStateFile(cmd) {
		return m.block(st, req.ToolName,
			"The session state file is managed exclusively by sessiongate and cannot be written directly.",
			"Use the sessiongate CLI to change workflow state.")
	}

	if risk == classify.ReadOnly || st.Mode == state.ModeImplementation {
		return m.allow(st, req.ToolName)
	}

	return m.block(st, req.ToolName,
		fmt.Sprintf("Write-like shell commands are not permitted in %s mode.", st.Mode),
		m.approvalRemediation())
}

// mediateWorkItems routes a work-item submission through the scope guard.
func (m *Mediator) mediateWorkItems(prev *state.SessionState, req *hookio.Request) hookio.Decision {
	items := make([]state.WorkItem, len(req.ToolInput.Todos))
	for i, t := range req.ToolInput.Todos {
		items[i] = state.WorkItem{Content: t.Content, Status: t.Status}
	}

	var res workitems.Result
	_, err := m.store.Update(func(st *state.SessionState) error {
		res = m.guard.Submit(st, items)
		return nil
	})
	if err != nil {
		return hookio.Fatal(err)
	}

	if !res.Accepted {
		m.events.Append(events.Event{
			Type:   events.TypeScopeViolation,
			Tool:   req.ToolName,
			Mode:   state.ModeDiscussion.String(),
			Reason: res.Reason,
		})
		return hookio.Block(req.ToolName, state.ModeDiscussion.String(), res.Reason, res.Remediation)
	}
	return m.allow(prev, req.ToolName)
}

// mediateFileWrite gates the file-mutating tools: the state file is
// always protected, work artifacts stay writable in every mode, and
// everything else requires implementation mode plus a consistent branch.
func (m *Mediator) mediateFileWrite(ctx context.Context, st *state.SessionState, req *hookio.Request) hookio.Decision {
	path := req.ToolInput.FilePath

	if path != "" && samePath(m.projectRoot, path, m.store.Path()) {
		return m.block(st, req.ToolName,
			"The session state file is managed exclusively by sessiongate and cannot be written directly.",
			"Use the sessiongate CLI to change workflow state.")
	}

	if m.cfg.IsWorkArtifactPath(m.projectRoot, path) {
		return m.allow(st, req.ToolName)
	}

	if st.Mode != state.ModeImplementation && m.cfg.IsToolBlocked(req.ToolName) {
		return m.block(st, req.ToolName,
			fmt.Sprintf("%s is not permitted in %s mode.", req.ToolName, st.Mode),
			m.approvalRemediation())
	}

	if m.cfg.Features.BranchEnforcementEnabled() && st.CurrentTask != nil {
		check := m.checker.Verify(ctx, m.projectRoot, path, st.CurrentTask)
		if check.Outcome != branch.OutcomeAllow {
			m.events.Append(events.Event{
				Type:   events.TypeBranchMismatch,
				Tool:   req.ToolName,
				Mode:   st.Mode.String(),
				Reason: check.Reason(),
				Fields: map[string]string{
					"repo":    check.Repo,
					"current": check.CurrentBranch,
					"want":    check.WantBranch,
				},
			})
			return hookio.Block(req.ToolName, st.Mode.String(), check.Reason(), check.Remediation())
		}
	}

	return m.allow(st, req.ToolName)
}

// mentionsStateFile reports whether a shell command refers to the state
// file: by absolute path, by project-relative path, or by naming both
// the state directory and the file (catching cd-then-write). A substring
// heuristic; the file-tool path check is exact.
func (m *Mediator) mentionsStateFile(cmd string) bool {
	if strings.Contains(cmd, m.store.Path()) {
		return true
	}
	if rel, err := filepath.Rel(m.projectRoot, m.store.Path()); err == nil && strings.Contains(cmd, rel) {
		return true
	}
	return strings.Contains(cmd, state.DirName) && strings.Contains(cmd, state.FileName)
}

// approvalRemediation quotes the operator's configured approval phrases.
func (m *Mediator) approvalRemediation() string {
	phrases := m.cfg.TriggerPhrases.ImplementationMode
	if len(phrases) == 0 {
		return "Discuss the change and wait for explicit approval before making it."
	}
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return fmt.Sprintf("Discuss the change and wait for the operator to approve it (for example %s).",
		strings.Join(quoted, ", "))
}

func (m *Mediator) allow(st *state.SessionState, tool string) hookio.Decision {
	m.events.Append(events.Event{
		Type: events.TypeToolAllowed,
		Tool: tool,
		Mode: st.Mode.String(),
	})
	return hookio.Allow()
}

func (m *Mediator) block(st *state.SessionState, tool, reason, remediation string) hookio.Decision {
	m.logger.Info("blocked tool invocation",
		zap.String("tool", tool),
		zap.String("mode", st.Mode.String()),
		zap.String("reason", reason),
	)
	m.events.Append(events.Event{
		Type:   events.TypeToolBlocked,
		Tool:   tool,
		Mode:   st.Mode.String(),
		Reason: reason,
	})
	return hookio.Block(tool, st.Mode.String(), reason, remediation)
}

// selfInvocation reports whether the command's leading token invokes the
// sessiongate binary itself. Such invocations are the sanctioned path for
// reading state from inside the session.
func selfInvocation(cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false
	}
	name := fields[0]
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name == "sessiongate"
}

// selfInvocationMutates reports whether a sessiongate self-invocation
// changes workflow state rather than inspecting it. Mode transitions,
// the bypass flag, and task edits all alter what the gate enforces, so
// they stay with the operator; "state show", bare "mode", "version" and
// "hook" remain freely runnable.
func selfInvocationMutates(cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) < 2 {
		return false
	}
	switch fields[1] {
	case "mode":
		// "mode" with a target argument is a transition; bare "mode"
		// just prints the current mode.
		return len(fields) > 2
	case "state":
		if len(fields) < 3 {
			return false
		}
		return fields[2] == "bypass" || fields[2] == "task"
	}
	return false
}

// samePath compares a tool path against the protected state file path,
// resolving relative paths against the project root.
func samePath(projectRoot, candidate, protected string) bool {
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(projectRoot, candidate)
	}
	return filepath.Clean(candidate) == filepath.Clean(protected)
}
