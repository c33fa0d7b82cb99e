// Package hookio defines the wire contract between the host agent and
// the mediator: the incoming tool-invocation request, the outgoing
// decision, and the three-valued exit-code taxonomy.
package hookio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Tool identities the mediator recognizes. Unknown identities are passed
// through the mode gate like any other tool.
const (
	ToolBash         = "Bash"
	ToolWrite        = "Write"
	ToolEdit         = "Edit"
	ToolMultiEdit    = "MultiEdit"
	ToolNotebookEdit = "NotebookEdit"
	ToolTodoWrite    = "TodoWrite"
	ToolEnterPlan    = "EnterPlanMode"
	ToolExitPlan     = "ExitPlanMode"
	ToolTask         = "Task"
)

// ErrMalformedRequest indicates the request payload could not be parsed.
// Malformed input is fatal; the mediator never silently allows what it
// cannot evaluate.
var ErrMalformedRequest = errors.New("malformed hook request")

// Request describes one candidate tool invocation.
type Request struct {
	ToolName  string    `json:"tool_name"`
	ToolInput ToolInput `json:"tool_input"`
	CWD       string    `json:"cwd,omitempty"`
}

// ToolInput carries the tool parameters the mediator inspects. Fields
// irrelevant to a given tool are simply empty.
type ToolInput struct {
	// Command is the verbatim shell command for shell-executing tools.
	Command string `json:"command,omitempty"`

	// FilePath is the target path for file-mutating tools.
	FilePath string `json:"file_path,omitempty"`

	// Todos is the submitted work-item list for the work-item tool.
	Todos []Todo `json:"todos,omitempty"`
}

// Todo is one submitted work item.
type Todo struct {
	Content string `json:"content"`
	Status  string `json:"status,omitempty"`
}

// WritesFiles reports whether the tool identity mutates files through a
// file_path parameter.
func WritesFiles(tool string) bool {
	switch tool {
	case ToolWrite, ToolEdit, ToolMultiEdit, ToolNotebookEdit:
		return true
	}
	return false
}

// Decode reads one request from r. Any decoding failure, or a request
// without a tool identity, is ErrMalformedRequest.
func Decode(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if req.ToolName == "" {
		return nil, fmt.Errorf("%w: missing tool_name", ErrMalformedRequest)
	}
	return &req, nil
}
