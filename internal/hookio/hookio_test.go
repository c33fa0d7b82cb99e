package hookio

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	input := `{
		"tool_name": "Bash",
		"tool_input": {"command": "ls -la"},
		"cwd": "/work/project"
	}`

	req, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, ToolBash, req.ToolName)
	assert.Equal(t, "ls -la", req.ToolInput.Command)
	assert.Equal(t, "/work/project", req.CWD)
}

func TestDecodeTodos(t *testing.T) {
	input := `{
		"tool_name": "TodoWrite",
		"tool_input": {"todos": [
			{"content": "add retries", "status": "pending"},
			{"content": "write tests"}
		]}
	}`

	req, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, req.ToolInput.Todos, 2)
	assert.Equal(t, "add retries", req.ToolInput.Todos[0].Content)
	assert.Equal(t, "pending", req.ToolInput.Todos[0].Status)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not json", "tool_name=Bash"},
		{"missing tool name", `{"tool_input": {"command": "ls"}}`},
		{"truncated", `{"tool_name": "Bash"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformedRequest)
		})
	}
}

func TestWritesFiles(t *testing.T) {
	for _, tool := range []string{ToolWrite, ToolEdit, ToolMultiEdit, ToolNotebookEdit} {
		assert.True(t, WritesFiles(tool), tool)
	}
	for _, tool := range []string{ToolBash, ToolTodoWrite, ToolTask, "WebSearch"} {
		assert.False(t, WritesFiles(tool), tool)
	}
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, CodeAllow, Allow().ExitCode())
	assert.Equal(t, CodeBlock, Block("Bash", "discussion", "r", "fix").ExitCode())
	assert.Equal(t, CodeFatal, Fatal(assert.AnError).ExitCode())
}

func TestEmitAllowIsSilent(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, Allow().Emit(&stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestEmitBlockWritesBodyAndDiagnostics(t *testing.T) {
	var stdout, stderr bytes.Buffer
	d := Block("Bash", "discussion", "write-like command", "wait for approval")
	require.NoError(t, d.Emit(&stdout, &stderr))

	var body struct {
		Reason      string `json:"reason"`
		Remediation string `json:"remediation"`
		Mode        string `json:"mode"`
		BlockedTool string `json:"blocked_tool"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &body))
	assert.Equal(t, "write-like command", body.Reason)
	assert.Equal(t, "wait for approval", body.Remediation)
	assert.Equal(t, "discussion", body.Mode)
	assert.Equal(t, "Bash", body.BlockedTool)

	assert.Contains(t, stderr.String(), "blocked Bash")
	assert.Contains(t, stderr.String(), "wait for approval")
}

func TestEmitFatalWritesStderrOnly(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, Fatal(assert.AnError).Emit(&stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "fatal")
}
