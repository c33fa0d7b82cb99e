package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".sessiongate")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0600))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Commands.ExtrasafeEnabled())
	assert.True(t, cfg.Features.BranchEnforcementEnabled())
	assert.True(t, cfg.Features.EventLogEnabled())
	assert.Equal(t, 2*time.Second, cfg.Git.Timeout)
	assert.Contains(t, cfg.BlockedTools, "Write")
	assert.Contains(t, cfg.BlockedTools, "Edit")
	assert.Contains(t, cfg.TriggerPhrases.ImplementationMode, "make it so")
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	writePolicy(t, root, `
commands:
  extrasafe: false
  read_patterns:
    - mytool
blocked_tools:
  - Write
git:
  timeout: 5s
features:
  branch_enforcement: false
logging:
  format: json
  level: debug
`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.False(t, cfg.Commands.ExtrasafeEnabled())
	assert.Equal(t, []string{"mytool"}, cfg.Commands.ReadPatterns)
	assert.Equal(t, []string{"Write"}, cfg.BlockedTools)
	assert.Equal(t, 5*time.Second, cfg.Git.Timeout)
	assert.False(t, cfg.Features.BranchEnforcementEnabled())
	assert.True(t, cfg.Features.EventLogEnabled())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writePolicy(t, root, "commands:\n  extrasafe: true\n")
	t.Setenv("SESSIONGATE_COMMANDS_EXTRASAFE", "false")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.False(t, cfg.Commands.ExtrasafeEnabled())
}

func TestLoadInvalidYAML(t *testing.T) {
	root := t.TempDir()
	writePolicy(t, root, "commands: [unclosed")

	_, err := Load(root)
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	root := t.TempDir()
	writePolicy(t, root, "git:\n  timeout: 10m\n")
	_, err := Load(root)
	assert.Error(t, err)

	root = t.TempDir()
	writePolicy(t, root, "logging:\n  format: xml\n")
	_, err = Load(root)
	assert.Error(t, err)
}

func TestIsWorkArtifactPath(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	root := "/work/project"

	tests := []struct {
		path string
		want bool
	}{
		{"plans/refactor.md", true},
		{"notes/scratch.md", true},
		{"docs/api.md", true},
		{"/work/project/logs/run.txt", true},
		{"main.go", false},
		{"internal/server/server.go", false},
		{"plansx/evil.go", false},
		{"../outside/plans/x.md", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.IsWorkArtifactPath(root, tt.path), "path: %s", tt.path)
	}
}

func TestIsToolBlocked(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.IsToolBlocked("Write"))
	assert.True(t, cfg.IsToolBlocked("NotebookEdit"))
	assert.False(t, cfg.IsToolBlocked("Bash"))
	assert.False(t, cfg.IsToolBlocked("TodoWrite"))
}
