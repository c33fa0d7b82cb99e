package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendWritesValidJSONL(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir, true, nil)

	l.Append(Event{Type: TypeToolAllowed, Tool: "Bash", Mode: "discussion"})
	l.Append(Event{Type: TypeToolBlocked, Tool: "Write", Mode: "discussion", Reason: "blocked"})
	l.Append(Event{Type: TypeModeChanged, Mode: "implementation", Fields: map[string]string{"from": "discussion"}})

	f, err := os.Open(filepath.Join(dir, FileName))
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.Timestamp.IsZero())
		assert.NotEmpty(t, ev.Type)
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 3, lines)
}

func TestDisabledLogWritesNothing(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir, false, nil)

	l.Append(Event{Type: TypeToolAllowed, Tool: "Bash"})

	_, err := os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestNilLogIsSafe(t *testing.T) {
	var l *Log
	assert.NotPanics(t, func() {
		l.Append(Event{Type: TypeToolAllowed})
	})
}
