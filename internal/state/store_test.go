package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewStore(t.TempDir())

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, ModeDiscussion, st.Mode)
	assert.Nil(t, st.CurrentTask)
	assert.Empty(t, st.WorkItems.Active)
	assert.NotNil(t, st.Flags)
	assert.NotNil(t, st.Metadata)
}

func TestLoadCorruptedFile(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0600))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrStateCorrupted)
}

func TestUpdatePersistsMutation(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	_, err := store.Update(func(st *SessionState) error {
		st.Mode = ModeImplementation
		st.WorkItems.Active = []WorkItem{{Content: "add retries"}}
		return nil
	})
	require.NoError(t, err)

	// Re-read through a fresh store to prove it hit disk.
	st, err := NewStore(root).Load()
	require.NoError(t, err)
	assert.Equal(t, ModeImplementation, st.Mode)
	require.Len(t, st.WorkItems.Active, 1)
	assert.Equal(t, "add retries", st.WorkItems.Active[0].Content)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	_, err := store.Update(func(st *SessionState) error {
		st.Mode = ModeImplementation
		return assert.AnError
	})
	require.Error(t, err)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, ModeDiscussion, st.Mode)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	_, err := store.Update(func(st *SessionState) error { return nil })
	require.NoError(t, err)

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	// The written file is valid JSON on its own.
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestLoadNormalizesDamagedMode(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0700))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"version":1,"mode":"turbo"}`), 0600))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, ModeDiscussion, st.Mode)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0700))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0700))

	assert.Equal(t, root, FindProjectRoot(nested))

	// Without a marker directory, the start directory is the root.
	bare := t.TempDir()
	assert.Equal(t, bare, FindProjectRoot(bare))
}

func TestStashAndRestore(t *testing.T) {
	w := WorkItems{Active: []WorkItem{{Content: "a"}, {Content: "b"}}}

	assert.Equal(t, 2, w.StashActive())
	assert.Empty(t, w.Active)

	// Second stash with an existing stash is a no-op.
	w.Active = []WorkItem{{Content: "c"}}
	assert.Equal(t, 0, w.StashActive())
	assert.Len(t, w.Stashed, 2)

	assert.Equal(t, 2, w.RestoreStashed())
	assert.Equal(t, []string{"a", "b"}, w.ActiveContent())
	assert.Empty(t, w.Stashed)
}
