package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// DirName is the per-project working-state directory.
	DirName = ".sessiongate"

	// FileName is the state file inside DirName.
	FileName = "state.json"
)

// ErrStateCorrupted indicates the state file exists but is not valid
// JSON. The invocation cannot be evaluated; restore the file from backup
// or remove it to start fresh.
var ErrStateCorrupted = errors.New("session state file corrupted")

// Store loads and persists SessionState for one project.
//
// Writes are atomic (temp file + rename) so a killed process never leaves
// a torn state file. The mutex serializes read-modify-write sequences
// within this process; concurrent invocations from separate processes are
// a known gap and rely on rename atomicity to avoid torn reads.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store rooted at the project directory.
func NewStore(projectRoot string) *Store {
	return &Store{path: filepath.Join(projectRoot, DirName, FileName)}
}

// Path returns the absolute path of the state file. The mediator uses it
// to block direct writes that bypass the mutation funnel.
func (s *Store) Path() string { return s.path }

// Load reads the current state. A missing file yields a fresh default
// state; an unreadable or structurally invalid file is an error.
func (s *Store) Load() (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*SessionState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSessionState(), nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var st SessionState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupted, err)
	}
	st.normalize()
	return &st, nil
}

// Update performs an atomic read-modify-write: it loads the state, applies
// fn, and persists the result. If fn returns an error nothing is written.
func (s *Store) Update(fn func(*SessionState) error) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.save(st); err != nil {
		return nil, err
	}
	return st, nil
}

// save writes the state atomically.
func (s *Store) save(st *SessionState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename state: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir looking for a DirName directory
// and returns the directory containing it. If none is found, startDir is
// the project root.
func FindProjectRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return startDir
	}
	for cur := dir; ; {
		if info, err := os.Stat(filepath.Join(cur, DirName)); err == nil && info.IsDir() {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
