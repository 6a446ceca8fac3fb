package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vidyasagar/wikisurf/internal/nav"
)

// StateFile is the navigation state file name inside the data directory.
const StateFile = "state.json"

// ErrNoState is returned by LoadState when nothing was saved.
var ErrNoState = errors.New("no saved navigation state")

// SaveState writes the controller snapshot. The file is replaced
// atomically so a crash cannot leave half a stack behind.
func SaveState(dataDir string, st nav.State) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	tmp, err := os.CreateTemp(dataDir, StateFile+".*")
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(dataDir, StateFile))
}

// LoadState reads the snapshot written by SaveState.
func LoadState(dataDir string) (nav.State, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, StateFile))
	if errors.Is(err, os.ErrNotExist) {
		return nav.State{}, ErrNoState
	}
	if err != nil {
		return nav.State{}, fmt.Errorf("reading state: %w", err)
	}
	var st nav.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nav.State{}, fmt.Errorf("parsing state: %w", err)
	}
	return st, nil
}

// ClearState removes the saved snapshot.
func ClearState(dataDir string) error {
	err := os.Remove(filepath.Join(dataDir, StateFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
