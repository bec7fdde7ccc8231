package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"weather_station/internal/models"
)

// StateFile stores the persisted state as a JSON document. Writes go to a
// temporary file in the same directory and are renamed into place.
type StateFile struct {
	path string
}

var _ StateStore = (*StateFile)(nil)

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

func (f *StateFile) Save(_ context.Context, s models.PersistedState) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (f *StateFile) Load(_ context.Context) (models.PersistedState, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.PersistedState{}, ErrStateNotFound
		}
		return models.PersistedState{}, fmt.Errorf("read state file: %w", err)
	}

	var s models.PersistedState
	if err := json.Unmarshal(b, &s); err != nil {
		return models.PersistedState{}, fmt.Errorf("decode state file: %w", err)
	}
	if _, err := parseStatus(string(s.Status)); err != nil {
		return models.PersistedState{}, err
	}
	return s, nil
}
