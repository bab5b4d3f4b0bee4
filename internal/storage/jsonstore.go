// Package storage provides snapshot-store adapters for the collection port.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONStore persists a collection as a single JSON array file under the
// data directory. The default backend: no external services required.
type JSONStore[T any] struct {
	path string
}

// NewJSONStore creates a JSON snapshot store for the named collection,
// creating the data directory if needed.
func NewJSONStore[T any](dir, name string) (*JSONStore[T], error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONStore[T]{path: filepath.Join(dir, name+".json")}, nil
}

// Load reads the snapshot file. A missing file means no prior snapshot and
// yields an empty collection, not an error.
func (s *JSONStore[T]) Load(ctx context.Context) ([]T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return items, nil
}

// Save overwrites the snapshot file with the full collection. The write goes
// through a temp file and rename so a crash never leaves a torn snapshot.
func (s *JSONStore[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
