package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// JSONStore keeps the holdings as a JSON array of {symbol, shares}.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore returns a store backed by the file at path. The file and
// its directory are created on the first Save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

// Load reads the saved holdings. A missing or blank file means no state.
func (s *JSONStore) Load(_ context.Context) ([]models.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading holdings: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	holdings := []models.Holding{}
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return holdings, nil
}

// Save replaces the file contents through a temp file and rename.
func (s *JSONStore) Save(_ context.Context, holdings []models.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if holdings == nil {
		holdings = []models.Holding{}
	}
	data, err := json.MarshalIndent(holdings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding holdings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".holdings-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing holdings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing holdings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }
